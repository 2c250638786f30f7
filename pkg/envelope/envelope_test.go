package envelope

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	b := New("ideate")
	if b == nil {
		t.Fatal("New() returned nil")
	}
	if b.env == nil {
		t.Error("builder envelope is nil")
	}
	if b.env.Result == nil {
		t.Error("Result map should be initialized")
	}
	if b.env.Phase != "ideate" {
		t.Errorf("phase: got %s, want ideate", b.env.Phase)
	}
}

func TestBuilder_Success(t *testing.T) {
	env := New("review").Success().Build()

	if env.Status != StatusSuccess {
		t.Errorf("expected StatusSuccess, got %s", env.Status)
	}
}

func TestBuilder_Failure(t *testing.T) {
	env := New("refine").Failure("ERR_CODE", "Something went wrong").Build()

	if env.Status != StatusFailure {
		t.Errorf("expected StatusFailure, got %s", env.Status)
	}
	if env.Error == nil {
		t.Fatal("expected Error to be set")
	}
	if env.Error.Code != "ERR_CODE" {
		t.Errorf("expected error code 'ERR_CODE', got %s", env.Error.Code)
	}
	if env.Error.Message != "Something went wrong" {
		t.Errorf("expected error message, got %s", env.Error.Message)
	}
}

func TestBuilder_WithResult(t *testing.T) {
	env := New("ideate").
		Success().
		WithResult("count", 42).
		WithResult("name", "test").
		WithResult("active", true).
		Build()

	if env.Result["count"] != 42 {
		t.Errorf("expected count=42, got %v", env.Result["count"])
	}
	if env.Result["name"] != "test" {
		t.Errorf("expected name='test', got %v", env.Result["name"])
	}
	if env.Result["active"] != true {
		t.Errorf("expected active=true, got %v", env.Result["active"])
	}
}

func TestBuilder_WithOutputRef(t *testing.T) {
	env := New("ideate").
		Success().
		WithOutputRef("/tmp/output.json").
		Build()

	if env.OutputRef != "/tmp/output.json" {
		t.Errorf("expected OutputRef='/tmp/output.json', got %s", env.OutputRef)
	}
}

func TestBuilder_WithCounts(t *testing.T) {
	env := New("ideate").WithCounts(6, 1, 12).Build()

	if env.Metrics == nil {
		t.Fatal("expected Metrics to be initialized")
	}
	if env.Metrics.AgentsTotal != 6 || env.Metrics.AgentsFailed != 1 {
		t.Errorf("agent counts = %d/%d", env.Metrics.AgentsTotal, env.Metrics.AgentsFailed)
	}
	if env.Metrics.Concepts != 12 {
		t.Errorf("concepts = %d, want 12", env.Metrics.Concepts)
	}
}

func TestBuilder_WithSpan(t *testing.T) {
	start := time.Now()
	end := start.Add(1500 * time.Millisecond)
	env := New("ideate").WithSpan(start, end).Build()

	if env.Metrics == nil {
		t.Fatal("expected Metrics to be initialized")
	}
	if env.Metrics.DurationMs != 1500 {
		t.Errorf("expected DurationMs=1500, got %d", env.Metrics.DurationMs)
	}
}

func TestBuilder_WithWarning(t *testing.T) {
	env := New("review").
		Partial().
		WithWarning("Black Hat Thinker Agent failed").
		WithWarning("Self Critique Agent timed out").
		Build()

	if env.Status != StatusPartial {
		t.Errorf("status: got %s, want partial", env.Status)
	}
	if len(env.Warnings) != 2 {
		t.Fatalf("warnings = %v", env.Warnings)
	}
}

func TestBuilder_Chaining(t *testing.T) {
	// Test full fluent builder pattern
	start := time.Now()
	env := New("validate_trl").
		WithCounts(1, 0, 8).
		WithSpan(start, start.Add(2*time.Second)).
		WithOutputRef("/output/path.json").
		WithResult("tokens", 100).
		Success().
		Build()

	if env.Status != StatusSuccess {
		t.Errorf("status: got %s, want success", env.Status)
	}
	if env.Metrics.Concepts != 8 {
		t.Errorf("concepts: got %d, want 8", env.Metrics.Concepts)
	}
	if env.Metrics.DurationMs != 2000 {
		t.Errorf("duration: got %d, want 2000", env.Metrics.DurationMs)
	}
	if env.OutputRef != "/output/path.json" {
		t.Errorf("output_ref: got %s, want /output/path.json", env.OutputRef)
	}
	if env.Result["tokens"] != 100 {
		t.Errorf("result[tokens]: got %v, want 100", env.Result["tokens"])
	}
}

func TestStatusConstants(t *testing.T) {
	// Verify status constants have expected values
	if StatusSuccess != "success" {
		t.Errorf("StatusSuccess = %q, want 'success'", StatusSuccess)
	}
	if StatusFailure != "failure" {
		t.Errorf("StatusFailure = %q, want 'failure'", StatusFailure)
	}
	if StatusPartial != "partial" {
		t.Errorf("StatusPartial = %q, want 'partial'", StatusPartial)
	}
	if StatusSkipped != "skipped" {
		t.Errorf("StatusSkipped = %q, want 'skipped'", StatusSkipped)
	}
}

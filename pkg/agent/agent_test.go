package agent

import (
	"context"
	"strings"
	"testing"

	"ideagen/pkg/llm"
)

func testRegistry(reply string, seen *[]llm.Request) *Registry {
	defs := []Definition{{
		Name:       "Black Hat Thinker Agent",
		Prompt:     "You perform FMEA.",
		Deployment: "test-deploy",
		Schema:     SchemaBlackHat,
	}}
	return NewRegistry(defs, func(Definition) llm.Invoker {
		return llm.InvokerFunc(func(_ context.Context, req llm.Request) (llm.Response, error) {
			*seen = append(*seen, req)
			return llm.Response{Text: reply}, nil
		})
	})
}

func TestActBuildsRolePrompt(t *testing.T) {
	var seen []llm.Request
	reply := `{"solutions": [{"title": "Seam failure", "severity": 8, "probability": 4, "detectability": 3, "mitigation": "weld audit", "risk_notes": "field data sparse"}]}`
	reg := testRegistry(reply, &seen)

	value, err := reg.Act(context.Background(), "Black Hat Thinker Agent",
		map[string]any{"problem": "membrane cracking"}, "Focus on installation risks.")
	if err != nil {
		t.Fatalf("Act() error: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("invoker called %d times, want 1", len(seen))
	}

	system := seen[0].System
	if !strings.HasPrefix(system, "You are Black Hat Thinker Agent. You perform FMEA.") {
		t.Errorf("role prompt malformed:\n%s", system)
	}
	if !strings.Contains(system, "Focus on installation risks.") {
		t.Error("extra instruction not appended to role prompt")
	}
	if !strings.Contains(seen[0].User, `"membrane cracking"`) {
		t.Errorf("payload not marshalled into user prompt: %q", seen[0].User)
	}

	obj := value.(map[string]any)
	if _, ok := obj["solutions"]; !ok {
		t.Errorf("reply missing solutions: %v", obj)
	}
}

func TestActStringPayloadPassesThrough(t *testing.T) {
	var seen []llm.Request
	reply := `{"solutions": []}`
	reg := testRegistry(reply, &seen)

	if _, err := reg.Act(context.Background(), "Black Hat Thinker Agent", "raw problem text", ""); err != nil {
		t.Fatalf("Act() error: %v", err)
	}
	if seen[0].User != "raw problem text" {
		t.Errorf("user prompt = %q, want passthrough", seen[0].User)
	}
}

func TestActUnknownAgent(t *testing.T) {
	var seen []llm.Request
	reg := testRegistry("{}", &seen)
	if _, err := reg.Act(context.Background(), "Nonexistent Agent", "x", ""); err == nil {
		t.Fatal("Act() succeeded for unknown agent")
	}
}

func TestBuiltinRosterCoversWorkflowAgents(t *testing.T) {
	defs := Builtin()
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	required := []string{
		TRIZIdeation, SciResearch1, SciResearch2, CrossIndustry,
		IntegratedSolution, ProductIdeation, BlackHatThinker, SelfCritique,
		LiteratureReview, ProposalWriter, TRLAssessment,
	}
	for _, name := range required {
		d, ok := byName[name]
		if !ok {
			t.Errorf("builtin roster missing %s", name)
			continue
		}
		if d.Prompt == "" || d.Schema == "" || d.Deployment == "" {
			t.Errorf("%s incomplete: %+v", name, d)
		}
	}
}

package orchestrator

import (
	"context"
	"testing"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
)

func TestEnrichFillsOnlyEmptyCells(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.SciResearch2: `{"solutions": [{
			"title": "SHOULD NOT OVERWRITE",
			"feasibility_reasoning": "proven in appliances",
			"cost_estimate": "18 USD/ft²",
			"trl": 5,
			"trl_reasoning": "pilot line exists",
			"maturity_notes": "vendor quotes available"
		}]}`,
	})
	p := newPipeline(f)

	rec := concept.Record{
		"agent":         agent.SciResearch2,
		"title":         "Vacuum Core Panel",
		"cost_estimate": "22 USD/ft²",
	}
	failed := p.Enrich(context.Background(), []concept.Record{rec})
	if failed != 0 {
		t.Fatalf("failed = %d", failed)
	}

	if rec["title"] != "Vacuum Core Panel" {
		t.Errorf("title overwritten: %q", rec["title"])
	}
	if rec["cost_estimate"] != "22 USD/ft²" {
		t.Errorf("non-empty cell overwritten: %q", rec["cost_estimate"])
	}
	if rec["trl"] != "5" {
		t.Errorf("empty cell not filled: %q", rec["trl"])
	}
	if rec["maturity_notes"] != "vendor quotes available" {
		t.Errorf("new column not added: %v", rec)
	}
}

func TestEnrichSelfCritiqueSuggestionRename(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.SelfCritique: `{"solutions": [{
			"title": "Vacuum Core Panel",
			"comment": "ok",
			"suggestion": "quantify edge losses"
		}]}`,
	})
	p := newPipeline(f)

	rec := concept.Record{"agent": agent.SelfCritique, "title": "Vacuum Core Panel"}
	if failed := p.Enrich(context.Background(), []concept.Record{rec}); failed != 0 {
		t.Fatalf("failed = %d", failed)
	}
	if rec["constructive_critique"] != "quantify edge losses" {
		t.Errorf("suggestion not renamed: %v", rec)
	}
	if _, ok := rec["suggestion"]; ok {
		t.Error("suggestion column leaked through")
	}
}

func TestEnrichFailureLeavesRecordUntouched(t *testing.T) {
	f := newFakeAgents(map[string]string{agent.SciResearch2: "FAIL"})
	p := newPipeline(f)

	rec := concept.Record{"agent": agent.SciResearch2, "title": "Vacuum Core Panel"}
	if failed := p.Enrich(context.Background(), []concept.Record{rec}); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if len(rec) != 2 {
		t.Errorf("record mutated on failure: %v", rec)
	}
}

func TestEnrichUnknownAgentCountsAsFailure(t *testing.T) {
	p := newPipeline(newFakeAgents(nil))
	rec := concept.Record{"agent": "Mystery Agent", "title": "X"}
	if failed := p.Enrich(context.Background(), []concept.Record{rec}); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
}

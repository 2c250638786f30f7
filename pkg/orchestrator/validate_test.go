package orchestrator

import (
	"context"
	"strings"
	"testing"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
	"ideagen/pkg/evidence"
	"ideagen/pkg/llm"
	"ideagen/pkg/trl"
)

type oneItemSource struct{}

func (oneItemSource) Name() string { return "stub" }

func (oneItemSource) Search(context.Context, string, int) ([]evidence.Item, error) {
	return []evidence.Item{{Title: "paper", Snippet: "field demo", URL: "https://example.org/p"}}, nil
}

func stubAssessor(reply string) *trl.Assessor {
	reg := agent.NewRegistry(
		[]agent.Definition{{
			Name:       agent.TRLAssessment,
			Prompt:     "You determine readiness.",
			Deployment: "test",
			Schema:     agent.SchemaTRLAssessment,
		}},
		func(agent.Definition) llm.Invoker {
			return llm.InvokerFunc(func(context.Context, llm.Request) (llm.Response, error) {
				return llm.Response{Text: reply}, nil
			})
		},
	)
	return &trl.Assessor{
		Registry: reg,
		Gatherer: &evidence.Gatherer{
			Sources:      []evidence.SourceSpec{{Source: oneItemSource{}, Limit: 5}},
			SkipURLCheck: true,
		},
	}
}

func TestValidateTRLWritesBack(t *testing.T) {
	assessor := stubAssessor(`{"trl": "7", "justification": "Operational demo cited.", "citations": [1]}`)
	rec := concept.Record{"agent": agent.SciResearch2, "title": "Mesh Membrane", "description": "resistive mesh ply"}

	if failed := ValidateTRL(context.Background(), assessor, []concept.Record{rec}); failed != 0 {
		t.Fatalf("failed = %d", failed)
	}
	if rec["validated_trl"] != "7" {
		t.Errorf("validated_trl = %q", rec["validated_trl"])
	}
	if !strings.Contains(rec["validated_trl_reasoning"], "Citations: https://example.org/p") {
		t.Errorf("reasoning = %q", rec["validated_trl_reasoning"])
	}
	if rec["validated_trl_citations"] != "https://example.org/p" {
		t.Errorf("citations = %q", rec["validated_trl_citations"])
	}
}

func TestValidateTRLFailureDegrades(t *testing.T) {
	assessor := stubAssessor("not json")
	rec := concept.Record{"agent": agent.SciResearch2, "title": "Mesh Membrane"}

	if failed := ValidateTRL(context.Background(), assessor, []concept.Record{rec}); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if _, ok := rec["validated_trl"]; ok {
		t.Errorf("validated columns written on failure: %v", rec)
	}
}

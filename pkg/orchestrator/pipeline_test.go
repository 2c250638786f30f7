package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
	"ideagen/pkg/envelope"
	"ideagen/pkg/llm"
	"ideagen/pkg/workflow"
)

// fakeAgents scripts per-agent replies. A reply of "FAIL" makes the
// agent return unparseable text on every attempt.
type fakeAgents struct {
	mu      sync.Mutex
	replies map[string]string
	calls   map[string][]llm.Request
}

func newFakeAgents(replies map[string]string) *fakeAgents {
	return &fakeAgents{replies: replies, calls: make(map[string][]llm.Request)}
}

func (f *fakeAgents) registry() *agent.Registry {
	var defs []agent.Definition
	for _, d := range agent.Builtin() {
		defs = append(defs, d)
	}
	return agent.NewRegistry(defs, func(d agent.Definition) llm.Invoker {
		return llm.InvokerFunc(func(_ context.Context, req llm.Request) (llm.Response, error) {
			f.mu.Lock()
			f.calls[d.Name] = append(f.calls[d.Name], req)
			f.mu.Unlock()
			reply, ok := f.replies[d.Name]
			if !ok || reply == "FAIL" {
				return llm.Response{Text: "not json"}, nil
			}
			return llm.Response{Text: reply}, nil
		})
	})
}

func crossIndustryReply(titles ...string) string {
	var sols []string
	for _, t := range titles {
		sols = append(sols, fmt.Sprintf(`{
			"title": %q, "source_industry": "Aerospace", "source_problem": "icing",
			"original_solution": "mesh", "adaptation": "membrane mesh",
			"challenges": ["power"], "source_links": ["https://example.org"]
		}`, t))
	}
	return `{"solutions": [` + strings.Join(sols, ",") + `]}`
}

func sr2Reply(titles ...string) string {
	var sols []string
	for _, t := range titles {
		sols = append(sols, fmt.Sprintf(`{
			"title": %q, "feasibility_reasoning": "plausible", "cost_estimate": "10 USD/ft²",
			"trl": 4, "trl_reasoning": "lab stage"
		}`, t))
	}
	return `{"solutions": [` + strings.Join(sols, ",") + `]}`
}

func critiqueReply(pairs ...[2]string) string {
	var sols []string
	for _, p := range pairs {
		sols = append(sols, fmt.Sprintf(`{"title": %q, "comment": %q}`, p[0], p[1]))
	}
	return `{"solutions": [` + strings.Join(sols, ",") + `]}`
}

func blackHatReply(titles ...string) string {
	var sols []string
	for _, t := range titles {
		sols = append(sols, fmt.Sprintf(`{
			"title": %q, "severity": 7, "probability": 3, "detectability": 4,
			"mitigation": "test rig", "risk_notes": "unproven", "comment": "thermal cycling risk"
		}`, t))
	}
	return `{"solutions": [` + strings.Join(sols, ",") + `]}`
}

func newPipeline(f *fakeAgents) *Pipeline {
	return &Pipeline{
		Registry: f.registry(),
		Config:   workflow.Builtin(),
		Dedup:    &concept.Deduplicator{},
	}
}

func TestRunHappyPath(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.CrossIndustry:   crossIndustryReply("Electro-thermal Mesh Membrane"),
		agent.SciResearch2:    sr2Reply("Vacuum Core Panel"),
		agent.BlackHatThinker: blackHatReply("Electro-thermal Mesh Membrane"),
		agent.SelfCritique:    critiqueReply([2]string{"Vacuum Core Panel", "needs cost source"}),
	})
	p := newPipeline(f)

	res, err := p.Run(context.Background(), "reduce roof heat gain", "", nil, "Cross-Industry Ideation")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(res.Raw) != 2 {
		t.Fatalf("raw = %d concepts: %v", len(res.Raw), res.Raw)
	}
	// phase 3 reuses the same scripted ideator replies
	if len(res.Refined) != 2 {
		t.Fatalf("refined = %d concepts", len(res.Refined))
	}
	for _, sol := range res.Raw {
		if sol["agent"] == nil {
			t.Errorf("solution not tagged with agent: %v", sol)
		}
	}

	if comments := res.Feedback["Vacuum Core Panel"]; len(comments) != 1 || comments[0] != "needs cost source" {
		t.Errorf("feedback = %v", res.Feedback)
	}
	if comments := res.Feedback["Electro-thermal Mesh Membrane"]; len(comments) != 1 {
		t.Errorf("black hat comment missing: %v", res.Feedback)
	}

	if len(res.Phases) != 3 {
		t.Fatalf("phases = %d", len(res.Phases))
	}
	for _, ph := range res.Phases {
		if ph.Status != envelope.StatusSuccess {
			t.Errorf("phase %s status = %s", ph.Phase, ph.Status)
		}
	}
}

func TestRunIsolatesIdeatorFailure(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.CrossIndustry:   "FAIL",
		agent.SciResearch2:    sr2Reply("Vacuum Core Panel"),
		agent.BlackHatThinker: blackHatReply(),
		agent.SelfCritique:    critiqueReply(),
	})
	p := newPipeline(f)

	res, err := p.Run(context.Background(), "problem", "", nil, "Cross-Industry Ideation")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Raw) != 1 || res.Raw[0]["title"] != "Vacuum Core Panel" {
		t.Fatalf("raw = %v", res.Raw)
	}
	if res.Phases[0].Status != envelope.StatusPartial {
		t.Errorf("ideate phase status = %s, want partial", res.Phases[0].Status)
	}
	if res.Phases[0].Metrics.AgentsFailed != 1 {
		t.Errorf("failed agents = %d", res.Phases[0].Metrics.AgentsFailed)
	}
}

func TestRunReviewerFailureContributesNothing(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.CrossIndustry:   crossIndustryReply("Mesh Membrane"),
		agent.SciResearch2:    sr2Reply("Vacuum Core Panel"),
		agent.BlackHatThinker: "FAIL",
		agent.SelfCritique:    critiqueReply([2]string{"Mesh Membrane", "clarify power draw"}),
	})
	p := newPipeline(f)

	res, err := p.Run(context.Background(), "problem", "", nil, "Cross-Industry Ideation")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Feedback["Mesh Membrane"]) != 1 {
		t.Errorf("surviving reviewer comment lost: %v", res.Feedback)
	}
	if len(res.Feedback["Vacuum Core Panel"]) != 0 {
		t.Errorf("unexpected comments: %v", res.Feedback)
	}
	if res.Phases[1].Status != envelope.StatusPartial {
		t.Errorf("review phase = %s, want partial", res.Phases[1].Status)
	}
}

func TestRunAllDuplicatesReturnsSyntheticRecord(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.CrossIndustry:   crossIndustryReply("Cool Roof Coating"),
		agent.SciResearch2:    sr2Reply("Cool-Roof Coating!"),
		agent.BlackHatThinker: blackHatReply(),
		agent.SelfCritique:    critiqueReply(),
	})
	p := newPipeline(f)

	res, err := p.Run(context.Background(), "problem", "",
		[]string{"Cool Roof Coating"}, "Cross-Industry Ideation")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Raw) != 0 {
		t.Errorf("raw = %v, want none", res.Raw)
	}
	if len(res.Refined) != 1 {
		t.Fatalf("refined = %v", res.Refined)
	}
	if res.Refined[0]["agent"] != "System" || res.Refined[0]["title"] != "No new concepts" {
		t.Errorf("synthetic record = %v", res.Refined[0])
	}
	if len(res.Feedback) != 0 {
		t.Errorf("feedback = %v, want empty", res.Feedback)
	}
}

func TestRunPassesAvoidBlockAndConstraints(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.CrossIndustry:   crossIndustryReply("Fresh Concept"),
		agent.SciResearch2:    sr2Reply(),
		agent.BlackHatThinker: blackHatReply(),
		agent.SelfCritique:    critiqueReply(),
	})
	p := newPipeline(f)

	_, err := p.Run(context.Background(), "problem", "Target cost <= 15 USD/ft².",
		[]string{"Cool Roof Coating"}, "Cross-Industry Ideation")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	first := f.calls[agent.CrossIndustry][0].System
	if !strings.Contains(first, "Target cost <= 15 USD/ft².") {
		t.Error("constraints not forwarded")
	}
	if !strings.Contains(first, "### Avoid these existing concepts:") ||
		!strings.Contains(first, "- Cool Roof Coating") {
		t.Error("avoid block missing")
	}
}

func TestRunUnknownWorkflow(t *testing.T) {
	p := newPipeline(newFakeAgents(nil))
	if _, err := p.Run(context.Background(), "problem", "", nil, "Nope"); err == nil {
		t.Fatal("Run() accepted unknown workflow")
	}
}

func TestUnwrapSolutionsVariants(t *testing.T) {
	tests := []struct {
		name  string
		reply any
		want  int
	}{
		{
			name: "solutions plus principles",
			reply: map[string]any{
				"solutions":  []any{map[string]any{"title": "A"}},
				"principles": []any{map[string]any{"number": 1.0, "name": "Segmentation"}},
			},
			want: 2,
		},
		{
			name:  "bare list",
			reply: []any{map[string]any{"title": "A"}, "junk", map[string]any{"title": "B"}},
			want:  2,
		},
		{
			name:  "object without lists",
			reply: map[string]any{"citations": "x"},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapSolutions(tt.reply); len(got) != tt.want {
				t.Errorf("unwrapSolutions() = %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFlattenTagsRows(t *testing.T) {
	rows := Flatten([]Solution{
		{"agent": agent.SciResearch2, "title": "Vacuum Core Panel", "trl": 4.0},
	})
	if len(rows) != 1 || rows[0]["agent"] != agent.SciResearch2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0]["trl"] != "4" {
		t.Errorf("trl = %q", rows[0]["trl"])
	}
}

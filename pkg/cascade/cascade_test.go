package cascade

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"ideagen/pkg/agent"
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
	return agent.NewRegistry(agent.Builtin(), func(d agent.Definition) llm.Invoker {
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

func proposalReply(title, summary, kpiValue string) string {
	return fmt.Sprintf(`{
		"title": %q,
		"executive_summary": %q,
		"problem_statement": "membranes crack under thermal cycling",
		"concept_overview": "self-healing polymer membrane",
		"technical_details": {"materials": ["TPO", "microcapsules"], "structure": "three-layer laminate"},
		"performance_targets": {"r_value": "R-30"},
		"manufacturing_process": {"route": "coextrusion"},
		"cost_feasibility": {"trl": 5},
		"risks_mitigations": ["capsule rupture during install"],
		"sustainability": "recyclable TPO base",
		"applications": ["low-slope commercial roofs"],
		"experimental_design": ["aging chamber trial"],
		"validation_plan": {},
		"kpi_table": {"healing_rate": %q},
		"ip_landscape": "crowded around capsule chemistry",
		"references": ["https://example.org/paper"]
	}`, title, summary, kpiValue)
}

func baseDraft() Draft {
	return Draft{
		"title":             "Self-Healing Membrane",
		"executive_summary": "old summary",
		"kpi_table":         map[string]any{"healing_rate": "80%"},
		"sustainability":    "old sustainability",
	}
}

func newRegenerator(f *fakeAgents) *Regenerator {
	return &Regenerator{Registry: f.registry(), Config: workflow.Builtin()}
}

func TestSetStopsAtTwoHops(t *testing.T) {
	cascade := Set(workflow.Builtin().SectionDeps, "problem_statement")

	for _, sec := range []string{
		"problem_statement", "concept_overview", "executive_summary",
		"title", "technical_details", "applications",
	} {
		if !cascade[sec] {
			t.Errorf("cascade missing %s", sec)
		}
	}
	// cost_feasibility depends on technical_details, which is already
	// two hops out.
	if cascade["cost_feasibility"] {
		t.Error("cascade reached a third hop")
	}
}

func TestRegeneratePatchesOnlyCascadeSections(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.ProposalWriter: proposalReply("Hijacked Title", "new summary", "95%"),
	})
	r := newRegenerator(f)

	current := baseDraft()
	current["kpi_table"] = map[string]any{"healing_rate": "90%"}
	res, err := r.Regenerate(context.Background(), current, baseDraft(), "kpi_table")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	if got := res.Draft["executive_summary"]; got != "new summary" {
		t.Errorf("executive_summary = %v, want new summary", got)
	}
	if got := res.Draft["title"]; got != "Self-Healing Membrane" {
		t.Errorf("title = %v, reply must not change it", got)
	}
	if got := res.Draft["sustainability"]; got != "old sustainability" {
		t.Errorf("sustainability = %v, outside the cascade", got)
	}
	if want := []string{"executive_summary", "kpi_table"}; !equalStrings(res.Cascade, want) {
		t.Errorf("Cascade = %v, want %v", res.Cascade, want)
	}
}

func TestRegeneratePromptNamesEditedAndOwnedSections(t *testing.T) {
	f := newFakeAgents(map[string]string{
		agent.ProposalWriter: proposalReply("t", "s", "95%"),
	})
	r := newRegenerator(f)

	_, err := r.Regenerate(context.Background(), baseDraft(), baseDraft(), "kpi_table")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	calls := f.calls[agent.ProposalWriter]
	if len(calls) != 1 {
		t.Fatalf("proposal writer called %d times, want 1", len(calls))
	}
	system := calls[0].System
	if !strings.Contains(system, "The user modified kpi_table.") {
		t.Errorf("system prompt missing edited section:\n%s", system)
	}
	if !strings.Contains(system, "executive_summary, kpi_table") {
		t.Errorf("system prompt missing owned sections:\n%s", system)
	}
	if !strings.Contains(calls[0].User, `"section_changed":"kpi_table"`) {
		t.Errorf("user payload missing section_changed:\n%s", calls[0].User)
	}
}

func TestRegenerateSkipsOwnerWithoutMatchingSchema(t *testing.T) {
	// risks_mitigations is owned by the black-hat thinker, but its reply
	// schema has no section properties, so the proposal writer carries
	// the whole patch.
	f := newFakeAgents(map[string]string{
		agent.ProposalWriter: proposalReply("t", "s", "95%"),
	})
	r := newRegenerator(f)

	_, err := r.Regenerate(context.Background(), baseDraft(), baseDraft(), "risks_mitigations")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if n := len(f.calls[agent.BlackHatThinker]); n != 0 {
		t.Errorf("black-hat thinker called %d times, want 0", n)
	}
	if n := len(f.calls[agent.ProposalWriter]); n != 1 {
		t.Errorf("proposal writer called %d times, want 1", n)
	}
}

func TestRegenerateAgentFailureLeavesDraftIntact(t *testing.T) {
	f := newFakeAgents(map[string]string{agent.ProposalWriter: "FAIL"})
	r := newRegenerator(f)

	res, err := r.Regenerate(context.Background(), baseDraft(), baseDraft(), "kpi_table")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one entry", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], agent.ProposalWriter) {
		t.Errorf("warning does not name the agent: %s", res.Warnings[0])
	}
	if got := res.Draft["executive_summary"]; got != "old summary" {
		t.Errorf("executive_summary = %v, want untouched", got)
	}
}

func TestRegenerateGraphMissCascadesToItself(t *testing.T) {
	fake := newFakeAgents(nil)
	r := newRegenerator(fake)

	res, err := r.Regenerate(context.Background(), baseDraft(), baseDraft(), "budget")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if !equalStrings(res.Cascade, []string{"budget"}) {
		t.Errorf("cascade = %v, want [budget]", res.Cascade)
	}
	if n := len(fake.calls[agent.ProposalWriter]); n != 0 {
		t.Errorf("proposal writer called %d times for a section outside its schema", n)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestDiffDrafts(t *testing.T) {
	previous := Draft{
		"executive_summary": "old summary",
		"kpi_table":         map[string]any{"healing_rate": "80%"},
		"ip_landscape":      "unchanged",
		"references":        []any{"https://a", "https://b"},
	}
	current := Draft{
		"executive_summary": "new summary",
		"kpi_table":         map[string]any{"healing_rate": "95%"},
		"ip_landscape":      "unchanged",
		"applications":      []any{"roofs"},
	}

	changes := DiffDrafts(previous, current)
	var sections []string
	for _, c := range changes {
		sections = append(sections, c.Section)
	}
	want := []string{"applications", "executive_summary", "kpi_table", "references"}
	if !equalStrings(sections, want) {
		t.Fatalf("changed sections = %v, want %v", sections, want)
	}

	byName := make(map[string]Change)
	for _, c := range changes {
		byName[c.Section] = c
	}
	if !byName["applications"].Added {
		t.Error("applications should be flagged added")
	}
	if !byName["references"].Removed {
		t.Error("references should be flagged removed")
	}
	if c := byName["executive_summary"]; c.Added || c.Removed {
		t.Error("executive_summary should be a plain change")
	}
	if got := byName["references"].Before; got != "https://a\nhttps://b" {
		t.Errorf("references rendered as %q", got)
	}
	if pretty := byName["executive_summary"].Pretty(); !strings.Contains(pretty, "summary") {
		t.Errorf("Pretty() = %q", pretty)
	}
}

func TestChangeSummary(t *testing.T) {
	cases := []struct {
		change Change
		want   string
	}{
		{Change{Section: "kpi_table"}, "kpi_table: changed"},
		{Change{Section: "applications", Added: true}, "applications: added"},
		{Change{Section: "references", Removed: true}, "references: removed"},
	}
	for _, tc := range cases {
		if got := tc.change.Summary(); got != tc.want {
			t.Errorf("Summary() = %q, want %q", got, tc.want)
		}
	}
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

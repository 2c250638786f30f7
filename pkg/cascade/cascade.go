// Package cascade regenerates proposal sections that depend on a
// section the user edited. The ripple is bounded to two hops of the
// dependency graph, and each affected section is rewritten by the agent
// that owns it.
package cascade

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ideagen/pkg/agent"
	"ideagen/pkg/workflow"
)

// Draft is a proposal draft keyed by section name.
type Draft = map[string]any

// Set computes the sections affected by an edit: the edited section,
// its direct dependents, and their dependents. The ripple stops there.
func Set(deps map[string][]string, edited string) map[string]bool {
	cascade := map[string]bool{edited: true}
	for _, sec := range deps[edited] {
		cascade[sec] = true
	}
	for sec := range copyKeys(cascade) {
		for _, second := range deps[sec] {
			cascade[second] = true
		}
	}
	return cascade
}

func copyKeys(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// Sections lists a cascade set in stable order.
func Sections(cascade map[string]bool) []string {
	out := make([]string, 0, len(cascade))
	for sec := range cascade {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of one cascade regeneration.
type Result struct {
	Draft    Draft    // patched draft
	Cascade  []string // affected sections, sorted
	Changes  []Change // per-section diff against the previous draft
	Warnings []string // per-agent failures, regeneration continued
}

// Regenerator routes cascade patches to owning agents.
type Regenerator struct {
	Registry *agent.Registry
	Config   *workflow.Config
	Logger   *slog.Logger
}

func (r *Regenerator) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Regenerate rebuilds the sections affected by an edit to the current
// draft. Each owning agent receives the current and previous drafts and
// the edited section name, and returns a patch. Patches never change
// the title and only keys inside the cascade set are applied. A failing
// agent is recorded as a warning and skipped. A section absent from the
// dependency graph cascades to itself only.
func (r *Regenerator) Regenerate(ctx context.Context, current, previous Draft, edited string) (*Result, error) {
	cascade := Set(r.Config.SectionDeps, edited)
	patched := make(Draft, len(current))
	for k, v := range current {
		patched[k] = v
	}

	res := &Result{Cascade: Sections(cascade)}

	payload := map[string]any{
		"current_draft":   current,
		"previous_draft":  previous,
		"section_changed": edited,
	}

	for _, name := range r.owners(cascade) {
		owned := r.ownedSections(name, cascade)
		if len(owned) == 0 {
			continue
		}

		role := fmt.Sprintf(
			"The user modified %s.\nUpdate these sections to stay consistent: %s.\n"+
				"Return one JSON object containing **only** those keys.",
			edited, strings.Join(owned, ", "))

		reply, err := r.Registry.ActObject(ctx, name, payload, role)
		if err != nil {
			msg := fmt.Sprintf("%s failed: %v", name, err)
			r.logger().Warn("cascade agent failed", "agent", name, "error", err)
			res.Warnings = append(res.Warnings, msg)
			continue
		}

		delete(reply, "title")
		for k, v := range reply {
			if cascade[k] {
				patched[k] = v
			}
		}
	}

	res.Draft = patched
	res.Changes = DiffDrafts(previous, patched)
	return res, nil
}

// owners returns the distinct owning agents of the cascade sections, in
// stable order.
func (r *Regenerator) owners(cascade map[string]bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sec := range Sections(cascade) {
		for _, name := range r.Config.OwnersOf(sec) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// ownedSections filters the cascade to sections the agent's reply
// schema actually has properties for.
func (r *Regenerator) ownedSections(agentName string, cascade map[string]bool) []string {
	props := schemaProperties(r.Registry.Schema(agentName))
	var owned []string
	for _, sec := range Sections(cascade) {
		if props[sec] {
			owned = append(owned, sec)
		}
	}
	return owned
}

func schemaProperties(schema string) map[string]bool {
	var parsed struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	props := make(map[string]bool)
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		return props
	}
	for k := range parsed.Properties {
		props[k] = true
	}
	return props
}

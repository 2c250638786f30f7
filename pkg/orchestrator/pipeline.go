// Package orchestrator drives the multi-agent ideation pipeline:
// parallel concept generation, fuzzy dedup against known concepts,
// reviewer feedback, and refinement by the original proposers.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
	"ideagen/pkg/envelope"
	"ideagen/pkg/workflow"
)

// Solution is one structured concept as returned by an agent, tagged
// with the agent that produced it under the "agent" key.
type Solution = map[string]any

// Result is the outcome of one pipeline run.
type Result struct {
	Raw      []Solution
	Feedback map[string][]string
	Refined  []Solution
	Phases   []*envelope.Envelope
}

// Pipeline wires the agents, workflow configuration, and deduplicator
// together.
type Pipeline struct {
	Registry *agent.Registry
	Config   *workflow.Config
	Dedup    *concept.Deduplicator
	Logger   *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// NoNewConcepts is the synthetic record returned when every generated
// concept duplicated an existing one.
func NoNewConcepts() Solution {
	return Solution{
		"agent":       "System",
		"title":       "No new concepts",
		"description": "Unable to come up with any concepts not already in your database.",
	}
}

// Run executes ideation, review, and refinement for one problem.
// existingTitles are concepts already known; agents are steered away
// from them and near-duplicates are dropped. Agent failures in any
// phase degrade that agent's contribution to nothing.
func (p *Pipeline) Run(ctx context.Context, problem, constraints string, existingTitles []string, workflowName string) (*Result, error) {
	if _, ok := p.Config.Workflows[workflowName]; !ok {
		return nil, fmt.Errorf("unknown workflow %q", workflowName)
	}
	ideators := p.Config.IdeatorsFor(workflowName)
	reviewers := p.Config.ReviewersFor(workflowName)

	res := &Result{Feedback: make(map[string][]string)}

	// Phase 1: ideation fan-out plus dedup.
	start := time.Now()
	raw, failed := p.collect(ctx, problem, constraints, existingTitles, ideators)
	raw = p.Dedup.Filter(raw, existingTitles)

	ideateEnv := envelope.New("ideate").
		WithCounts(len(ideators), failed, len(raw)).
		WithSpan(start, time.Now())
	if failed > 0 {
		ideateEnv.Partial()
	} else {
		ideateEnv.Success()
	}

	if len(existingTitles) > 0 && len(raw) == 0 {
		res.Refined = []Solution{NoNewConcepts()}
		res.Phases = append(res.Phases, ideateEnv.WithWarning("no novel concepts").Build())
		return res, nil
	}
	res.Raw = raw
	res.Phases = append(res.Phases, ideateEnv.Build())

	// Phase 2: reviewer feedback on the surviving concepts.
	start = time.Now()
	for _, sol := range raw {
		if title := solutionTitle(sol); title != "" {
			res.Feedback[title] = []string{}
		}
	}
	reviewFailed := p.review(ctx, raw, reviewers, res.Feedback)
	reviewEnv := envelope.New("review").
		WithCounts(len(reviewers), reviewFailed, len(raw)).
		WithSpan(start, time.Now())
	if reviewFailed > 0 {
		reviewEnv.Partial()
	} else {
		reviewEnv.Success()
	}
	res.Phases = append(res.Phases, reviewEnv.Build())

	// Phase 3: each contributing ideator refines its own concepts.
	start = time.Now()
	refined, refineFailed := p.refine(ctx, raw, ideators, res.Feedback)
	res.Refined = refined
	refineEnv := envelope.New("refine").
		WithCounts(len(ideators), refineFailed, len(refined)).
		WithSpan(start, time.Now())
	if refineFailed > 0 {
		refineEnv.Partial()
	} else {
		refineEnv.Success()
	}
	res.Phases = append(res.Phases, refineEnv.Build())

	return res, nil
}

// collect fans the problem out to every ideation agent and merges the
// tagged solutions in agent order. It returns the merged list and how
// many agents failed.
func (p *Pipeline) collect(ctx context.Context, problem, constraints string, existingTitles []string, ideators []string) ([]Solution, int) {
	extra := constraints
	if block := avoidBlock(existingTitles); block != "" {
		if extra != "" {
			extra += "\n\n"
		}
		extra += block
	}

	chunks := make([][]Solution, len(ideators))
	failures := make([]bool, len(ideators))
	var wg sync.WaitGroup
	for i, name := range ideators {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			reply, err := p.Registry.Act(ctx, name, problem, extra)
			if err != nil {
				p.logger().Warn("ideation agent failed", "agent", name, "error", err)
				failures[i] = true
				return
			}
			sols := unwrapSolutions(reply)
			for _, s := range sols {
				s["agent"] = name
			}
			chunks[i] = sols
			p.logger().Info("ideation agent returned", "agent", name, "ideas", len(sols))
		}(i, name)
	}
	wg.Wait()

	var merged []Solution
	failed := 0
	for i, chunk := range chunks {
		if failures[i] {
			failed++
		}
		merged = append(merged, chunk...)
	}
	return merged, failed
}

// review sends the raw solutions to each reviewer and appends their
// per-title comments into feedback. Returns the failed reviewer count.
func (p *Pipeline) review(ctx context.Context, raw []Solution, reviewers []string, feedback map[string][]string) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0
	for _, reviewer := range reviewers {
		wg.Add(1)
		go func(reviewer string) {
			defer wg.Done()
			reply, err := p.Registry.Act(ctx, reviewer, raw,
				"Return an array solutions:[{Title, comment}]")
			if err != nil {
				p.logger().Warn("review agent failed", "agent", reviewer, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, item := range unwrapSolutions(reply) {
				title := strings.TrimSpace(solutionTitle(item))
				comment := strings.TrimSpace(concept.Coerce(item["comment"]))
				if title != "" && comment != "" {
					feedback[title] = append(feedback[title], comment)
				}
			}
		}(reviewer)
	}
	wg.Wait()
	return failed
}

// refine asks each ideator that contributed surviving concepts to
// improve them given the reviewer comments. Ideators with nothing to
// refine are skipped; a failed ideator contributes nothing.
func (p *Pipeline) refine(ctx context.Context, raw []Solution, ideators []string, feedback map[string][]string) ([]Solution, int) {
	chunks := make([][]Solution, len(ideators))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0
	for i, name := range ideators {
		var mine []Solution
		for _, s := range raw {
			if s["agent"] == name {
				mine = append(mine, s)
			}
		}
		if len(mine) == 0 {
			continue
		}

		type titleFeedback struct {
			Title    string   `json:"title"`
			Comments []string `json:"comments"`
		}
		var fb []titleFeedback
		for _, s := range mine {
			title := solutionTitle(s)
			if title == "" {
				continue
			}
			comments := feedback[title]
			if comments == nil {
				comments = []string{}
			}
			fb = append(fb, titleFeedback{Title: title, Comments: comments})
		}

		wg.Add(1)
		go func(i int, name string, mine []Solution, fb []titleFeedback) {
			defer wg.Done()
			payload := map[string]any{"concepts": mine, "feedback": fb}
			reply, err := p.Registry.Act(ctx, name, payload,
				"You previously proposed these concepts. Improve or replace each one in light of the comments.")
			if err != nil {
				p.logger().Warn("refine agent failed", "agent", name, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			sols := unwrapSolutions(reply)
			for _, s := range sols {
				s["agent"] = name
			}
			chunks[i] = sols
		}(i, name, mine, fb)
	}
	wg.Wait()

	var refined []Solution
	for _, chunk := range chunks {
		refined = append(refined, chunk...)
	}
	return refined, failed
}

// Flatten renders refined solutions as concept rows, in input order.
func Flatten(solutions []Solution) []concept.Record {
	rows := make([]concept.Record, 0, len(solutions))
	for _, sol := range solutions {
		name := concept.Coerce(sol["agent"])
		rows = append(rows, concept.Flatten(name, sol))
	}
	return rows
}

// SortedTitles returns the feedback titles in stable order, for
// reporting.
func SortedTitles(feedback map[string][]string) []string {
	titles := make([]string, 0, len(feedback))
	for t := range feedback {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

func avoidBlock(existingTitles []string) string {
	var titled []string
	for _, t := range existingTitles {
		if strings.TrimSpace(t) != "" {
			titled = append(titled, "- "+t)
		}
	}
	if len(titled) == 0 {
		return ""
	}
	return "### Avoid these existing concepts:\n" + strings.Join(titled, "\n")
}

// unwrapSolutions normalises an agent reply into a list of solution
// objects. Object replies contribute their "solutions" list plus any
// "principles" and "contradictions" lists; list replies pass through.
// Non-object items are dropped.
func unwrapSolutions(reply any) []Solution {
	var items []any
	switch v := reply.(type) {
	case []any:
		items = v
	case map[string]any:
		if sols, ok := v["solutions"].([]any); ok {
			items = append(items, sols...)
		}
		for _, key := range []string{"principles", "contradictions"} {
			if extra, ok := v[key].([]any); ok {
				items = append(items, extra...)
			}
		}
	}

	out := make([]Solution, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func solutionTitle(sol Solution) string {
	if t, ok := sol["title"].(string); ok && t != "" {
		return t
	}
	if t, ok := sol["Title"].(string); ok {
		return t
	}
	return ""
}

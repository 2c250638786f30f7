package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
)

// Enrich asks each record's own agent to fill its missing scalar
// fields. Records are enriched concurrently; a failed call leaves its
// record untouched. Only empty cells are written, but agents may
// introduce new columns.
func (p *Pipeline) Enrich(ctx context.Context, records []concept.Record) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0
	for _, rec := range records {
		wg.Add(1)
		go func(rec concept.Record) {
			defer wg.Done()
			if err := p.enrichOne(ctx, rec); err != nil {
				p.logger().Warn("enrichment failed",
					"agent", rec["agent"], "title", rec["title"], "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(rec)
	}
	wg.Wait()
	return failed
}

func (p *Pipeline) enrichOne(ctx context.Context, rec concept.Record) error {
	agentName := rec["agent"]
	if _, ok := p.Registry.Definition(agentName); !ok {
		return fmt.Errorf("unknown agent %q", agentName)
	}

	extra := fmt.Sprintf("You are %s. Given this solution object (title + existing fields), "+
		"fill ANY missing scalar fields. Return the full object as pure JSON.", agentName)
	reply, err := p.Registry.Act(ctx, agentName, rec, extra)
	if err != nil {
		return err
	}

	enriched := unwrapEnriched(reply)
	if enriched == nil {
		return fmt.Errorf("reply carried no solution object")
	}

	if agentName == agent.SelfCritique {
		if suggestion, ok := enriched["suggestion"]; ok {
			enriched["constructive_critique"] = suggestion
			delete(enriched, "suggestion")
		}
	}

	for k, v := range enriched {
		if k == "solutions" {
			continue
		}
		rec.SetIfEmpty(k, concept.Coerce(v))
	}
	return nil
}

// unwrapEnriched accepts the enriched row under "solution", as the
// first element of "solutions", or as the whole reply object.
func unwrapEnriched(reply any) map[string]any {
	obj, ok := reply.(map[string]any)
	if !ok {
		return nil
	}
	if sol, ok := obj["solution"].(map[string]any); ok {
		return sol
	}
	if sols, ok := obj["solutions"].([]any); ok && len(sols) > 0 {
		if first, ok := sols[0].(map[string]any); ok {
			return first
		}
	}
	return obj
}

package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"ideagen/pkg/concept"
	"ideagen/pkg/trl"
)

// ValidateTRL runs an evidence-backed TRL assessment for every record
// and writes validated_trl, validated_trl_reasoning, and the cited URLs
// back into it. A record whose assessment fails keeps empty validated
// columns. Returns the failure count.
func ValidateTRL(ctx context.Context, assessor *trl.Assessor, records []concept.Record) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0
	for _, rec := range records {
		wg.Add(1)
		go func(rec concept.Record) {
			defer wg.Done()
			topic := rec["description"]
			if concept.IsEmpty(topic) {
				topic = rec["title"]
			}
			assessment, _, err := assessor.Assess(ctx, topic)
			if err != nil {
				slog.Warn("TRL validation failed", "topic", topic, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			rec["validated_trl"] = assessment.TRL
			rec["validated_trl_reasoning"] = assessment.Justification
			rec["validated_trl_citations"] = strings.Join(assessment.CitationURLs, "\n")
		}(rec)
	}
	wg.Wait()
	return failed
}

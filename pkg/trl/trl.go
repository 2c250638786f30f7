// Package trl assigns validated Technology Readiness Levels to concepts
// using gathered literature evidence and the NASA rubric.
package trl

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
	"ideagen/pkg/evidence"
)

//go:embed rubric.md
var rubric string

// Rubric returns the NASA TRL rubric text.
func Rubric() string { return rubric }

// Assessment is the outcome of one validated TRL check.
type Assessment struct {
	TRL           string
	Justification string
	CitationURLs  []string
}

// Assessor validates concept TRLs against gathered evidence.
type Assessor struct {
	Registry *agent.Registry
	Gatherer *evidence.Gatherer
	Logger   *slog.Logger
}

func (a *Assessor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// EvidenceBlock renders evidence as numbered "[i] snippet (url)" lines,
// the format the assessment prompt and citation indices refer to.
func EvidenceBlock(items []evidence.Item) string {
	lines := make([]string, 0, len(items))
	for i, ev := range items {
		snippet := evidence.SanitizeSnippet(strings.TrimSpace(ev.Snippet))
		lines = append(lines, fmt.Sprintf("[%d] %s (%s)", i+1, snippet, strings.TrimSpace(ev.URL)))
	}
	return strings.Join(lines, "\n")
}

// Assess gathers evidence for topic and asks the TRL Assessment agent
// for a level, justification, and citation indices. Cited indices are
// mapped back to evidence URLs; out-of-range indices are dropped. When
// any citations survive, "Citations: url1, url2" is appended to the
// justification.
func (a *Assessor) Assess(ctx context.Context, topic string) (Assessment, []evidence.Item, error) {
	items := a.Gatherer.Gather(ctx, topic)

	system := "You are an expert at assigning NASA Technology Readiness Levels (TRL). " +
		"Use the following rubric to decide whether the technology is TRL 1-9:\n\n" +
		rubric + "\n\n" +
		"You will be given a concept description and a numbered evidence list. " +
		"Base your TRL assignment strictly on that evidence. " +
		"Return a JSON object with exactly three fields:\n" +
		"  - \"trl\": a string between \"1\" and \"9\",\n" +
		"  - \"justification\": a detailed explanation referencing the evidence,\n" +
		"  - \"citations\": a list of integer indices corresponding exactly to the numbered items\n" +
		"    in the evidence block that you used.\n"

	user := fmt.Sprintf(
		"Concept Description:\n%s\n\n"+
			"Evidence List (each item is [index] snippet (url)):\n%s\n\n"+
			"Question: Based only on the evidence above, what TRL level (1-9) does this "+
			"technology meet? Cite your evidence indices in the JSON output.",
		topic, EvidenceBlock(items))

	reply, err := a.Registry.ActObject(ctx, agent.TRLAssessment, user, system)
	if err != nil {
		return Assessment{}, items, err
	}

	result := Assessment{
		TRL:           concept.Coerce(reply["trl"]),
		Justification: strings.TrimSpace(concept.Coerce(reply["justification"])),
	}

	if cited, ok := reply["citations"].([]any); ok {
		for _, c := range cited {
			idx, ok := c.(float64)
			if !ok {
				continue
			}
			i := int(idx)
			if i >= 1 && i <= len(items) {
				result.CitationURLs = append(result.CitationURLs, items[i-1].URL)
			}
		}
	}
	if len(result.CitationURLs) > 0 {
		result.Justification += "\n\nCitations: " + strings.Join(result.CitationURLs, ", ")
	}
	return result, items, nil
}

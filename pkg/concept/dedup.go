package concept

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the similarity ratio at or above which two titles
// count as the same concept.
const DefaultThreshold = 0.75

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeTitle lowercases a title and strips everything that is not a
// letter or digit, so punctuation and spacing differences cannot defeat
// duplicate detection.
func NormalizeTitle(title string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(title), "")
}

// Ratio is the longest-matching-blocks similarity of two normalized
// titles, in [0, 1].
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Deduplicator drops candidates whose titles fuzzily match an already
// known title.
type Deduplicator struct {
	Threshold float64 // 0 means DefaultThreshold
}

func (d *Deduplicator) threshold() float64 {
	if d.Threshold > 0 {
		return d.Threshold
	}
	return DefaultThreshold
}

// IsDuplicate reports whether title matches any of norms at or above the
// threshold. norms must already be normalized.
func (d *Deduplicator) IsDuplicate(title string, norms []string) bool {
	n := NormalizeTitle(title)
	for _, existing := range norms {
		if Ratio(n, existing) >= d.threshold() {
			return true
		}
	}
	return false
}

// Filter returns the candidates whose titles are novel against
// existingTitles. Candidates are not compared with each other, and with
// no existing titles every candidate passes through unchanged.
// Candidates under a "Title" key are normalized to "title" in place.
func (d *Deduplicator) Filter(candidates []map[string]any, existingTitles []string) []map[string]any {
	norms := make([]string, 0, len(existingTitles))
	for _, t := range existingTitles {
		norms = append(norms, NormalizeTitle(t))
	}

	kept := make([]map[string]any, 0, len(candidates))
	for _, cand := range candidates {
		if v, ok := cand["Title"]; ok {
			if _, has := cand["title"]; !has {
				cand["title"] = v
			}
			delete(cand, "Title")
		}
		title, _ := cand["title"].(string)
		if d.IsDuplicate(title, norms) {
			continue
		}
		kept = append(kept, cand)
	}
	return kept
}

// Package evidence harvests supporting literature for a concept from
// several external sources in parallel. Individual source failures
// degrade to an empty contribution; results are capped and filtered to
// live URLs before use.
package evidence

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Harvest limits.
const (
	MaxSnippetLen = 300
	MaxResults    = 15
)

// Item is one piece of evidence.
type Item struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"source_url"`
}

// Source searches one backend for evidence on a query.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Item, error)
}

// SourceSpec pairs a source with its per-gather result budget.
type SourceSpec struct {
	Source Source
	Limit  int
}

// SanitizeSnippet escapes backslashes and quotes so a snippet can be
// embedded in a JSON prompt without breaking it.
func SanitizeSnippet(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Truncate bounds a snippet to MaxSnippetLen bytes.
func Truncate(s string) string {
	if len(s) > MaxSnippetLen {
		return s[:MaxSnippetLen]
	}
	return s
}

// Gatherer fans a query out to its sources and merges the results.
type Gatherer struct {
	Sources    []SourceSpec
	HTTPClient *http.Client
	Logger     *slog.Logger

	// SkipURLCheck disables the liveness filter. Tests use it.
	SkipURLCheck bool
}

func (g *Gatherer) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Gatherer) httpClient() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Gather queries every source concurrently. Source order is preserved
// in the merged output; a failed source contributes nothing. The merged
// list is capped at MaxResults and then filtered to URLs that answer a
// HEAD request with a non-error status.
func (g *Gatherer) Gather(ctx context.Context, query string) []Item {
	chunks := make([][]Item, len(g.Sources))
	var wg sync.WaitGroup
	for i, spec := range g.Sources {
		wg.Add(1)
		go func(i int, spec SourceSpec) {
			defer wg.Done()
			items, err := spec.Source.Search(ctx, query, spec.Limit)
			if err != nil {
				g.logger().Warn("evidence source failed",
					"source", spec.Source.Name(), "error", err)
				return
			}
			chunks[i] = items
		}(i, spec)
	}
	wg.Wait()

	var merged []Item
	for _, chunk := range chunks {
		merged = append(merged, chunk...)
	}
	if len(merged) > MaxResults {
		merged = merged[:MaxResults]
	}
	for i := range merged {
		merged[i].Snippet = Truncate(merged[i].Snippet)
	}

	if g.SkipURLCheck {
		return merged
	}
	return FilterLive(ctx, g.httpClient(), merged)
}

// FilterLive keeps items whose URL answers a HEAD request with a status
// below 400. Checks run concurrently; any transport failure drops the
// item.
func FilterLive(ctx context.Context, client *http.Client, items []Item) []Item {
	ok := make([]bool, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			ok[i] = headOK(ctx, client, url)
		}(i, item.URL)
	}
	wg.Wait()

	var live []Item
	for i, item := range items {
		if ok[i] {
			live = append(live, item)
		}
	}
	return live
}

func headOK(ctx context.Context, client *http.Client, url string) bool {
	if url == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}

package evidence

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const arxivBaseURL = "https://export.arxiv.org/api/query"

// arXiv keyword budget for condensed queries.
const arxivMaxKeywords = 8

// Arxiv searches the arXiv Atom API.
type Arxiv struct {
	Condenser *Condenser
	Client    *http.Client
	BaseURL   string // defaults to the public API
}

func (a *Arxiv) Name() string { return "arxiv" }

type atomFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		Links   []struct {
			Href string `xml:"href,attr"`
			Rel  string `xml:"rel,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

// Search condenses the query to keywords, then fetches matching entries
// with up to three attempts and exponential backoff starting at one
// second.
func (a *Arxiv) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	core := a.Condenser.Condense(ctx, query, arxivMaxKeywords)
	if core == "" {
		return nil, nil
	}

	base := a.BaseURL
	if base == "" {
		base = arxivBaseURL
	}
	endpoint := base + "?" + url.Values{
		"search_query": {core},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
	}.Encode()

	var feed atomFeed
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := a.client().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("arxiv: HTTP %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		feed = atomFeed{}
		if err := xml.Unmarshal(body, &feed); err != nil {
			return backoff.Permanent(fmt.Errorf("arxiv: bad feed: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(fetch, retryPolicy(ctx)); err != nil {
		return nil, err
	}

	items := make([]Item, 0, limit)
	for _, e := range feed.Entries {
		if len(items) == limit {
			break
		}
		link := ""
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		items = append(items, Item{
			Title:   e.Title,
			Snippet: Truncate(e.Summary),
			URL:     link,
		})
	}
	return items, nil
}

func (a *Arxiv) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// retryPolicy is three attempts with 1s, 2s waits between them.
func retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	return backoff.WithContext(backoff.WithMaxRetries(policy, 2), ctx)
}

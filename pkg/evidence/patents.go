package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const patentsBaseURL = "https://search.patentsview.org/api/v1/patents/query"

// Patents searches the PatentsView API. It is implemented but not part
// of the default source set; DefaultSources keeps parity with the
// literature-focused gather.
type Patents struct {
	Client  *http.Client
	BaseURL string
}

func (p *Patents) Name() string { return "patents" }

type patentsResponse struct {
	Patents []struct {
		Title    string `json:"patent_title"`
		Abstract string `json:"patent_abstract"`
		Number   string `json:"patent_number"`
	} `json:"patents"`
}

func (p *Patents) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	base := p.BaseURL
	if base == "" {
		base = patentsBaseURL
	}

	body, err := json.Marshal(map[string]any{
		"q": query,
		"o": map[string]any{"per_page": limit},
	})
	if err != nil {
		return nil, err
	}

	var parsed patentsResponse
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := p.client().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("patentsview: HTTP %d", resp.StatusCode)
		}
		parsed = patentsResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("patentsview: bad response: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(fetch, retryPolicy(ctx)); err != nil {
		return nil, err
	}

	items := make([]Item, 0, limit)
	for _, pt := range parsed.Patents {
		if len(items) == limit {
			break
		}
		items = append(items, Item{
			Title:   pt.Title,
			Snippet: Truncate(pt.Abstract),
			URL:     "https://patents.google.com/patent/" + pt.Number,
		})
	}
	return items, nil
}

func (p *Patents) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// DefaultSources is the standard gather set: five arXiv results, five
// Crossref results, three open web results.
func DefaultSources(condenser *Condenser, serpKey string) []SourceSpec {
	return []SourceSpec{
		{Source: &Arxiv{Condenser: condenser}, Limit: 5},
		{Source: &Crossref{Condenser: condenser}, Limit: 5},
		{Source: &OpenWeb{APIKey: serpKey}, Limit: 3},
	}
}

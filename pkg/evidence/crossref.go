package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const crossrefBaseURL = "https://api.crossref.org/works"

// Crossref keyword budget for condensed queries.
const crossrefMaxKeywords = 14

// Crossref searches the Crossref works API.
type Crossref struct {
	Condenser *Condenser
	Client    *http.Client
	BaseURL   string
}

func (c *Crossref) Name() string { return "crossref" }

type crossrefResponse struct {
	Message struct {
		Items []struct {
			Title    []string `json:"title"`
			Abstract string   `json:"abstract"`
			URL      string   `json:"URL"`
		} `json:"items"`
	} `json:"message"`
}

func (c *Crossref) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	core := c.Condenser.Condense(ctx, query, crossrefMaxKeywords)
	if core == "" {
		return nil, nil
	}

	base := c.BaseURL
	if base == "" {
		base = crossrefBaseURL
	}
	endpoint := base + "?" + url.Values{
		"query": {core},
		"rows":  {strconv.Itoa(limit)},
	}.Encode()

	var parsed crossrefResponse
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.client().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("crossref: HTTP %d", resp.StatusCode)
		}
		parsed = crossrefResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("crossref: bad response: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(fetch, retryPolicy(ctx)); err != nil {
		return nil, err
	}

	items := make([]Item, 0, limit)
	for _, it := range parsed.Message.Items {
		if len(items) == limit {
			break
		}
		title := ""
		if len(it.Title) > 0 {
			title = it.Title[0]
		}
		items = append(items, Item{
			Title:   title,
			Snippet: Truncate(it.Abstract),
			URL:     it.URL,
		})
	}
	return items, nil
}

func (c *Crossref) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

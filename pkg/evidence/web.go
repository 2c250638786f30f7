package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const serpBaseURL = "https://serpapi.com/search.json"

// OpenWeb searches the open web through the SERP API (Google engine).
// Without an API key it degrades to an empty contribution.
type OpenWeb struct {
	APIKey  string
	Client  *http.Client
	BaseURL string
	Logger  *slog.Logger
}

func (w *OpenWeb) Name() string { return "open_web" }

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

func (w *OpenWeb) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	if w.APIKey == "" {
		logger := w.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("SERP API key not set, skipping open web search", "query", query)
		return nil, nil
	}

	base := w.BaseURL
	if base == "" {
		base = serpBaseURL
	}
	endpoint := base + "?" + url.Values{
		"engine":  {"google"},
		"q":       {query},
		"api_key": {w.APIKey},
		"num":     {strconv.Itoa(limit)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp: HTTP %d", resp.StatusCode)
	}

	var parsed serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("serp: bad response: %w", err)
	}

	items := make([]Item, 0, limit)
	for _, r := range parsed.OrganicResults {
		if len(items) == limit {
			break
		}
		title := r.Title
		if title == "" {
			title = r.Snippet
		}
		items = append(items, Item{
			Title:   title,
			Snippet: Truncate(r.Snippet),
			URL:     r.Link,
		})
	}
	return items, nil
}

func (w *OpenWeb) client() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

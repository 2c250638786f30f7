// Package persist is the client for the concept database backend. It
// stores generated concepts per problem statement and serves the
// existing titles that seed deduplication.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ideagen/pkg/concept"
)

const defaultTimeout = 30 * time.Second

// maxBodyBytes caps response reads.
const maxBodyBytes = 10 << 20

// Client talks to the concept database REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Concepts returns the stored concepts for a problem statement.
func (c *Client) Concepts(ctx context.Context, problem string) ([]map[string]any, error) {
	q := url.Values{"problem_statement": {problem}}
	var out []map[string]any
	if err := c.getJSON(ctx, "/concepts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimilarConcepts returns concepts whose stored problem statements
// semantically match the given one.
func (c *Client) SimilarConcepts(ctx context.Context, problem string, topK int) ([]map[string]any, error) {
	q := url.Values{
		"problem_statement": {problem},
		"top_k":             {strconv.Itoa(topK)},
	}
	var out []map[string]any
	if err := c.getJSON(ctx, "/concepts/similar", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistingTitles returns the titles already stored for a problem. These
// seed the avoid-list and the dedup filter. A backend failure degrades
// to an empty list so a run can proceed without history.
func (c *Client) ExistingTitles(ctx context.Context, problem string) []string {
	rows, err := c.Concepts(ctx, problem)
	if err != nil {
		c.logger().Warn("could not fetch existing concepts", "error", err)
		return nil
	}
	var titles []string
	for _, row := range rows {
		if t, ok := row["title"].(string); ok && t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// Problems returns all stored problem statements.
func (c *Client) Problems(ctx context.Context) ([]string, error) {
	var rows []struct {
		ProblemStatement string `json:"problem_statement"`
	}
	if err := c.getJSON(ctx, "/problems", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ProblemStatement)
	}
	return out, nil
}

// savedColumns are the record fields the backend schema accepts.
var savedColumns = []string{
	"agent", "title", "description",
	"novelty_reasoning", "feasibility_reasoning", "cost_estimate",
	"trl", "trl_reasoning", "trl_citations",
	"validated_trl", "validated_trl_reasoning", "validated_trl_citations",
	"components", "references", "constructive_critique",
}

// SaveConcepts posts concept rows for a problem. workflowName selects
// the backend schema variant: the cross-industry workflow stores its
// own column set, everything else is "traditional".
func (c *Client) SaveConcepts(ctx context.Context, problem, workflowName string, records []concept.Record) error {
	payload := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := map[string]string{"problem_statement": problem}
		for _, col := range savedColumns {
			if v, ok := rec[col]; ok {
				row[col] = v
			}
		}
		payload = append(payload, row)
	}

	wf := "traditional"
	if workflowName == "Cross-Industry Ideation" {
		wf = "cross-industry"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode concepts: %w", err)
	}

	endpoint := c.BaseURL + "/concepts?workflow=" + wf
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http().Do(req)
	if err != nil {
		return fmt.Errorf("post concepts: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post concepts: status %d: %s", resp.StatusCode, respBody)
	}
	c.logger().Info("concepts saved", "count", len(payload), "workflow", wf)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http().Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("get %s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("get %s: decode: %w", path, err)
	}
	return nil
}

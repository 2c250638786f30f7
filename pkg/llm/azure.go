package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultHTTPTimeout = 120 * time.Second

// AzureClient calls an Azure OpenAI chat-completions deployment.
type AzureClient struct {
	Endpoint   string // e.g. https://myresource.openai.azure.com
	Deployment string
	APIVersion string
	APIKey     string

	HTTPClient *http.Client
	Logger     *slog.Logger

	// OnUsage, when set, receives the provider-reported token usage
	// after every successful call. Used by pkg/tracking.
	OnUsage func(deployment string, usage Usage)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AzureClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (c *AzureClient) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// URL returns the chat-completions URL for this deployment.
func (c *AzureClient) URL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.Endpoint, "/"), c.Deployment, c.APIVersion)
}

// Invoke sends one chat completion request. Provider failures come back
// as error text in the response; only context errors are returned as
// Go errors.
func (c *AzureClient) Invoke(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return Response{Text: fmt.Sprintf("Error calling model: %v", err)}, nil
	}

	reqID := uuid.NewString()
	c.logger().Debug("model request", "deployment", c.Deployment, "request_id", reqID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return Response{Text: fmt.Sprintf("Error calling model: %v", err)}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.APIKey)

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{Text: fmt.Sprintf("Error calling model: %v", err)}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return Response{Text: fmt.Sprintf("Error calling model: %v", err)}, nil
	}

	if resp.StatusCode != http.StatusOK {
		c.logger().Warn("model call failed", "deployment", c.Deployment,
			"request_id", reqID, "status", resp.StatusCode)
		return Response{Text: fmt.Sprintf("Error calling model: HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(raw)))}, nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{Text: fmt.Sprintf("Error calling model: bad response: %v", err)}, nil
	}
	if parsed.Error != nil {
		return Response{Text: fmt.Sprintf("Error calling model: %s: %s",
			parsed.Error.Code, parsed.Error.Message)}, nil
	}
	if len(parsed.Choices) == 0 {
		return Response{Text: "Error calling model: empty choices"}, nil
	}

	usage := Usage{
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}
	if c.OnUsage != nil {
		c.OnUsage(c.Deployment, usage)
	}

	return Response{
		Text:  strings.TrimSpace(parsed.Choices[0].Message.Content),
		Usage: usage,
	}, nil
}

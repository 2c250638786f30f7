// Package llm provides the model invocation boundary. Callers build a
// system/user prompt pair and receive the model's raw text back; schema
// enforcement and retries live one layer up in pkg/schemacall.
package llm

import (
	"context"
	"strings"
)

// Default request limits
const (
	DefaultMaxTokens = 15000
)

// Usage holds token counts reported by the provider for a single call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns the combined token count for the call.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Request is a single chat completion request.
type Request struct {
	System    string
	User      string
	MaxTokens int // 0 means DefaultMaxTokens
}

// Response is the model's reply plus provider-reported usage.
type Response struct {
	Text  string
	Usage Usage
}

// Invoker sends one request to a model and returns its reply.
//
// Provider-side failures (HTTP errors, malformed payloads) are reported
// as error text in Response.Text rather than as a Go error, so that the
// repair loop upstream can treat them like any other unparseable reply.
// Context cancellation is returned as a real error.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req Request) (Response, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// IsErrorText reports whether a reply is a transport error rendered as
// text by an Invoker.
func IsErrorText(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "Error calling model")
}

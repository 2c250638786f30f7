package schemacall

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"ideagen/pkg/llm"
)

// DefaultMaxAttempts bounds the validate-and-repair loop.
const DefaultMaxAttempts = 3

// Spec describes one schema-constrained model call.
type Spec struct {
	System    string
	User      string
	Schema    string // JSON schema the reply must satisfy
	MaxTokens int
}

// ExhaustedError is returned when every repair attempt produced output
// that still failed schema validation.
type ExhaustedError struct {
	Deployment string
	Attempts   int
	LastRaw    string
	LastErr    string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("model output failed schema validation after %d attempts: %s",
		e.Attempts, e.LastErr)
}

// Caller runs schema-constrained calls against an Invoker.
type Caller struct {
	Invoker     llm.Invoker
	Deployment  string // for error reporting only
	MaxAttempts int    // 0 means DefaultMaxAttempts
	Logger      *slog.Logger
}

func (c *Caller) attempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (c *Caller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// MinimumSchemaPrompt renders the instruction block appended to the
// system prompt: the required top-level keys, the JSON-only rules, and
// the pretty-printed schema.
func MinimumSchemaPrompt(schema string) string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON value and nothing else.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Output JSON only: no prose, no markdown fences, no trailing text.\n")
	b.WriteString("- Include every required key.\n")
	b.WriteString("- Use null for values you cannot determine.\n")
	if keys := requiredKeys(schema); len(keys) > 0 {
		b.WriteString("Required top-level keys: " + strings.Join(keys, ", ") + "\n")
	}
	b.WriteString("The output must validate against this JSON schema:\n")
	b.WriteString(prettySchema(schema))
	return b.String()
}

func requiredKeys(schema string) []string {
	var parsed struct {
		Required []string `json:"required"`
		Items    *struct {
			Required []string `json:"required"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		return nil
	}
	keys := parsed.Required
	if len(keys) == 0 && parsed.Items != nil {
		keys = parsed.Items.Required
	}
	sort.Strings(keys)
	return keys
}

func prettySchema(schema string) string {
	var v any
	if err := json.Unmarshal([]byte(schema), &v); err != nil {
		return schema
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return schema
	}
	return string(out)
}

func repairPrompt(validationErr, lastRaw string) string {
	return fmt.Sprintf(
		"Your previous reply was not valid against the required JSON schema.\n"+
			"Validation error: %s\n\n"+
			"Previous reply:\n%s\n\n"+
			"Return a corrected reply as pure JSON that validates against the schema. "+
			"Output JSON only.", validationErr, lastRaw)
}

// Call invokes the model, extracts JSON from the reply, and validates it
// against spec.Schema. On failure it retries with a repair prompt that
// embeds the validation error and the prior reply, up to MaxAttempts.
// It returns the parsed value and the raw text it was extracted from.
func (c *Caller) Call(ctx context.Context, spec Spec) (any, string, error) {
	schemaLoader := gojsonschema.NewStringLoader(spec.Schema)
	system := spec.System + "\n\n" + MinimumSchemaPrompt(spec.Schema)
	user := spec.User

	var lastRaw, lastErr string
	maxAttempts := c.attempts()
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, lastRaw, err
		}

		resp, err := c.Invoker.Invoke(ctx, llm.Request{
			System:    system,
			User:      user,
			MaxTokens: spec.MaxTokens,
		})
		if err != nil {
			return nil, lastRaw, err
		}
		lastRaw = resp.Text

		value, verr := c.validate(schemaLoader, resp.Text)
		if verr == "" {
			return value, resp.Text, nil
		}
		lastErr = verr
		c.logger().Debug("schema validation failed",
			"deployment", c.Deployment, "attempt", attempt, "error", verr)
		user = repairPrompt(verr, resp.Text)
	}

	return nil, lastRaw, &ExhaustedError{
		Deployment: c.Deployment,
		Attempts:   maxAttempts,
		LastRaw:    lastRaw,
		LastErr:    lastErr,
	}
}

// validate extracts and parses JSON from raw model text, then checks it
// against the schema. It returns the parsed value and an empty string on
// success, or a description of what failed.
func (c *Caller) validate(schema gojsonschema.JSONLoader, raw string) (any, string) {
	if llm.IsErrorText(raw) {
		return nil, raw
	}
	extracted := ExtractJSON(raw)
	if extracted == "" {
		return nil, "no JSON object or array found in reply"
	}

	var value any
	if err := json.Unmarshal([]byte(extracted), &value); err != nil {
		return nil, fmt.Sprintf("invalid JSON: %v", err)
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Sprintf("schema check failed: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, strings.Join(msgs, "; ")
	}
	return value, ""
}

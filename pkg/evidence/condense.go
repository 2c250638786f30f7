package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ideagen/pkg/llm"
)

// fallbackQueryLen bounds the truncation fallback when the condenser
// model is unavailable.
const fallbackQueryLen = 100

// DefaultCondenseTimeout caps how long a condensation call may take
// before falling back to truncation.
const DefaultCondenseTimeout = 60 * time.Second

// Condenser turns a long concept description into a short keyword query
// suitable for academic search APIs.
type Condenser struct {
	Invoker llm.Invoker
	Timeout time.Duration // 0 means DefaultCondenseTimeout
	Logger  *slog.Logger
}

func (c *Condenser) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Condense asks the model for at most maxKeywords search keywords. On
// timeout, model failure, or an empty reply it falls back to the first
// hundred characters of the topic. The result is never empty unless the
// topic itself is.
func (c *Condenser) Condense(ctx context.Context, topic string, maxKeywords int) string {
	fallback := strings.TrimSpace(truncateAt(topic, fallbackQueryLen))

	if c == nil || c.Invoker == nil {
		return fallback
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCondenseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	system := fmt.Sprintf(
		"You are an expert at crafting concise, high-precision academic search queries. "+
			"Given a paragraph describing an R&D concept, extract and return the top %d "+
			"keywords (nouns, verbs, technical terms) as a short phrase for searching "+
			"arXiv/CrossRef. Avoid generic stopwords, units, and numbers. Output a single "+
			"line of text, ideally no more than %d words, separated by spaces.",
		maxKeywords, maxKeywords)

	resp, err := c.Invoker.Invoke(ctx, llm.Request{
		System: system,
		User:   "Concept description:\n\n" + topic,
	})
	if err != nil {
		c.logger().Warn("query condensation failed, using truncation", "error", err)
		return fallback
	}

	cleaned := strings.Trim(strings.TrimSpace(resp.Text), `"'`)
	if cleaned == "" || llm.IsErrorText(cleaned) {
		c.logger().Warn("query condensation returned no usable query, using truncation")
		return fallback
	}
	return cleaned
}

func truncateAt(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

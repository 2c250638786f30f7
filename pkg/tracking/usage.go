// Package tracking accumulates model token usage across a run, grouped
// by deployment. The collector is fed from the model client's usage
// hook and is safe for concurrent use.
package tracking

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"ideagen/pkg/colors"
	"ideagen/pkg/llm"
)

// Collector aggregates token usage per deployment.
type Collector struct {
	mu    sync.Mutex
	usage map[string]llm.Usage
	calls map[string]int
}

func NewCollector() *Collector {
	return &Collector{
		usage: make(map[string]llm.Usage),
		calls: make(map[string]int),
	}
}

// Record adds one call's usage. Wire this to llm.AzureClient.OnUsage.
func (c *Collector) Record(deployment string, u llm.Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.usage[deployment]
	t.PromptTokens += u.PromptTokens
	t.CompletionTokens += u.CompletionTokens
	c.usage[deployment] = t
	c.calls[deployment]++
}

// Totals returns a copy of the per-deployment usage.
func (c *Collector) Totals() map[string]llm.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]llm.Usage, len(c.usage))
	for k, v := range c.usage {
		out[k] = v
	}
	return out
}

// Total returns usage summed over all deployments.
func (c *Collector) Total() llm.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total llm.Usage
	for _, u := range c.usage {
		total.PromptTokens += u.PromptTokens
		total.CompletionTokens += u.CompletionTokens
	}
	return total
}

// Calls returns the number of recorded calls for a deployment.
func (c *Collector) Calls(deployment string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[deployment]
}

// Summary renders a per-deployment usage table for terminal display.
func (c *Collector) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	deployments := make([]string, 0, len(c.usage))
	for d := range c.usage {
		deployments = append(deployments, d)
	}
	sort.Strings(deployments)

	var b strings.Builder
	b.WriteString(colors.Paint(colors.Bold+colors.Cyan, "Token Usage"))
	b.WriteString("\n")
	var total llm.Usage
	for _, d := range deployments {
		u := c.usage[d]
		total.PromptTokens += u.PromptTokens
		total.CompletionTokens += u.CompletionTokens
		fmt.Fprintf(&b, "  %-28s %3d calls  %8d in  %8d out\n",
			d, c.calls[d], u.PromptTokens, u.CompletionTokens)
	}
	fmt.Fprintf(&b, "  %s\n", colors.Paint(colors.Dim,
		fmt.Sprintf("total: %d tokens", total.Total())))
	return b.String()
}

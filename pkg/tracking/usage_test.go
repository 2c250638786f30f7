package tracking

import (
	"strings"
	"sync"
	"testing"

	"ideagen/pkg/llm"
)

func TestCollector_Record(t *testing.T) {
	c := NewCollector()
	c.Record("gpt-4.1", llm.Usage{PromptTokens: 100, CompletionTokens: 50})
	c.Record("gpt-4.1", llm.Usage{PromptTokens: 20, CompletionTokens: 10})
	c.Record("ccm-ric-o3", llm.Usage{PromptTokens: 5, CompletionTokens: 5})

	totals := c.Totals()
	if got := totals["gpt-4.1"]; got.PromptTokens != 120 || got.CompletionTokens != 60 {
		t.Errorf("gpt-4.1 usage = %+v", got)
	}
	if c.Calls("gpt-4.1") != 2 {
		t.Errorf("Calls = %d, want 2", c.Calls("gpt-4.1"))
	}
	if got := c.Total(); got.Total() != 190 {
		t.Errorf("Total() = %d, want 190", got.Total())
	}
}

func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record("gpt-4.1", llm.Usage{PromptTokens: 1, CompletionTokens: 1})
		}()
	}
	wg.Wait()

	if got := c.Total(); got.Total() != 100 {
		t.Errorf("Total() = %d, want 100", got.Total())
	}
	if c.Calls("gpt-4.1") != 50 {
		t.Errorf("Calls = %d, want 50", c.Calls("gpt-4.1"))
	}
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector()
	c.Record("gpt-4.1", llm.Usage{PromptTokens: 100, CompletionTokens: 50})

	s := c.Summary()
	if !strings.Contains(s, "gpt-4.1") {
		t.Errorf("summary missing deployment:\n%s", s)
	}
	if !strings.Contains(s, "total: 150 tokens") {
		t.Errorf("summary missing total:\n%s", s)
	}
}

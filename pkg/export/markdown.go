// Package export renders run results for humans: a Markdown report per
// run and a CSV of the concept table, plus cleanup of old run
// directories.
package export

import (
	"fmt"
	"strings"
	"time"

	"ideagen/pkg/concept"
	"ideagen/pkg/envelope"
)

// Report collects everything the Markdown renderer needs for one run.
type Report struct {
	RunID     string
	Problem   string
	Workflow  string
	Generated time.Time
	Phases    []*envelope.Envelope
	Records   []concept.Record
	Warnings  []string
	Usage     string // pre-rendered token usage summary, optional
}

// RenderMarkdown produces the run report.
func RenderMarkdown(r Report) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ideation Run %s\n\n", r.RunID)
	fmt.Fprintf(&b, "Date Created: %s\n\n", r.Generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Workflow:** %s\n\n", r.Workflow)
	fmt.Fprintf(&b, "**Problem:**\n\n> %s\n\n", strings.ReplaceAll(strings.TrimSpace(r.Problem), "\n", "\n> "))

	if len(r.Phases) > 0 {
		b.WriteString("## Phases\n\n")
		b.WriteString("| Phase | Status | Agents | Failed | Concepts | Duration |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, env := range r.Phases {
			m := env.Metrics
			if m == nil {
				m = &envelope.Metrics{}
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %dms |\n",
				env.Phase, env.Status,
				m.AgentsTotal, m.AgentsFailed, m.Concepts, m.DurationMs)
		}
		b.WriteString("\n")
	}

	if len(r.Records) > 0 {
		b.WriteString("## Concepts\n\n")
		cols := concept.Columns(r.Records)
		b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat("---|", len(cols)) + "\n")
		for _, rec := range r.Records {
			cells := make([]string, len(cols))
			for i, col := range cols {
				cells[i] = mdCell(rec[col])
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("## Concepts\n\nNo concepts produced.\n\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.Usage != "" {
		b.WriteString("## Usage\n\n```\n")
		b.WriteString(stripANSI(r.Usage))
		if !strings.HasSuffix(r.Usage, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}

	return []byte(b.String())
}

// mdCell makes a record value safe inside a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

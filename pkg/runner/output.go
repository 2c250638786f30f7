package runner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ideagen/pkg/envelope"
)

// PrintStartupBanner displays the run configuration at startup
func PrintStartupBanner(cfg *Config, ideators, reviewers []string) {
	fmt.Printf("\n%s%s╔════════════════════════════════════════════════════════════════╗%s\n", Bold, Cyan, Reset)
	fmt.Printf("%s%s║  ideagen - Multi-Agent Ideation%s\n", Bold, Cyan, Reset)
	fmt.Printf("%s%s╚════════════════════════════════════════════════════════════════╝%s\n\n", Bold, Cyan, Reset)

	// Problem, truncated if too long
	problem := strings.ReplaceAll(strings.TrimSpace(cfg.Problem), "\n", " ")
	if len(problem) > MaxDisplayProblemLen {
		problem = problem[:TruncatedProblemLen] + "..."
	}
	fmt.Printf("  %s%sProblem:%s       %s\"%s\"%s\n", Bold, Green, Reset, Yellow, problem, Reset)

	fmt.Printf("  %s%sWorkflow:%s      %s%s%s\n", Bold, Green, Reset, Magenta, cfg.Workflow, Reset)
	fmt.Printf("  %s%sIdeators:%s      %s\n", Bold, Green, Reset, strings.Join(ideators, ", "))
	fmt.Printf("  %s%sReviewers:%s     %s\n", Bold, Green, Reset, strings.Join(reviewers, ", "))

	// Options
	var enabledOpts []string
	if cfg.UseLock {
		enabledOpts = append(enabledOpts, fmt.Sprintf("%s--lock%s", Green, Reset))
	}
	if cfg.Save {
		enabledOpts = append(enabledOpts, fmt.Sprintf("%s--save%s", Green, Reset))
	}
	if cfg.Prune {
		enabledOpts = append(enabledOpts, fmt.Sprintf("%s--prune%s", Green, Reset))
	}
	if cfg.SkipEnrich {
		enabledOpts = append(enabledOpts, fmt.Sprintf("%s--skip-enrich%s", Yellow, Reset))
	}
	if cfg.SkipTRL {
		enabledOpts = append(enabledOpts, fmt.Sprintf("%s--skip-trl%s", Yellow, Reset))
	}
	if len(enabledOpts) > 0 {
		fmt.Printf("  %s%sOptions:%s       %s\n", Bold, Green, Reset, strings.Join(enabledOpts, ", "))
	}

	fmt.Printf("\n%s%s────────────────────────────────────────────────────────────────%s\n\n", Dim, Cyan, Reset)
}

// PrintPhaseHeader prints header for a pipeline phase
func PrintPhaseHeader(phase, description string) {
	fmt.Printf("%s%s━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━%s\n", Bold, Magenta, Reset)
	fmt.Printf("%s%s  %s: %s%s\n", Bold, Magenta, phase, description, Reset)
	fmt.Printf("%s%s━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━%s\n\n", Bold, Magenta, Reset)
}

// PrintPhaseResult prints the outcome of a completed phase
func PrintPhaseResult(env *envelope.Envelope) {
	m := env.Metrics
	if m == nil {
		m = &envelope.Metrics{}
	}
	switch env.Status {
	case envelope.StatusSuccess:
		fmt.Printf("%s✓ %s completed%s %s(%d concepts, %s)%s\n\n",
			Green, env.Phase, Reset, Dim, m.Concepts, FormatDuration(time.Duration(m.DurationMs)*time.Millisecond), Reset)
	case envelope.StatusPartial:
		fmt.Printf("%s◐ %s partial%s %s(%d/%d agents failed, %d concepts)%s\n\n",
			Yellow, env.Phase, Reset, Dim, m.AgentsFailed, m.AgentsTotal, m.Concepts, Reset)
	case envelope.StatusSkipped:
		fmt.Printf("%s- %s skipped%s\n\n", Dim, env.Phase, Reset)
	default:
		msg := ""
		if env.Error != nil {
			msg = env.Error.Message
		}
		fmt.Printf("%s✗ %s failed%s %s%s%s\n\n", Yellow, env.Phase, Reset, Dim, msg, Reset)
	}
}

// PrintSummary displays the run summary
func PrintSummary(cfg *Config, runDir string, startTime time.Time, duration time.Duration, concepts int, exitCode int) {
	fmt.Println()
	fmt.Printf("%s%s══════════════════════════════════════════%s\n", Bold, Cyan, Reset)
	fmt.Printf("%s%s  Run Summary%s\n", Bold, Cyan, Reset)
	fmt.Printf("%s%s══════════════════════════════════════════%s\n", Bold, Cyan, Reset)
	fmt.Printf("  %sCommand:%s      ideagen %s\n", Dim, Reset, cfg.OriginalCmd)
	fmt.Printf("  %sWorkflow:%s     %s%s%s\n", Dim, Reset, Magenta, cfg.Workflow, Reset)
	fmt.Printf("  %sStarted:%s      %s\n", Dim, Reset, startTime.Format("2006-01-02 15:04:05"))
	fmt.Printf("  %sDuration:%s     %s%s%s\n", Dim, Reset, Yellow, FormatDuration(duration), Reset)
	fmt.Printf("  %sConcepts:%s     %s%d%s\n", Dim, Reset, Green, concepts, Reset)
	fmt.Printf("  %sRun dir:%s      %s\n", Dim, Reset, runDir)

	if exitCode == 0 {
		fmt.Printf("  %sExit code:%s    %s%d%s\n", Dim, Reset, Green, exitCode, Reset)
	} else {
		fmt.Printf("  %sExit code:%s    %s%d%s\n", Dim, Reset, Yellow, exitCode, Reset)
	}

	fmt.Printf("%s%s══════════════════════════════════════════%s\n", Bold, Cyan, Reset)
}

// RunStats holds statistics for JSON output
type RunStats struct {
	Workflow     string               `json:"workflow"`
	Problem      string               `json:"problem"`
	RunID        string               `json:"run_id"`
	StartTime    string               `json:"start_time"`
	EndTime      string               `json:"end_time"`
	DurationSecs float64              `json:"duration_secs"`
	Concepts     int                  `json:"concepts"`
	ExitCode     int                  `json:"exit_code"`
	Success      bool                 `json:"success"`
	Phases       []*envelope.Envelope `json:"phases,omitempty"`
}

// OutputStatsJSON outputs run statistics as JSON
func OutputStatsJSON(cfg *Config, runID string, startTime, endTime time.Time, concepts, exitCode int, phases []*envelope.Envelope) {
	stats := RunStats{
		Workflow:     cfg.Workflow,
		Problem:      cfg.Problem,
		RunID:        runID,
		StartTime:    startTime.Format(time.RFC3339),
		EndTime:      endTime.Format(time.RFC3339),
		DurationSecs: endTime.Sub(startTime).Seconds(),
		Concepts:     concepts,
		ExitCode:     exitCode,
		Success:      exitCode == 0,
		Phases:       phases,
	}

	jsonData, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(jsonData))
}

// FormatDuration formats a duration as "Xm Ys"
func FormatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", mins, secs)
}

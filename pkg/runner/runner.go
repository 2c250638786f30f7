// Package runner provides the CLI execution framework: it loads
// settings, wires the model clients and agents together, drives the
// ideation pipeline, and writes run artifacts.
package runner

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
	"ideagen/pkg/evidence"
	"ideagen/pkg/export"
	"ideagen/pkg/llm"
	"ideagen/pkg/lock"
	"ideagen/pkg/orchestrator"
	"ideagen/pkg/persist"
	"ideagen/pkg/settings"
	"ideagen/pkg/tracking"
	"ideagen/pkg/trl"
	"ideagen/pkg/workflow"
	"ideagen/pkg/workspace"
)

// condenseDeployment runs the evidence query condenser. Kept on the
// cheapest general deployment rather than a per-agent one.
const condenseDeployment = "gpt-4.1"

// Runner orchestrates one CLI invocation
type Runner struct {
	Settings  *settings.Settings
	Workflows *workflow.Config
	Collector *tracking.Collector
}

// RunResult holds the result of a Run() invocation
type RunResult struct {
	ExitCode int
	Concepts int
	Error    error
}

// runError creates a RunResult for an error condition
func runError(code int, err error) *RunResult {
	return &RunResult{ExitCode: code, Error: err}
}

func NewRunner() *Runner {
	return &Runner{Collector: tracking.NewCollector()}
}

// RunAndExit runs the pipeline and exits with the appropriate code.
// This is the entry point for the CLI binary.
func (r *Runner) RunAndExit() {
	result := r.Run(os.Args[1:])
	if result.Error != nil {
		fmt.Fprintln(os.Stderr, result.Error)
	}
	os.Exit(result.ExitCode)
}

// Run is the main entry point - loads settings, parses args, and executes
func (r *Runner) Run(args []string) *RunResult {
	r.Settings, _ = settings.LoadWithFallback()

	cfg, err := r.parseArgs(args)
	if err != nil {
		return runError(1, err)
	}
	if cfg == nil {
		// Help or workflow list was shown, exit cleanly
		return &RunResult{ExitCode: 0}
	}

	setupLogging(cfg.Verbose)

	r.Workflows, err = workflow.Load("")
	if err != nil {
		return runError(1, err)
	}
	if _, ok := r.Workflows.Workflows[cfg.Workflow]; !ok {
		return runError(1, fmt.Errorf("unknown workflow %q, see --workflows", cfg.Workflow))
	}

	if cfg.ProblemFile != "" {
		data, err := os.ReadFile(cfg.ProblemFile)
		if err != nil {
			return runError(1, fmt.Errorf("could not read problem file: %w", err))
		}
		cfg.Problem = strings.TrimSpace(string(data))
	}
	if strings.TrimSpace(cfg.Problem) == "" {
		r.printUsage()
		return runError(1, fmt.Errorf("no problem statement provided"))
	}

	secrets := settings.LoadSecrets()
	if !r.Settings.IsAzureConfigured() || secrets.AzureAPIKey == "" {
		settings.PrintSetupInstructions()
		return runError(1, fmt.Errorf("azure endpoint or API key missing"))
	}

	// Acquire lock if needed (shared across all runs)
	if cfg.UseLock {
		lockHandle, err := lock.Acquire(lock.GetIdentifier(cfg.Problem), true)
		if err != nil {
			return runError(1, err)
		}
		defer lockHandle.Release()
	}

	return r.execute(context.Background(), cfg, secrets)
}

// execute runs the full pipeline for a parsed config
func (r *Runner) execute(ctx context.Context, cfg *Config, secrets settings.Secrets) *RunResult {
	startTime := time.Now()

	registry := agent.NewRegistry(agent.Builtin(), func(d agent.Definition) llm.Invoker {
		return &llm.AzureClient{
			Endpoint:   r.Settings.Azure.Endpoint,
			Deployment: r.Settings.DeploymentFor(d),
			APIVersion: r.Settings.Azure.APIVersion,
			APIKey:     secrets.AzureAPIKey,
			OnUsage:    r.Collector.Record,
		}
	})

	condenser := &evidence.Condenser{Invoker: &llm.AzureClient{
		Endpoint:   r.Settings.Azure.Endpoint,
		Deployment: condenseDeployment,
		APIVersion: r.Settings.Azure.APIVersion,
		APIKey:     secrets.AzureAPIKey,
		OnUsage:    r.Collector.Record,
	}}
	gatherer := &evidence.Gatherer{
		Sources: evidence.DefaultSources(condenser, secrets.SerpAPIKey),
	}

	var db *persist.Client
	if r.Settings.PersistURL != "" {
		db = &persist.Client{BaseURL: r.Settings.PersistURL}
	}

	outputDir := r.Settings.OutputDir
	if cfg.OutputDir != "" {
		outputDir = cfg.OutputDir
	}
	ws, err := workspace.New(outputDir)
	if err != nil {
		return runError(1, fmt.Errorf("could not create run directory: %w", err))
	}

	pipeline := &orchestrator.Pipeline{
		Registry: registry,
		Config:   r.Workflows,
		Dedup:    &concept.Deduplicator{Threshold: r.Settings.DedupThreshold},
	}

	ideators := r.Workflows.IdeatorsFor(cfg.Workflow)
	reviewers := r.Workflows.ReviewersFor(cfg.Workflow)
	if !cfg.StatsJSON {
		PrintStartupBanner(cfg, ideators, reviewers)
	}

	var existingTitles []string
	if db != nil {
		existingTitles = db.ExistingTitles(ctx, cfg.Problem)
	}

	if !cfg.StatsJSON {
		PrintPhaseHeader("Pipeline", "ideate → dedup → review → refine")
	}
	result, err := pipeline.Run(ctx, cfg.Problem, cfg.Constraints, existingTitles, cfg.Workflow)
	if err != nil {
		return runError(1, err)
	}
	for _, env := range result.Phases {
		ws.WritePhase(env.Phase, env)
		if !cfg.StatsJSON {
			PrintPhaseResult(env)
		}
	}
	ws.WriteArtifact("raw-solutions", result.Raw)
	ws.WriteArtifact("feedback", result.Feedback)
	ws.WriteArtifact("refined-solutions", result.Refined)

	records := orchestrator.Flatten(result.Refined)

	var warnings []string
	for _, env := range result.Phases {
		warnings = append(warnings, env.Warnings...)
	}

	if !cfg.SkipEnrich && len(records) > 0 {
		if !cfg.StatsJSON {
			PrintPhaseHeader("Enrich", "fill missing concept fields")
		}
		if failed := pipeline.Enrich(ctx, records); failed > 0 {
			warnings = append(warnings, fmt.Sprintf("enrichment failed for %d concepts", failed))
		}
	}

	if !cfg.SkipTRL && len(records) > 0 {
		if !cfg.StatsJSON {
			PrintPhaseHeader("Validate", "evidence-backed TRL assessment")
		}
		assessor := &trl.Assessor{Registry: registry, Gatherer: gatherer}
		if failed := orchestrator.ValidateTRL(ctx, assessor, records); failed > 0 {
			warnings = append(warnings, fmt.Sprintf("TRL validation failed for %d concepts", failed))
		}
	}

	ws.WriteArtifact("concepts", records)
	r.writeCSV(ws, records)

	report := export.Report{
		RunID:     ws.RunID,
		Problem:   cfg.Problem,
		Workflow:  cfg.Workflow,
		Generated: startTime,
		Phases:    result.Phases,
		Records:   records,
		Warnings:  warnings,
		Usage:     r.Collector.Summary(),
	}
	if _, err := ws.WriteReport("report.md", export.RenderMarkdown(report)); err != nil {
		warnings = append(warnings, fmt.Sprintf("could not write report: %v", err))
	}

	exitCode := 0
	if cfg.Save && db != nil && len(records) > 0 {
		if err := db.SaveConcepts(ctx, cfg.Problem, cfg.Workflow, records); err != nil {
			fmt.Fprintf(os.Stderr, "%sWarning:%s could not save concepts: %v\n", Yellow, Reset, err)
			exitCode = 1
		}
	}

	if cfg.Prune {
		export.PruneRuns(outputDir, cfg.KeepRuns)
	}

	endTime := time.Now()
	if cfg.StatsJSON {
		OutputStatsJSON(cfg, ws.RunID, startTime, endTime, len(records), exitCode, result.Phases)
	} else {
		PrintSummary(cfg, ws.RunDir, startTime, endTime.Sub(startTime), len(records), exitCode)
		fmt.Print(r.Collector.Summary())
	}

	return &RunResult{ExitCode: exitCode, Concepts: len(records)}
}

func (r *Runner) writeCSV(ws *workspace.Workspace, records []concept.Record) {
	path := filepath.Join(ws.RunDir, "concepts.csv")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sWarning:%s could not write %s: %v\n", Yellow, Reset, path, err)
		return
	}
	defer f.Close()
	if err := export.WriteCSV(f, records); err != nil {
		fmt.Fprintf(os.Stderr, "%sWarning:%s could not write %s: %v\n", Yellow, Reset, path, err)
	}
}

// parseArgs parses command line arguments into a Config.
// Returns (nil, nil) when help or the workflow list was shown.
func (r *Runner) parseArgs(args []string) (*Config, error) {
	if err := CheckDuplicateFlags(args, CommonFlagGroups()); err != nil {
		return nil, err
	}
	args = reorderArgsForFlagParsing(args, CommonFlagGroups())

	cfg := NewConfig()
	cfg.Workflow = r.Settings.DefaultWorkflow
	cfg.OriginalCmd = strings.Join(args, " ")

	fs := flag.NewFlagSet("ideagen", flag.ContinueOnError)
	fs.Usage = r.printUsage

	fs.StringVar(&cfg.Workflow, "w", cfg.Workflow, "workflow name")
	fs.StringVar(&cfg.Workflow, "workflow", cfg.Workflow, "workflow name")
	fs.StringVar(&cfg.ProblemFile, "f", "", "read problem statement from file")
	fs.StringVar(&cfg.ProblemFile, "file", "", "read problem statement from file")
	fs.StringVar(&cfg.OutputDir, "o", "", "run artifacts directory")
	fs.StringVar(&cfg.OutputDir, "output", "", "run artifacts directory")
	fs.StringVar(&cfg.Constraints, "x", "", "extra constraints for ideator prompts")
	fs.StringVar(&cfg.Constraints, "constraints", "", "extra constraints for ideator prompts")
	fs.BoolVar(&cfg.UseLock, "l", false, "queue behind other running instances")
	fs.BoolVar(&cfg.UseLock, "lock", false, "queue behind other running instances")
	fs.BoolVar(&cfg.Save, "s", false, "save refined concepts to the concept database")
	fs.BoolVar(&cfg.Save, "save", false, "save refined concepts to the concept database")
	fs.BoolVar(&cfg.StatsJSON, "J", false, "output run statistics as JSON")
	fs.BoolVar(&cfg.StatsJSON, "stats-json", false, "output run statistics as JSON")
	fs.BoolVar(&cfg.Prune, "prune", false, "delete old run directories after the run")
	fs.IntVar(&cfg.KeepRuns, "keep", cfg.KeepRuns, "runs to keep with --prune")
	fs.BoolVar(&cfg.SkipEnrich, "skip-enrich", false, "skip the enrichment pass")
	fs.BoolVar(&cfg.SkipTRL, "skip-trl", false, "skip evidence-backed TRL validation")
	fs.BoolVar(&cfg.Verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "debug logging")
	listWorkflows := fs.Bool("workflows", false, "list available workflows and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, nil
		}
		return nil, err
	}

	if *listWorkflows {
		r.printWorkflows()
		return nil, nil
	}

	cfg.Problem = strings.TrimSpace(strings.Join(fs.Args(), " "))
	return cfg, nil
}

func (r *Runner) printWorkflows() {
	wf, err := workflow.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Printf("%s%sWorkflows:%s\n", Bold, Cyan, Reset)
	for _, name := range wf.Names() {
		marker := " "
		if name == r.Settings.DefaultWorkflow {
			marker = "*"
		}
		fmt.Printf("  %s %s%s%s\n", marker, Magenta, name, Reset)
		fmt.Printf("      %s%s%s\n", Dim, strings.Join(wf.WorkflowAgents(name), ", "), Reset)
	}
}

func (r *Runner) printUsage() {
	fmt.Fprintf(os.Stderr, `%s%sUsage:%s ideagen [options] "problem statement"

%sOptions:%s
  -w, --workflow NAME   workflow to run (default %q)
  -f, --file PATH       read the problem statement from a file
  -x, --constraints S   extra constraints appended to ideator prompts
  -o, --output DIR      run artifacts directory
  -s, --save            save refined concepts to the concept database
  -l, --lock            queue behind other running instances
  -J, --stats-json      output run statistics as JSON
      --skip-enrich     skip the enrichment pass
      --skip-trl        skip evidence-backed TRL validation
      --prune           delete old run directories (see --keep)
      --keep N          runs to keep with --prune (default 20)
      --workflows       list available workflows and exit
  -v, --verbose         debug logging

%sEnvironment:%s
  AZURE_OPENAI_API_KEY  model API key (required)
  SERPAPI_API_KEY       enables the web evidence source
  IDEAGEN_*             override settings.json values
`, Bold, Cyan, Reset, Bold, Reset, r.Settings.DefaultWorkflow, Bold, Reset)
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	switch strings.ToLower(settings.GetEnvLogLevel()) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

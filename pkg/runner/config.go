package runner

import "ideagen/pkg/colors"

// Re-export color constants from colors package for backwards compatibility.
// New code should import ideagen/pkg/colors directly.
const (
	Bold    = colors.Bold
	Dim     = colors.Dim
	Red     = colors.Red
	Green   = colors.Green
	Yellow  = colors.Yellow
	Magenta = colors.Magenta
	Cyan    = colors.Cyan
	White   = colors.White
	Reset   = colors.Reset
)

// Display formatting constants
const (
	MaxDisplayProblemLen = 50 // Max length for problem display in banner
	TruncatedProblemLen  = 47 // Length before adding "..."
)

// Config holds the runtime configuration for one ideation run
type Config struct {
	Problem     string // The problem statement to ideate on
	ProblemFile string // File to read the problem statement from (-f)
	Constraints string // Extra constraints appended to every ideator prompt
	Workflow    string // Workflow name (-w), defaults from settings
	OutputDir   string // Run artifacts directory override (-o)
	UseLock     bool   // Use file lock to queue concurrent runs
	Save        bool   // Post refined concepts to the concept database
	KeepRuns    int    // With --prune, keep this many newest runs
	Prune       bool   // Delete old run directories after the run
	SkipEnrich  bool   // Skip the enrichment pass
	SkipTRL     bool   // Skip evidence-backed TRL validation
	StatsJSON   bool   // Output run statistics as JSON at completion
	Verbose     bool   // Debug logging
	OriginalCmd string // Original command string for display
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		KeepRuns: 20,
	}
}

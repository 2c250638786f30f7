// Package settings handles loading and managing user configuration
// from ~/.ideagen/settings.json. API keys are never stored in the
// settings file; they come from the environment only.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ai8future/chassis-go/v5/config"

	"ideagen/pkg/agent"
	"ideagen/pkg/concept"
	"ideagen/pkg/evidence"
)

const (
	ConfigDirName  = ".ideagen"
	ConfigFileName = "settings.json"
)

// AzureSettings holds the Azure OpenAI connection parameters. The API
// key is deliberately absent; see Secrets.
type AzureSettings struct {
	Endpoint   string `json:"endpoint"`    // e.g. "https://myresource.openai.azure.com"
	APIVersion string `json:"api_version"` // e.g. "2024-12-01-preview"
}

// EvidenceSettings tunes the literature search.
type EvidenceSettings struct {
	ArxivResults    int  `json:"arxiv_results,omitempty"`
	CrossrefResults int  `json:"crossref_results,omitempty"`
	WebResults      int  `json:"web_results,omitempty"`
	MaxResults      int  `json:"max_results,omitempty"`
	SkipURLCheck    bool `json:"skip_url_check,omitempty"`
}

// CostSettings holds the economic framing injected into agent prompts.
type CostSettings struct {
	Unit       string  `json:"unit,omitempty"`        // e.g. "USD/ft²"
	Target     float64 `json:"target,omitempty"`      // target installed cost in Unit
	MinimumTRL int     `json:"minimum_trl,omitempty"` // concepts below this need validation
}

// Settings holds all configuration for ideagen.
type Settings struct {
	Azure           AzureSettings     `json:"azure"`
	Deployments     map[string]string `json:"deployments,omitempty"` // per-agent deployment overrides
	DefaultWorkflow string            `json:"default_workflow,omitempty"`
	OutputDir       string            `json:"output_dir,omitempty"` // run artifacts directory (supports ~ expansion)
	PersistURL      string            `json:"persist_url,omitempty"`
	DedupThreshold  float64           `json:"dedup_threshold,omitempty"`
	Evidence        EvidenceSettings  `json:"evidence,omitempty"`
	Cost            CostSettings      `json:"cost,omitempty"`
}

// EnvOverrides allows environment variables to override settings.json values.
// All fields are optional (required:"false") — only non-empty values apply.
// Merge order: defaults < settings.json < env vars < CLI flags.
type EnvOverrides struct {
	Endpoint        string `env:"IDEAGEN_AZURE_ENDPOINT" required:"false"`
	APIVersion      string `env:"IDEAGEN_AZURE_API_VERSION" required:"false"`
	DefaultWorkflow string `env:"IDEAGEN_WORKFLOW" required:"false"`
	OutputDir       string `env:"IDEAGEN_OUTPUT_DIR" required:"false"`
	PersistURL      string `env:"IDEAGEN_PERSIST_URL" required:"false"`
	DedupThreshold  string `env:"IDEAGEN_DEDUP_THRESHOLD" required:"false"`
	LogLevel        string `env:"IDEAGEN_LOG_LEVEL" required:"false"`
}

// Secrets are environment-only. They never appear in settings.json and
// are never written to run artifacts.
type Secrets struct {
	AzureAPIKey string `env:"AZURE_OPENAI_API_KEY" required:"false"`
	SerpAPIKey  string `env:"SERPAPI_API_KEY" required:"false"`
}

// LoadSecrets reads API keys from the environment.
func LoadSecrets() Secrets {
	return config.MustLoad[Secrets]()
}

// applyEnvOverrides loads environment variable overrides and merges them into settings.
func applyEnvOverrides(s *Settings) {
	env := config.MustLoad[EnvOverrides]()

	if env.Endpoint != "" {
		s.Azure.Endpoint = env.Endpoint
	}
	if env.APIVersion != "" {
		s.Azure.APIVersion = env.APIVersion
	}
	if env.DefaultWorkflow != "" {
		s.DefaultWorkflow = env.DefaultWorkflow
	}
	if env.OutputDir != "" {
		s.OutputDir = expandTilde(env.OutputDir)
	}
	if env.PersistURL != "" {
		s.PersistURL = env.PersistURL
	}
	if env.DedupThreshold != "" {
		if v, err := strconv.ParseFloat(env.DedupThreshold, 64); err == nil && v > 0 && v <= 1 {
			s.DedupThreshold = v
		}
	}
}

// GetEnvLogLevel returns the IDEAGEN_LOG_LEVEL env var value, or empty string if unset.
func GetEnvLogLevel() string {
	return os.Getenv("IDEAGEN_LOG_LEVEL")
}

// GetConfigDir returns the path to the config directory (~/.ideagen)
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME") // fallback for legacy systems
	}
	return filepath.Join(home, ConfigDirName)
}

// GetConfigPath returns the full path to settings.json
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME") // fallback for legacy systems
			if home == "" {
				return path
			}
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
			if home == "" {
				return path
			}
		}
		return home
	}
	return path
}

// Load reads settings from ~/.ideagen/settings.json
// Returns nil and an error if the file doesn't exist or is invalid
func Load() (*Settings, error) {
	configPath := GetConfigPath()

	info, err := os.Stat(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("settings file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to stat settings file: %w", err)
	}

	mode := info.Mode().Perm()
	if mode&0002 != 0 { // world-writable
		fmt.Fprintf(os.Stderr, "Warning: settings file %s is world-writable (mode %o). This is a security risk.\n", configPath, mode)
		fmt.Fprintf(os.Stderr, "Run: chmod 600 %s\n", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", configPath, err)
	}

	settings.OutputDir = expandTilde(settings.OutputDir)

	return &settings, nil
}

// GetDefaultSettings returns settings with sensible defaults.
// Note: Azure.Endpoint is left empty - user should configure this in
// settings.json or via IDEAGEN_AZURE_ENDPOINT.
func GetDefaultSettings() *Settings {
	return &Settings{
		Azure: AzureSettings{
			APIVersion: "2024-12-01-preview",
		},
		DefaultWorkflow: "TRIZ Based Ideation",
		OutputDir:       GetConfigDir(),
		DedupThreshold:  concept.DefaultThreshold,
		Evidence: EvidenceSettings{
			ArxivResults:    5,
			CrossrefResults: 5,
			WebResults:      3,
			MaxResults:      evidence.MaxResults,
		},
		Cost: CostSettings{
			Unit:       "USD/ft²",
			Target:     15.0,
			MinimumTRL: 4,
		},
	}
}

// LoadWithFallback tries to load settings, falling back to defaults if not found
// Returns the settings (possibly with defaults) and whether the config file existed
func LoadWithFallback() (*Settings, bool) {
	settings, err := Load()
	if err != nil {
		s := GetDefaultSettings()
		applyEnvOverrides(s)
		return s, false
	}
	// Fill in any missing defaults
	defaults := GetDefaultSettings()
	if settings.Azure.APIVersion == "" {
		settings.Azure.APIVersion = defaults.Azure.APIVersion
	}
	if settings.DefaultWorkflow == "" {
		settings.DefaultWorkflow = defaults.DefaultWorkflow
	}
	if settings.OutputDir == "" {
		settings.OutputDir = defaults.OutputDir
	}
	if settings.DedupThreshold == 0 {
		settings.DedupThreshold = defaults.DedupThreshold
	}
	if settings.Evidence.ArxivResults == 0 {
		settings.Evidence.ArxivResults = defaults.Evidence.ArxivResults
	}
	if settings.Evidence.CrossrefResults == 0 {
		settings.Evidence.CrossrefResults = defaults.Evidence.CrossrefResults
	}
	if settings.Evidence.WebResults == 0 {
		settings.Evidence.WebResults = defaults.Evidence.WebResults
	}
	if settings.Evidence.MaxResults == 0 {
		settings.Evidence.MaxResults = defaults.Evidence.MaxResults
	}
	if settings.Cost.Unit == "" {
		settings.Cost.Unit = defaults.Cost.Unit
	}
	if settings.Cost.Target == 0 {
		settings.Cost.Target = defaults.Cost.Target
	}
	if settings.Cost.MinimumTRL == 0 {
		settings.Cost.MinimumTRL = defaults.Cost.MinimumTRL
	}
	// Apply environment variable overrides (IDEAGEN_* vars override settings.json)
	applyEnvOverrides(settings)

	return settings, true
}

// DeploymentFor returns the model deployment for an agent, honoring any
// per-agent override from settings.json.
func (s *Settings) DeploymentFor(def agent.Definition) string {
	if dep, ok := s.Deployments[def.Name]; ok && dep != "" {
		return dep
	}
	return def.Deployment
}

// IsAzureConfigured reports whether the Azure endpoint is set.
func (s *Settings) IsAzureConfigured() bool {
	return s.Azure.Endpoint != ""
}

// PrintSetupInstructions prints helpful setup instructions when the
// Azure endpoint is not configured.
func PrintSetupInstructions() {
	configPath := GetConfigPath()
	configDir := GetConfigDir()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "\033[1m\033[36mSetup Required:\033[0m\n")
	fmt.Fprintf(os.Stderr, "  No Azure OpenAI endpoint configured.\n\n")
	fmt.Fprintf(os.Stderr, "  Create the settings file:\n")
	fmt.Fprintf(os.Stderr, "    \033[32mmkdir -p %s\033[0m\n", configDir)
	fmt.Fprintf(os.Stderr, "  Then add to \033[35m%s\033[0m:\n", configPath)
	fmt.Fprintf(os.Stderr, "    \033[33m{\n")
	fmt.Fprintf(os.Stderr, "      \"azure\": {\"endpoint\": \"https://myresource.openai.azure.com\"}\n")
	fmt.Fprintf(os.Stderr, "    }\033[0m\n\n")
	fmt.Fprintf(os.Stderr, "  And export the API key (never stored in the file):\n")
	fmt.Fprintf(os.Stderr, "    \033[32mexport AZURE_OPENAI_API_KEY=...\033[0m\n")
	fmt.Fprintf(os.Stderr, "\n")
}

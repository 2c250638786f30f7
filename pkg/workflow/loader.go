package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// validSection guards section names coming from user override files so
// they cannot smuggle path- or prompt-breaking characters.
var validSection = regexp.MustCompile(`^[a-z0-9_]+$`)

// UserOverridePath is the default location of the user workflow file.
func UserOverridePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ideagen", "workflows.yaml")
}

// Load returns the workflow configuration. When path is empty the
// default user override location is checked; a missing file falls back
// to the builtin configuration. Fields set in the override replace the
// corresponding builtin field wholesale.
func Load(path string) (*Config, error) {
	if path == "" {
		path = UserOverridePath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) || path == "" {
			return Builtin(), nil
		}
		return nil, fmt.Errorf("could not read workflow file %s: %w", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("could not parse workflow file %s: %w", path, err)
	}

	cfg := Builtin()
	if len(override.Workflows) > 0 {
		cfg.Workflows = override.Workflows
	}
	if len(override.IdeationAgents) > 0 {
		cfg.IdeationAgents = override.IdeationAgents
	}
	if len(override.ReviewAgents) > 0 {
		cfg.ReviewAgents = override.ReviewAgents
	}
	if len(override.SectionDeps) > 0 {
		cfg.SectionDeps = override.SectionDeps
	}
	if len(override.SectionOwners) > 0 {
		cfg.SectionOwners = override.SectionOwners
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Workflows) == 0 {
		return fmt.Errorf("no workflows defined")
	}
	for name, agents := range c.Workflows {
		if len(agents) == 0 {
			return fmt.Errorf("workflow %q has no agents", name)
		}
	}
	for section, deps := range c.SectionDeps {
		if !validSection.MatchString(section) {
			return fmt.Errorf("invalid section name %q", section)
		}
		for _, dep := range deps {
			if !validSection.MatchString(dep) {
				return fmt.Errorf("invalid dependency %q of section %q", dep, section)
			}
		}
	}
	return nil
}

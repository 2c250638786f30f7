// Package workflow holds the named agent workflows, the phase groupings,
// and the proposal section dependency graph. Builtin defaults can be
// overridden by a user file under the config directory.
package workflow

import (
	"sort"

	"ideagen/pkg/agent"
)

// Project-wide defaults.
const (
	DefaultCostUnit   = "USD/ft²"
	DefaultTargetCost = 15.0
	MinAcceptableTRL  = 4
)

// Config is the full workflow configuration: which agents make up each
// named workflow, which agents ideate and which review, and how proposal
// sections depend on one another.
type Config struct {
	Workflows      map[string][]string `yaml:"workflows"`
	IdeationAgents []string            `yaml:"ideation_agents"`
	ReviewAgents   []string            `yaml:"review_agents"`
	SectionDeps    map[string][]string `yaml:"section_dependencies"`
	SectionOwners  map[string][]string `yaml:"section_owners"`
}

// Builtin returns the default configuration.
func Builtin() *Config {
	cfg := &Config{
		Workflows: map[string][]string{
			"TRIZ Based Ideation": {
				agent.LiteratureReview,
				agent.ProductIdeation,
				agent.TRIZIdeation,
				agent.SciResearch1,
				agent.SciResearch2,
				agent.BlackHatThinker,
				agent.SelfCritique,
			},
			"Cross-Industry Ideation": {
				agent.CrossIndustry,
				agent.SciResearch2,
				agent.BlackHatThinker,
				agent.SelfCritique,
			},
			"Integrated Solutions Ideation": {
				agent.ProductIdeation,
				agent.IntegratedSolution,
				agent.SciResearch1,
				agent.SciResearch2,
				agent.BlackHatThinker,
				agent.SelfCritique,
			},
		},
		IdeationAgents: []string{
			agent.TRIZIdeation,
			agent.CrossIndustry,
			agent.IntegratedSolution,
			agent.SciResearch1,
			agent.SciResearch2,
			agent.ProductIdeation,
		},
		ReviewAgents: []string{
			agent.BlackHatThinker,
			agent.SelfCritique,
		},
		SectionDeps: map[string][]string{
			"problem_statement": {
				"concept_overview", "executive_summary", "title",
			},
			"concept_overview": {
				"technical_details", "performance_targets", "manufacturing_process",
				"sustainability", "applications", "executive_summary",
			},
			"technical_details": {
				"performance_targets", "manufacturing_process", "cost_feasibility",
				"risks_mitigations", "sustainability", "validation_plan",
				"work_plan", "kpi_table", "executive_summary",
			},
			"manufacturing_process": {
				"cost_feasibility", "risks_mitigations", "work_plan",
				"validation_plan", "kpi_table", "executive_summary",
			},
			"performance_targets": {
				"kpi_table", "validation_plan", "executive_summary",
				"technical_details", "concept_overview", "manufacturing_process",
			},
			"cost_feasibility": {
				"work_plan", "kpi_table", "executive_summary",
			},
			"risks_mitigations": {
				"work_plan", "executive_summary",
			},
			"sustainability": {
				"executive_summary", "applications",
			},
			"applications": {
				"executive_summary", "work_plan",
			},
			"work_plan": {
				"validation_plan", "kpi_table", "executive_summary",
			},
			"validation_plan": {
				"kpi_table", "executive_summary",
			},
			"kpi_table":    {"executive_summary"},
			"ip_landscape": {"executive_summary"},
			"references":   {"executive_summary"},
		},
		SectionOwners: map[string][]string{
			"risks_mitigations": {agent.BlackHatThinker},
		},
	}
	return cfg
}

// Names returns the workflow names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Workflows))
	for name := range c.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorkflowAgents returns the agent list for a named workflow, or nil.
func (c *Config) WorkflowAgents(name string) []string {
	return c.Workflows[name]
}

// IdeatorsFor returns the ideation-phase agents of a workflow: the
// workflow's agents filtered to the ideation group, in workflow order.
func (c *Config) IdeatorsFor(workflowName string) []string {
	return c.intersect(workflowName, c.IdeationAgents)
}

// ReviewersFor returns the review-phase agents of a workflow.
func (c *Config) ReviewersFor(workflowName string) []string {
	return c.intersect(workflowName, c.ReviewAgents)
}

func (c *Config) intersect(workflowName string, group []string) []string {
	members := make(map[string]bool, len(group))
	for _, name := range group {
		members[name] = true
	}
	var out []string
	for _, name := range c.Workflows[workflowName] {
		if members[name] {
			out = append(out, name)
		}
	}
	return out
}

// OwnersOf returns the agents responsible for regenerating a section.
// Sections without an explicit owner belong to the proposal writer.
func (c *Config) OwnersOf(section string) []string {
	if owners, ok := c.SectionOwners[section]; ok && len(owners) > 0 {
		return owners
	}
	return []string{agent.ProposalWriter}
}

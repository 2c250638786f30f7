// Package agent defines the agent roster and the registry through which
// the pipeline invokes agents. Each agent pairs a role prompt with the
// JSON schema its replies must satisfy.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideagen/pkg/llm"
	"ideagen/pkg/schemacall"
)

// Definition describes one agent: its role prompt, reply schema, and the
// model deployment it runs on.
type Definition struct {
	Name       string `yaml:"name"`
	Prompt     string `yaml:"prompt"`
	Deployment string `yaml:"deployment"`
	Schema     string `yaml:"schema"`
}

// Registry resolves agent names to schema-validated callers.
type Registry struct {
	defs    map[string]Definition
	callers map[string]*schemacall.Caller
}

// NewRegistry builds a registry from definitions. invokerFor supplies
// the model client for each definition; tests inject fakes here.
func NewRegistry(defs []Definition, invokerFor func(Definition) llm.Invoker) *Registry {
	r := &Registry{
		defs:    make(map[string]Definition, len(defs)),
		callers: make(map[string]*schemacall.Caller, len(defs)),
	}
	for _, d := range defs {
		r.defs[d.Name] = d
		r.callers[d.Name] = &schemacall.Caller{
			Invoker:    invokerFor(d),
			Deployment: d.Deployment,
		}
	}
	return r
}

// Names returns the registered agent names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Definition returns the definition for name.
func (r *Registry) Definition(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Schema returns the reply schema for name, or "" if unknown.
func (r *Registry) Schema(name string) string {
	return r.defs[name].Schema
}

// Act invokes the named agent. payload becomes the user prompt: strings
// pass through as-is, anything else is marshalled to JSON. extra is
// appended to the role prompt (avoid-lists, reviewer instructions, and
// the like). The reply is the schema-validated parsed JSON value.
func (r *Registry) Act(ctx context.Context, name string, payload any, extra string) (any, error) {
	caller, ok := r.callers[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", name)
	}
	d := r.defs[name]

	user, err := renderPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("agent %s: encode payload: %w", name, err)
	}

	system := fmt.Sprintf("You are %s. %s", d.Name, d.Prompt)
	if extra = strings.TrimSpace(extra); extra != "" {
		system += "\n" + extra
	}

	value, _, err := caller.Call(ctx, schemacall.Spec{
		System: system,
		User:   user,
		Schema: d.Schema,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}
	return value, nil
}

// ActObject is Act restricted to object-shaped replies.
func (r *Registry) ActObject(ctx context.Context, name string, payload any, extra string) (map[string]any, error) {
	value, err := r.Act(ctx, name, payload, extra)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("agent %s: reply is %T, want object", name, value)
	}
	return obj, nil
}

func renderPayload(payload any) (string, error) {
	switch v := payload.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

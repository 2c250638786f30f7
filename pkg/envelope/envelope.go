// Package envelope is the uniform result wrapper for pipeline phases.
// Every phase reports its outcome, counters, and failures through one
// shape so run reports and artifacts stay consistent.
package envelope

import "time"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPartial Status = "partial" // some agents or rows failed, output still usable
	StatusSkipped Status = "skipped"
)

type Envelope struct {
	Phase     string         `json:"phase"`
	Status    Status         `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	OutputRef string         `json:"output_ref,omitempty"`
	Error     *ErrorInfo     `json:"error,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	Metrics   *Metrics       `json:"metrics,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Metrics struct {
	AgentsTotal  int       `json:"agents_total,omitempty"`
	AgentsFailed int       `json:"agents_failed,omitempty"`
	Concepts     int       `json:"concepts,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Builder pattern
type Builder struct {
	env *Envelope
}

func New(phase string) *Builder {
	return &Builder{env: &Envelope{
		Phase:  phase,
		Result: make(map[string]any),
	}}
}

func (b *Builder) Success() *Builder {
	b.env.Status = StatusSuccess
	return b
}

// Partial marks a phase that lost some contributors but still produced
// usable output.
func (b *Builder) Partial() *Builder {
	b.env.Status = StatusPartial
	return b
}

func (b *Builder) Skipped() *Builder {
	b.env.Status = StatusSkipped
	return b
}

func (b *Builder) Failure(code, message string) *Builder {
	b.env.Status = StatusFailure
	b.env.Error = &ErrorInfo{Code: code, Message: message}
	return b
}

func (b *Builder) WithResult(key string, value any) *Builder {
	b.env.Result[key] = value
	return b
}

func (b *Builder) WithOutputRef(path string) *Builder {
	b.env.OutputRef = path
	return b
}

func (b *Builder) WithWarning(msg string) *Builder {
	b.env.Warnings = append(b.env.Warnings, msg)
	return b
}

func (b *Builder) WithCounts(agentsTotal, agentsFailed, concepts int) *Builder {
	m := b.metrics()
	m.AgentsTotal = agentsTotal
	m.AgentsFailed = agentsFailed
	m.Concepts = concepts
	return b
}

func (b *Builder) WithSpan(start, end time.Time) *Builder {
	m := b.metrics()
	m.StartTime = start
	m.EndTime = end
	m.DurationMs = end.Sub(start).Milliseconds()
	return b
}

func (b *Builder) metrics() *Metrics {
	if b.env.Metrics == nil {
		b.env.Metrics = &Metrics{}
	}
	return b.env.Metrics
}

func (b *Builder) Build() *Envelope {
	return b.env
}

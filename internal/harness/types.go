package harness

import (
	"fmt"
	"strconv"
)

// Trace entry types.
const (
	EntryStep   = "step"
	EntryEvent  = "event"
	EntryRender = "render"
)

// TraceEntry is one line of a session trace: a step that was applied, an
// outward event the viewer fired, or a page render that completed.
type TraceEntry struct {
	Seq   int64  `json:"seq"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// String formats the entry as "name:value", the form used by the events
// assertion.
func (e TraceEntry) String() string {
	if e.Value == "" {
		return e.Name
	}
	return fmt.Sprintf("%s:%s", e.Name, e.Value)
}

// FinalState is the viewer state after the last step.
type FinalState struct {
	Status    string  `json:"status"`
	PageIndex int     `json:"page_index"`
	Scale     float64 `json:"scale"`
	Rotation  int     `json:"rotation"`
	Window    [2]int  `json:"window"`
	NumPages  int     `json:"num_pages"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains steps, outward events and renders in order.
	Trace []TraceEntry `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final FinalState `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns the outward events of the trace as "name:value".
func (r *Result) Events() []string {
	out := []string{}
	for _, e := range r.Trace {
		if e.Type == EntryEvent {
			out = append(out, e.String())
		}
	}
	return out
}

// RenderOrder returns the pages whose render completed, in order.
func (r *Result) RenderOrder() []int {
	out := []int{}
	for _, e := range r.Trace {
		if e.Type != EntryRender {
			continue
		}
		if page, err := strconv.Atoi(e.Value); err == nil {
			out = append(out, page)
		}
	}
	return out
}

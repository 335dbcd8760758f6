package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, entry := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", entry.Seq, entry.Type, entry)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(r, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertCurrentPage:
		return assertCurrentPage(r, a)
	case AssertStatus:
		return assertStatus(r, a)
	case AssertRenderOrder:
		return assertRenderOrder(r, a)
	case AssertEvents:
		return assertEvents(r, a)
	case AssertFinalState:
		return assertFinalState(r, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertCurrentPage(r *Result, a Assertion) error {
	if r.Final.PageIndex == *a.Page {
		return nil
	}
	return &AssertionError{
		Type:     AssertCurrentPage,
		Expected: fmt.Sprintf("page %d", *a.Page),
		Actual:   fmt.Sprintf("page %d", r.Final.PageIndex),
		Trace:    r.Trace,
	}
}

func assertStatus(r *Result, a Assertion) error {
	if r.Final.Status == a.Status {
		return nil
	}
	return &AssertionError{
		Type:     AssertStatus,
		Expected: a.Status,
		Actual:   r.Final.Status,
		Trace:    r.Trace,
	}
}

// assertRenderOrder compares the full sequence of completed renders.
func assertRenderOrder(r *Result, a Assertion) error {
	got := r.RenderOrder()
	if slices.Equal(got, a.Pages) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRenderOrder,
		Expected: fmt.Sprintf("%v", a.Pages),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    r.Trace,
	}
}

// assertEvents compares the full sequence of outward events.
func assertEvents(r *Result, a Assertion) error {
	got := r.Events()
	if slices.Equal(got, a.Events) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEvents,
		Expected: strings.Join(a.Events, ", "),
		Actual:   strings.Join(got, ", "),
		Trace:    r.Trace,
	}
}

// assertFinalState compares only the fields the assertion sets.
func assertFinalState(r *Result, a Assertion) error {
	f := r.Final
	var diffs []string
	if a.Page != nil && f.PageIndex != *a.Page {
		diffs = append(diffs, fmt.Sprintf("page %d, want %d", f.PageIndex, *a.Page))
	}
	if a.Status != "" && f.Status != a.Status {
		diffs = append(diffs, fmt.Sprintf("status %s, want %s", f.Status, a.Status))
	}
	if a.Scale != nil && f.Scale != *a.Scale {
		diffs = append(diffs, fmt.Sprintf("scale %g, want %g", f.Scale, *a.Scale))
	}
	if a.Rotation != nil && f.Rotation != *a.Rotation {
		diffs = append(diffs, fmt.Sprintf("rotation %d, want %d", f.Rotation, *a.Rotation))
	}
	if len(a.Window) == 2 && (f.Window[0] != a.Window[0] || f.Window[1] != a.Window[1]) {
		diffs = append(diffs, fmt.Sprintf("window %v, want %v", f.Window, a.Window))
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: "matching final state",
		Actual:   strings.Join(diffs, "; "),
		Trace:    r.Trace,
	}
}

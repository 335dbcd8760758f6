package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEntry{
		{Seq: 1, Type: EntryStep, Name: "mount"},
		{Seq: 2, Type: EntryEvent, Name: "document-load", Value: "3"},
		{Seq: 3, Type: EntryEvent, Name: "page-change", Value: "0"},
		{Seq: 4, Type: EntryRender, Name: "page", Value: "0"},
		{Seq: 5, Type: EntryRender, Name: "page", Value: "1"},
	}
	r.Final = FinalState{
		Status:    "Loaded",
		PageIndex: 0,
		Scale:     1,
		Window:    [2]int{0, 1},
		NumPages:  3,
	}
	return r
}

func TestResult_EventsAndRenderOrder(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, []string{"document-load:3", "page-change:0"}, r.Events())
	assert.Equal(t, []int{0, 1}, r.RenderOrder())
}

func TestTraceEntry_String(t *testing.T) {
	assert.Equal(t, "mount", TraceEntry{Name: "mount"}.String())
	assert.Equal(t, "zoom:1.5", TraceEntry{Name: "zoom", Value: "1.5"}.String())
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantFail  string
	}{
		{"current page", Assertion{Type: AssertCurrentPage, Page: intPtr(0)}, ""},
		{"wrong current page", Assertion{Type: AssertCurrentPage, Page: intPtr(2)}, "page 2"},
		{"status", Assertion{Type: AssertStatus, Status: "Loaded"}, ""},
		{"wrong status", Assertion{Type: AssertStatus, Status: "Failed"}, "Failed"},
		{"render order", Assertion{Type: AssertRenderOrder, Pages: []int{0, 1}}, ""},
		{"wrong render order", Assertion{Type: AssertRenderOrder, Pages: []int{1, 0}}, "[1 0]"},
		{"events", Assertion{Type: AssertEvents, Events: []string{"document-load:3", "page-change:0"}}, ""},
		{"missing event", Assertion{Type: AssertEvents, Events: []string{"document-load:3"}}, "page-change:0"},
		{"final state", Assertion{Type: AssertFinalState, Scale: floatPtr(1), Rotation: intPtr(0), Window: []int{0, 1}}, ""},
		{"wrong window", Assertion{Type: AssertFinalState, Window: []int{0, 2}}, "window [0 1], want [0 2]"},
		{"wrong scale", Assertion{Type: AssertFinalState, Scale: floatPtr(2)}, "scale 1, want 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.wantFail == "" {
				assert.Empty(t, failures)
				return
			}
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], tt.wantFail)
			assert.Contains(t, failures[0], "assertions[0]")
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertStatus,
		Expected: "Loaded",
		Actual:   "Failed",
		Trace:    sampleResult().Trace,
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: status")
	assert.Contains(t, msg, "Expected: Loaded")
	assert.Contains(t, msg, "Actual: Failed")
	assert.Contains(t, msg, "[2] event document-load:3")
}

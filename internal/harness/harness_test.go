package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/viewer"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{
		"jump_to_last_page",
		"zoom_and_rotate",
		"password_retry",
		"load_failure",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadTestScenario(t, "jump_to_last_page")
	s.Assertions = []Assertion{{Type: AssertCurrentPage, Page: intPtr(1)}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: page 1")
}

func TestRun_SequenceNumbersIncrease(t *testing.T) {
	result, err := Run(loadTestScenario(t, "zoom_and_rotate"))
	require.NoError(t, err)

	require.NotEmpty(t, result.Trace)
	for i, entry := range result.Trace {
		assert.Equal(t, int64(i+1), entry.Seq)
	}
	assert.Equal(t, "mount", result.Trace[0].Name)
}

func TestRun_RenderRetry(t *testing.T) {
	s := &Scenario{
		Name:        "retry",
		Description: "A failing page is retried",
		Document: DocumentSpec{
			ID:             "flaky",
			Uniform:        &UniformPages{Count: 1, Width: 100, Height: 200},
			RenderFailures: map[int]int{0: 2},
		},
		Viewport: Size{Width: 100, Height: 300},
		Options:  Options{Scale: 1, MaxRenderAttempts: 3},
		Assertions: []Assertion{
			{Type: AssertRenderOrder, Pages: []int{0}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_QueuedStepRunsWithNextDrain(t *testing.T) {
	s := loadTestScenario(t, "jump_to_last_page")
	queued := 1
	s.Steps = []Step{
		{Jump: &queued, Queue: true},
		{Jump: intPtr(3)},
	}
	s.Assertions = []Assertion{
		{Type: AssertEvents, Events: []string{"document-load:4", "page-change:0", "page-change:1", "page-change:3"}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CancelAfterLoadIsRejected(t *testing.T) {
	s := loadTestScenario(t, "jump_to_last_page")
	s.Steps = []Step{{Cancel: true}}
	s.Assertions = []Assertion{{Type: AssertStatus, Status: "Loaded"}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "steps[0]")
	assert.Equal(t, "Loaded", result.Final.Status)
}

func TestRun_ViewerOptionsAreOverriddenByScenario(t *testing.T) {
	s := loadTestScenario(t, "jump_to_last_page")
	s.Assertions = []Assertion{{Type: AssertFinalState, Scale: floatPtr(1)}}

	result, err := Run(s, WithViewerOptions(viewer.WithDefaultScale(3)))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

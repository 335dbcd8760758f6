package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/journal"
)

const jumpScenario = `
name: jump
description: "Jump to the last page"
document:
  id: report
  uniform: {count: 4, width: 100, height: 200}
viewport: {width: 100, height: 300}
options:
  scale: 1
  overscan: 1
  page_gap: 0
steps:
  - jump: 3
assertions:
  - type: current_page
    page: 3
  - type: render_order
    pages: [0, 1, 2, 3]
`

const failingScenario = `
name: wrong_page
description: "Expects the wrong page"
document:
  id: report
  uniform: {count: 4, width: 100, height: 200}
viewport: {width: 100, height: 300}
steps:
  - jump: 3
assertions:
  - type: current_page
    page: 1
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func executeSimulate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewSimulateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSimulateMissingArgs(t *testing.T) {
	_, err := executeSimulate(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestSimulateNonExistentPath(t *testing.T) {
	_, err := executeSimulate(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario path not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulateEmptyDir(t *testing.T) {
	out, err := executeSimulate(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestSimulatePassingScenario(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"jump.yaml": jumpScenario})

	out, err := executeSimulate(t, "text", filepath.Join(dir, "jump.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ jump (Loaded, page 3, scale 1)")
	assert.Contains(t, out, "Results: 1 passed, 0 failed, 1 total")
}

func TestSimulateFailingScenario(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"jump.yaml":  jumpScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := executeSimulate(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string         `json:"status"`
		Data   SimulateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestSimulateFilter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"jump.yaml":  jumpScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := executeSimulate(t, "text", dir, "--filter", "ju*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestSimulateGoldenUpdateAndCompare(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"jump.yaml": jumpScenario})

	_, err := executeSimulate(t, "text", dir, "--update")
	require.NoError(t, err)

	goldenPath := filepath.Join(dir, "golden", "jump.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name": "jump"`)

	_, err = executeSimulate(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0644))
	out, err := executeSimulate(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}

func TestSimulateInvalidConfig(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"jump.yaml":  jumpScenario,
		"viewer.cue": "overscan: -1\n",
	})

	_, err := executeSimulate(t, "text", filepath.Join(dir, "jump.yaml"), "--config", filepath.Join(dir, "viewer.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSimulateWithJournal(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"jump.yaml": jumpScenario})
	dbPath := filepath.Join(dir, "journal.db")
	cfgPath := filepath.Join(dir, "viewer.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`journal: "`+dbPath+`"`+"\n"), 0644))

	_, err := executeSimulate(t, "text", filepath.Join(dir, "jump.yaml"), "--config", cfgPath)
	require.NoError(t, err)

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	n, err := j.SessionCount(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pos, ok, err := j.LastPosition(context.Background(), "report")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, pos.PageIndex)
}

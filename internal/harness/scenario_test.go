package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "Minimal scenario"
document:
  id: doc
  uniform:
    count: 3
    width: 100
    height: 200
viewport:
  width: 100
  height: 300
steps:
  - jump: 2
assertions:
  - type: current_page
    page: 2
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, "doc", scenario.Document.ID)
	require.NotNil(t, scenario.Document.Uniform)
	assert.Equal(t, 3, scenario.Document.Uniform.Count)
	assert.Equal(t, Size{Width: 100, Height: 300}, scenario.Viewport)
	require.Len(t, scenario.Steps, 1)
	require.NotNil(t, scenario.Steps[0].Jump)
	assert.Equal(t, 2, *scenario.Steps[0].Jump)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertCurrentPage, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_TestdataFiles(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion:\n  - type: status\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing name",
			yaml: `
description: "x"
document: {id: d}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: x
document: {id: d}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing document id",
			yaml: `
name: x
description: "x"
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "document.id is required",
		},
		{
			name: "pages and uniform",
			yaml: `
name: x
description: "x"
document:
  id: d
  pages: [{width: 1, height: 1}]
  uniform: {count: 1, width: 1, height: 1}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "zero page size",
			yaml: `
name: x
description: "x"
document:
  id: d
  pages: [{width: 0, height: 1}]
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "document.pages[0]",
		},
		{
			name: "no assertions",
			yaml: `
name: x
description: "x"
document: {id: d}
`,
			wantErr: "assertions list is required",
		},
		{
			name: "two actions in one step",
			yaml: `
name: x
description: "x"
document: {id: d}
steps:
  - jump: 1
    scroll: 10
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "exactly one action",
		},
		{
			name: "empty step",
			yaml: `
name: x
description: "x"
document: {id: d}
steps:
  - queue: true
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "exactly one action",
		},
		{
			name: "bad rotation",
			yaml: `
name: x
description: "x"
document: {id: d}
steps:
  - rotate: sideways
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "rotate must be forward or backward",
		},
		{
			name: "zoom with scale and level",
			yaml: `
name: x
description: "x"
document: {id: d}
steps:
  - zoom: {scale: 2, level: page-fit}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "exactly one of scale or level",
		},
		{
			name: "unknown zoom level",
			yaml: `
name: x
description: "x"
document: {id: d}
steps:
  - zoom: {level: huge}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "unknown zoom level",
		},
		{
			name: "unknown scroll mode",
			yaml: `
name: x
description: "x"
document: {id: d}
options: {scroll_mode: diagonal}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "options.scroll_mode",
		},
		{
			name: "unknown hook policy",
			yaml: `
name: x
description: "x"
document: {id: d}
options: {hook_failure: ignore}
assertions: [{type: status, status: Loaded}]
`,
			wantErr: "options.hook_failure",
		},
		{
			name: "unknown assertion type",
			yaml: `
name: x
description: "x"
document: {id: d}
assertions: [{type: eventually}]
`,
			wantErr: "unknown assertion type",
		},
		{
			name: "current_page without page",
			yaml: `
name: x
description: "x"
document: {id: d}
assertions: [{type: current_page}]
`,
			wantErr: "page is required",
		},
		{
			name: "final_state without fields",
			yaml: `
name: x
description: "x"
document: {id: d}
assertions: [{type: final_state}]
`,
			wantErr: "final_state needs",
		},
		{
			name: "final_state window of one",
			yaml: `
name: x
description: "x"
document: {id: d}
assertions: [{type: final_state, window: [1]}]
`,
			wantErr: "window must be [start, end]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

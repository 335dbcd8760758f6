package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/document"
)

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0644))
	return path
}

func syntheticInspect(format string, opts ...document.SyntheticOption) *InspectOptions {
	pages := []document.SyntheticPage{
		{Width: 612, Height: 792},
		{Width: 792, Height: 612},
	}
	return &InspectOptions{
		RootOptions: &RootOptions{Format: format},
		Loader:      document.NewSynthetic("doc-1", pages, opts...),
	}
}

func TestInspectMissingArgs(t *testing.T) {
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestInspectNonExistentFile(t *testing.T) {
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/report.pdf"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInspectRejectsGarbage(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeDocument(t)})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error ["+ErrCodeLoadFailed+"]")
}

func TestInspectText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := newInspectCommand(syntheticInspect("text"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeDocument(t)})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "File:   report.pdf")
	assert.Contains(t, out, "Doc ID: doc-1")
	assert.Contains(t, out, "Pages:  2")
	assert.Contains(t, out, "[1] 792x612")
}

func TestInspectJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := newInspectCommand(syntheticInspect("json"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeDocument(t)})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string        `json:"status"`
		Data   InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "doc-1", resp.Data.DocID)
	require.Len(t, resp.Data.Pages, 2)
	assert.Equal(t, 612.0, resp.Data.Pages[0].Width)
}

func TestInspectPassword(t *testing.T) {
	path := writeDocument(t)

	t.Run("required", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := newInspectCommand(syntheticInspect("json", document.WithPassword("hunter2")))
		cmd.SetOut(buf)
		cmd.SetArgs([]string{path})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodePassword, resp.Error.Code)
	})

	t.Run("supplied", func(t *testing.T) {
		buf := &bytes.Buffer{}
		cmd := newInspectCommand(syntheticInspect("text", document.WithPassword("hunter2")))
		cmd.SetOut(buf)
		cmd.SetArgs([]string{path, "--password", "hunter2"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "Pages:  2")
	})
}

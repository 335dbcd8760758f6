package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/journal"
	"github.com/roach88/pageflow/internal/model"
)

// seedJournal records one session of doc-1: load, move to page 4, zoom.
func seedJournal(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	sid, err := j.BeginSession(ctx, "doc-1", "report.pdf", 10)
	require.NoError(t, err)

	require.NoError(t, j.RecordState(ctx, sid, 1, model.ViewerState{PageIndex: 0, Scale: 1}))
	require.NoError(t, j.RecordEvent(ctx, sid, 2, "document-load", 0, 1))
	require.NoError(t, j.RecordEvent(ctx, sid, 3, "page-change", 0, 1))
	require.NoError(t, j.RecordState(ctx, sid, 4, model.ViewerState{PageIndex: 4, Scale: 1.5, Rotation: 90}))
	require.NoError(t, j.RecordEvent(ctx, sid, 5, "page-change", 4, 1.5))
	require.NoError(t, j.RecordEvent(ctx, sid, 6, "zoom", 4, 1.5))
	return dbPath
}

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryMissingDatabaseFlag(t *testing.T) {
	_, err := executeHistory(t, "text", "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestHistoryNonExistentDatabase(t *testing.T) {
	_, err := executeHistory(t, "text", "--db", "/nonexistent/path/journal.db", "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryUnknownDocument(t *testing.T) {
	out, err := executeHistory(t, "text", "--db", seedJournal(t), "doc-2")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found for document: doc-2")
}

func TestHistoryText(t *testing.T) {
	out, err := executeHistory(t, "text", "--db", seedJournal(t), "doc-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Sessions: 1")
	assert.Contains(t, out, "Last Position: page 4, scale 1.5, rotation 90")
	assert.Contains(t, out, "[3] page-change 0")
	assert.Contains(t, out, "[6] zoom 1.5")
}

func TestHistoryJSONWithLimit(t *testing.T) {
	out, err := executeHistory(t, "json", "--db", seedJournal(t), "doc-1", "--limit", "2")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Sessions)
	require.Len(t, resp.Data.Events, 2)
	assert.Equal(t, "document-load", resp.Data.Events[0].Kind)
	require.NotNil(t, resp.Data.LastPosition)
	assert.Equal(t, 4, resp.Data.LastPosition.PageIndex)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "doc-1", truncateID("doc-1"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pageflow/internal/model"
)

// Entry is one outward event read back from the journal.
type Entry struct {
	SessionID string  `json:"session_id"`
	Seq       int64   `json:"seq"`
	Kind      string  `json:"kind"`
	PageIndex int     `json:"page_index"`
	Scale     float64 `json:"scale"`
}

// Position is the last committed reading position of a document.
type Position struct {
	SessionID string  `json:"session_id"`
	PageIndex int     `json:"page_index"`
	Scale     float64 `json:"scale"`
	Rotation  int     `json:"rotation"`
}

// RecordState appends a committed viewer state.
// Duplicate (session, seq) pairs are ignored so replays are idempotent.
func (j *Journal) RecordState(ctx context.Context, sessionID string, seq int64, st model.ViewerState) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO states (session_id, seq, page_index, scale, rotation)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, sessionID, seq, st.PageIndex, st.Scale, st.Rotation)
	if err != nil {
		return fmt.Errorf("record state: %w", err)
	}
	return nil
}

// RecordEvent appends an outward event.
// Duplicate (session, seq) pairs are ignored.
func (j *Journal) RecordEvent(ctx context.Context, sessionID string, seq int64, kind string, pageIndex int, scale float64) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, kind, page_index, scale)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, sessionID, seq, kind, pageIndex, scale)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// LastPosition returns the most recent committed state of docID across all
// sessions. ok is false when the document was never opened.
func (j *Journal) LastPosition(ctx context.Context, docID string) (Position, bool, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT st.session_id, st.page_index, st.scale, st.rotation
		FROM states st
		JOIN sessions s ON s.id = st.session_id
		WHERE s.doc_id = ?
		ORDER BY s.ordinal DESC, st.seq DESC
		LIMIT 1
	`, docID)

	var pos Position
	err := row.Scan(&pos.SessionID, &pos.PageIndex, &pos.Scale, &pos.Rotation)
	if errors.Is(err, sql.ErrNoRows) {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, fmt.Errorf("last position: %w", err)
	}
	return pos, true, nil
}

// History returns the outward events recorded for docID, oldest first.
// A limit <= 0 returns every event.
func (j *Journal) History(ctx context.Context, docID string, limit int) ([]Entry, error) {
	query := `
		SELECT e.session_id, e.seq, e.kind, e.page_index, e.scale
		FROM events e
		JOIN sessions s ON s.id = e.session_id
		WHERE s.doc_id = ?
		ORDER BY s.ordinal ASC, e.seq ASC`
	args := []any{docID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.Kind, &e.PageIndex, &e.Scale); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// SessionCount returns how many times docID has been opened.
func (j *Journal) SessionCount(ctx context.Context, docID string) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE doc_id = ?`, docID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

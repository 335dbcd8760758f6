package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations upgrade journals created by older builds. Entry i brings a
// database from user_version i to i+1; fresh databases run them too, so
// every statement must be a no-op on the current schema.
var migrations = []string{
	// v1: history filters events by kind.
	`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
}

// Journal records viewer sessions in SQLite.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal at path, creating the tables and
// running pending migrations. Opening an up-to-date journal changes nothing.
//
// The connection runs in WAL mode with foreign keys on and a 5s busy
// timeout, so the history command can read while a viewer writes.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal %s: %w", path, err)
	}

	// One writer: the viewer loop is the only producer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// dsn sets the connection pragmas through go-sqlite3's URI parameters so
// every pooled connection gets them.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	return "file:" + path + "?" + q.Encode()
}

// migrate applies each pending migration in its own transaction, bumping
// user_version with it.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginSession registers a newly loaded document and returns the session ID.
// Session IDs are UUIDv7 so they sort by creation time.
func (j *Journal) BeginSession(ctx context.Context, docID, fileName string, numPages int) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, doc_id, file_name, num_pages)
		VALUES (?, ?, ?, ?)
	`, id.String(), docID, fileName, numPages)
	if err != nil {
		return "", fmt.Errorf("begin session for %s: %w", docID, err)
	}

	return id.String(), nil
}

// pragma reads a connection setting.
func (j *Journal) pragma(name string) (string, error) {
	var value string
	if err := j.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}

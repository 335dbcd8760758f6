package testutil

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// QuietLogger discards everything. Tests that assert on behaviour rather
// than logs pass it to the viewer and the plugin host.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogCapture collects log records so tests can assert that a swallowed
// failure was reported.
type LogCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewCaptureLogger returns a logger at debug level that writes into the
// returned capture.
func NewCaptureLogger() (*slog.Logger, *LogCapture) {
	c := &LogCapture{}
	return slog.New(c), c
}

// Enabled implements slog.Handler.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r.Clone())
	return nil
}

// WithAttrs implements slog.Handler. Attributes are not tracked.
func (c *LogCapture) WithAttrs([]slog.Attr) slog.Handler { return c }

// WithGroup implements slog.Handler. Groups are not tracked.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Messages returns the messages logged at level or above, oldest first.
func (c *LogCapture) Messages(level slog.Level) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, r := range c.records {
		if r.Level >= level {
			out = append(out, r.Message)
		}
	}
	return out
}

// Contains reports whether a record at level or above has a message
// containing substr.
func (c *LogCapture) Contains(level slog.Level, substr string) bool {
	for _, msg := range c.Messages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// Attr returns the value of key on the first record whose message is msg.
func (c *LogCapture) Attr(msg, key string) (slog.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.Message != msg {
			continue
		}
		var (
			val   slog.Value
			found bool
		)
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val, found = a.Value, true
				return false
			}
			return true
		})
		return val, found
	}
	return slog.Value{}, false
}

// NewTestLogger routes log output through t.Log so it shows up only for
// failing or verbose tests.
func NewTestLogger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureLogger(t *testing.T) {
	logger, capture := NewCaptureLogger()

	logger.Debug("render started", "page", 3)
	logger.Warn("page render failed, retrying", "page", 3, "attempt", 1)
	logger.Error("page render failed, giving up", "page", 3)

	assert.Equal(t, []string{
		"page render failed, retrying",
		"page render failed, giving up",
	}, capture.Messages(slog.LevelWarn))
	assert.True(t, capture.Contains(slog.LevelError, "giving up"))
	assert.False(t, capture.Contains(slog.LevelError, "retrying"))

	v, ok := capture.Attr("page render failed, retrying", "attempt")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64())

	_, ok = capture.Attr("render started", "gen")
	assert.False(t, ok)
}

func TestQuietLogger(t *testing.T) {
	logger := QuietLogger()
	require.NotNil(t, logger)
	logger.Error("dropped")
}

func TestNewTestLogger(t *testing.T) {
	NewTestLogger(t).Info("visible with -v", "page", 1)
}

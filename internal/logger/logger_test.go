package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerBeforeInitIsSilent(t *testing.T) {
	require.NoError(t, Close())

	l := NewLogger("early")
	assert.NotPanics(t, func() {
		l.Info("nobody is listening")
		l.With("k", "v").Error("still nobody")
	})
}

func TestDevConsoleReceivesTaggedEntries(t *testing.T) {
	var console bytes.Buffer
	require.NoError(t, InitLogger(Options{Dev: true, Level: "debug", Console: &console}))
	t.Cleanup(func() { _ = Close() })

	NewLogger("views").With("request_id", "abc").Warn("input rejected")

	out := console.String()
	assert.Contains(t, out, "input rejected")
	assert.Contains(t, out, "views")
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "[yellow]")
}

func TestLevelFiltersEntries(t *testing.T) {
	var console bytes.Buffer
	require.NoError(t, InitLogger(Options{Dev: true, Level: "warn", Console: &console}))
	t.Cleanup(func() { _ = Close() })

	l := NewLogger("api client")
	l.Info("hidden")
	l.Error("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestInvalidLevel(t *testing.T) {
	err := InitLogger(Options{Dev: true, Level: "loud"})
	assert.Error(t, err)
}

func TestLogPathWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(Options{LogPath: dir}))

	NewLogger("health").Info("backend reachable")
	require.NoError(t, Close())

	matches, err := filepath.Glob(filepath.Join(dir, "accbuddy_log_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend reachable")
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInit_DisabledDiscards(t *testing.T) {
	c, err := Init(Options{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.False(t, L.Enabled(context.Background(), slog.LevelError))
}

func TestInit_TextWriter(t *testing.T) {
	var buf bytes.Buffer
	_, err := Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelDebug})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Init(Options{}) })

	Debug("heap extended", "incr", 4096)
	require.Contains(t, buf.String(), "heap extended")
	require.Contains(t, buf.String(), "incr=4096")
}

func TestInit_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	_, err := Init(Options{Enabled: true, JSON: true, Writer: &buf, Level: slog.LevelWarn})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Init(Options{}) })

	Info("dropped")
	Warn("kept", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	require.Equal(t, "kept", rec["msg"])
	require.EqualValues(t, 1, rec["n"])
}

func TestInit_LogDirAndRetention(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "mmctl-2000-01-01.log")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(stale, nil, 0o644))
	require.NoError(t, os.WriteFile(other, nil, 0o644))

	c, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	Error("boom")
	require.NoError(t, c.Close())
	t.Cleanup(func() { _, _ = Init(Options{}) })

	require.NoFileExists(t, stale)
	require.FileExists(t, other)
	today := filepath.Join(dir, "mmctl-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	require.Contains(t, string(data), "boom")
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/config"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// decodeJSON unmarshals command output into v.
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}

// resetFlags restores every global flag and the loaded config.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		verbose, quiet, jsonOut, configPath = false, false, false, ""
		cfg = config.Default()

		replayCheckEvery = -1
		replayBacking, replayHeapFile, replayMaxHeap = "", "", ""
		replaySync, replayNoCheck = false, false

		d := trace.DefaultGenConfig()
		genSeed = 1
		genIDs, genMaxSize, genLargeSize = d.IDs, d.MaxSize, d.LargeSize
		genLargePct, genReallocPct, genFreePct = d.LargePct, d.ReallocPct, d.FreePct

		inspectBlocks, inspectList = false, false
	}
	reset()
	t.Cleanup(reset)
}

// writeTrace generates a small trace into the test's temp dir.
func writeTrace(t *testing.T, name string, seed int64, ids int) string {
	t.Helper()
	cfg := trace.DefaultGenConfig()
	cfg.IDs = ids
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, trace.Generate(seed, cfg).WriteFile(path))
	return path
}

//go:build linux || darwin || freebsd

package main

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/sbrk"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/config"
)

// writeHeap builds a file-backed heap holding blocks of the given payload
// sizes, frees every second one, and returns the image path.
func writeHeap(t *testing.T, sizes ...int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heap.img")
	f, err := sbrk.CreateFile(path)
	require.NoError(t, err)

	a, err := alloc.New(f)
	require.NoError(t, err)
	ptrs := make([]alloc.Ptr, len(sizes))
	for i, n := range sizes {
		ptrs[i], err = a.Malloc(n)
		require.NoError(t, err)
	}
	for i := 0; i < len(ptrs); i += 2 {
		a.Free(ptrs[i])
	}
	require.NoError(t, f.Close())
	return path
}

func TestReplay_FileBackingThenCheck(t *testing.T) {
	resetFlags(t)
	heap := filepath.Join(t.TempDir(), "heap.img")
	replayBacking = "file"
	replayHeapFile = heap
	replaySync = true
	verbose = true
	tr := writeTrace(t, "a.rep", 5, 80)

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{tr})
	})
	require.NoError(t, err)
	require.Contains(t, output, "Flushed")
	require.Contains(t, output, heap)

	data, err := os.ReadFile(heap)
	require.NoError(t, err)
	require.NoError(t, verify.All(data))

	// every id is freed by the end of a generated trace
	r, err := verify.Stats(data)
	require.NoError(t, err)
	require.Zero(t, r.AllocBlocks)
	require.Equal(t, 1, r.FreeBlocks)

	verbose = false
	output, err = captureOutput(t, func() error { return runCheck([]string{heap}) })
	require.NoError(t, err)
	require.Contains(t, output, heap+": ok")
}

func TestReplay_FileBackingPerTraceFiles(t *testing.T) {
	resetFlags(t)
	heap := filepath.Join(t.TempDir(), "heap.img")
	replayBacking = "file"
	replayHeapFile = heap
	a := writeTrace(t, "a.rep", 1, 10)
	b := writeTrace(t, "b.rep", 2, 10)

	_, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{a, b})
	})
	require.NoError(t, err)
	require.FileExists(t, heap+".0")
	require.FileExists(t, heap+".1")
	require.NoFileExists(t, heap)
}

func TestOpenBacking_TracksOnlyWhenSyncing(t *testing.T) {
	resetFlags(t)
	rc := config.Default()
	rc.Backing = config.BackingFile

	rc.HeapFile = filepath.Join(t.TempDir(), "nosync.img")
	hb, err := openBacking(rc, rc.HeapFile)
	require.NoError(t, err)
	require.Nil(t, hb.tracker)
	require.NoError(t, hb.closer.Close())

	replaySync = true
	rc.HeapFile = filepath.Join(t.TempDir(), "sync.img")
	hb, err = openBacking(rc, rc.HeapFile)
	require.NoError(t, err)
	require.NotNil(t, hb.tracker)
	require.NoError(t, hb.closer.Close())
}

func TestCheck_ValidHeap(t *testing.T) {
	resetFlags(t)
	path := writeHeap(t, 24, 100, 8, 200, 40)

	output, err := captureOutput(t, func() error { return runCheck([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, output, "ok")
}

func TestCheck_CorruptHeap(t *testing.T) {
	resetFlags(t)
	path := writeHeap(t, 24, 100, 8, 200, 40)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// flip the allocated bit of the second block's header only
	const second = 24 + 32
	hdr := binary.LittleEndian.Uint32(data[second-4:])
	binary.LittleEndian.PutUint32(data[second-4:], hdr^1)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	output, err := captureOutput(t, func() error { return runCheck([]string{path}) })
	require.Error(t, err)
	require.Contains(t, output, "violation(s)")
}

func TestCheck_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeHeap(t, 24, 100)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-8], 0o600))

	output, err := captureOutput(t, func() error { return runCheck([]string{path}) })
	require.Error(t, err)

	var res checkResult
	decodeJSON(t, output, &res)
	require.False(t, res.Valid)
	require.NotEmpty(t, res.Violations)
	require.NotEmpty(t, res.Violations[0].Type)
}

func TestCheck_MissingFile(t *testing.T) {
	resetFlags(t)
	_, err := captureOutput(t, func() error {
		return runCheck([]string{filepath.Join(t.TempDir(), "nope")})
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspect(t *testing.T) {
	resetFlags(t)
	path := writeHeap(t, 24, 100, 8, 200, 40)

	output, err := captureOutput(t, func() error { return runInspect([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, output, "Blocks:        5 (2 allocated, 3 free)")
	require.Contains(t, output, "Free list:     3 entries")
	require.Contains(t, output, "Fragmentation:")
}

func TestInspect_JSONListings(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	inspectBlocks = true
	inspectList = true
	path := writeHeap(t, 24, 100, 8, 200, 40)

	output, err := captureOutput(t, func() error { return runInspect([]string{path}) })
	require.NoError(t, err)

	var res inspectResult
	decodeJSON(t, output, &res)
	require.Equal(t, 5, res.Blocks)
	require.Equal(t, 2, res.AllocBlocks)
	require.Len(t, res.BlockList, 5)
	require.Len(t, res.FreeList, 3)

	require.Equal(t, uint32(24), res.BlockList[0].Offset)
	require.Equal(t, uint32(32), res.BlockList[0].Size)
	require.False(t, res.BlockList[0].Allocated)
	require.Equal(t, uint32(112), res.BlockList[1].Size)
	require.True(t, res.BlockList[1].Allocated)

	var listed uint32
	for _, b := range res.FreeList {
		require.False(t, b.Allocated)
		listed += b.Size
	}
	require.EqualValues(t, res.FreeBytes, listed)
}

func TestInspect_Truncated(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "short.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 8), 0o600))

	_, err := captureOutput(t, func() error { return runInspect([]string{path}) })
	require.Error(t, err)
}

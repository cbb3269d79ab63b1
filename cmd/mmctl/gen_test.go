package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/trace"
)

func TestGen(t *testing.T) {
	resetFlags(t)
	genIDs = 40
	genSeed = 9
	out := filepath.Join(t.TempDir(), "g.rep")

	output, err := captureOutput(t, func() error { return runGen([]string{out}) })
	require.NoError(t, err)
	require.Contains(t, output, "Wrote "+out)
	require.Contains(t, output, "over 40 ids (seed 9)")

	tr, err := trace.ParseFile(out)
	require.NoError(t, err)
	require.Equal(t, 40, tr.NumIDs)
	require.Equal(t, trace.Generate(9, trace.GenConfig{
		IDs: 40, MaxSize: genMaxSize, LargeSize: genLargeSize,
		LargePct: genLargePct, ReallocPct: genReallocPct, FreePct: genFreePct,
	}).Ops, tr.Ops)
}

func TestGen_Deterministic(t *testing.T) {
	resetFlags(t)
	genIDs = 25
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.rep"), filepath.Join(dir, "b.rep")

	_, err := captureOutput(t, func() error { return runGen([]string{a}) })
	require.NoError(t, err)
	_, err = captureOutput(t, func() error { return runGen([]string{b}) })
	require.NoError(t, err)

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	require.Equal(t, da, db)
}

func TestGen_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	genIDs = 10
	out := filepath.Join(t.TempDir(), "g.rep")

	output, err := captureOutput(t, func() error { return runGen([]string{out}) })
	require.NoError(t, err)

	var got map[string]any
	decodeJSON(t, output, &got)
	require.Equal(t, out, got["path"])
	require.EqualValues(t, 10, got["ids"])
}

func TestGen_RejectsBadFlags(t *testing.T) {
	resetFlags(t)
	genIDs = 0
	_, err := captureOutput(t, func() error {
		return runGen([]string{filepath.Join(t.TempDir(), "x.rep")})
	})
	require.Error(t, err)
}

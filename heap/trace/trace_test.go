package trace

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `20000
2
5
1
a 0 512
# resize in place is never attempted
r 0 640
a 1 128
f 0
f 1
`

func TestParse(t *testing.T) {
	tr, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 20000, tr.SuggestedHeap)
	require.Equal(t, 2, tr.NumIDs)
	require.Equal(t, 1, tr.Weight)
	require.Equal(t, []Op{
		{Kind: Alloc, ID: 0, Size: 512},
		{Kind: Realloc, ID: 0, Size: 640},
		{Kind: Alloc, ID: 1, Size: 128},
		{Kind: Free, ID: 0},
		{Kind: Free, ID: 1},
	}, tr.Ops)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"truncated header", "100\n2\n", "truncated header"},
		{"bad header", "100\nx\n1\n1\n", "bad header"},
		{"unknown op", "0\n1\n1\n1\nx 0 8\n", "unknown op"},
		{"id out of range", "0\n1\n1\n1\na 1 8\n", "out of range"},
		{"missing size", "0\n1\n1\n1\na 0\n", "takes 2 fields"},
		{"free with size", "0\n1\n1\n1\nf 0 8\n", "takes 1 fields"},
		{"negative size", "0\n1\n1\n1\na 0 -8\n", "bad size"},
		{"op count mismatch", "0\n1\n2\n1\na 0 8\n", "declares 2 ops"},
		{"more ids than ops", "0\n3\n2\n1\na 0 8\nf 0\n", "3 ids for 2 ops"},
		{"huge id count", "0\n4611686018427387904\n0\n1\n", "ids for 0 ops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrBadTrace)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWrite_ParseBack(t *testing.T) {
	tr, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.Write(&buf))
	require.Equal(t, "20000\n2\n5\n1\na 0 512\nr 0 640\na 1 128\nf 0\nf 1\n", buf.String())
}

func TestWriteFile_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.rep")
	tr := Generate(3, DefaultGenConfig())
	require.NoError(t, tr.WriteFile(path))

	back, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, path, back.Name)
	require.Equal(t, tr.Ops, back.Ops)
	require.Equal(t, tr.SuggestedHeap, back.SuggestedHeap)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.rep"))
	require.Error(t, err)
}

func TestGenerate_Valid(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.IDs = 300
	tr := Generate(11, cfg)

	live := make(map[int]bool)
	allocated := make(map[int]bool)
	for i, op := range tr.Ops {
		switch op.Kind {
		case Alloc:
			require.False(t, allocated[op.ID], "op %d: id %d allocated twice", i, op.ID)
			allocated[op.ID] = true
			live[op.ID] = true
			require.Positive(t, op.Size)
		case Realloc:
			require.True(t, live[op.ID], "op %d: realloc of dead id", i)
		case Free:
			require.True(t, live[op.ID], "op %d: free of dead id", i)
			delete(live, op.ID)
		}
		require.Less(t, op.Size, cfg.LargeSize+1)
	}
	require.Empty(t, live, "every id is freed")
	require.Len(t, allocated, cfg.IDs)
	require.Positive(t, tr.SuggestedHeap)
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	require.Equal(t, Generate(99, cfg), Generate(99, cfg))
	require.NotEqual(t, Generate(99, cfg).Ops, Generate(100, cfg).Ops)
}

func TestGenerate_ClampsRealloc(t *testing.T) {
	tr := Generate(1, GenConfig{IDs: 5, MaxSize: 8, ReallocPct: 150})
	require.NotEmpty(t, tr.Ops, "terminates even when resizes dominate")
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "alloc", Alloc.String())
	require.Equal(t, "realloc", Realloc.String())
	require.Equal(t, "free", Free.String())
	require.Equal(t, "Kind('z')", Kind('z').String())
}

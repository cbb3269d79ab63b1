package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.img")
	want := []byte{0, 0, 0, 0, 0x11, 0, 0, 0, 0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, os.WriteFile(path, want, 0o600))

	im, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, want, im.Data)

	require.NoError(t, im.Close())
	require.Nil(t, im.Data)
	require.NoError(t, im.Close())
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.img")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	im, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, im.Data)
	require.NoError(t, im.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckSize(t *testing.T) {
	require.NoError(t, checkSize("x", 4120))
	require.ErrorIs(t, checkSize("x", 1<<33), ErrTooLarge)
}

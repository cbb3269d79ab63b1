//go:build linux

package sbrk

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestFile_RefusedTruncateKeepsMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.bin")
	hf, err := CreateFile(path)
	require.NoError(t, err)
	defer hf.Close()

	_, err = hf.Extend(4120)
	require.NoError(t, err)
	hf.Bytes()[100] = 0x5A
	view := hf.Bytes()

	var orig unix.Rlimit
	require.NoError(t, unix.Getrlimit(unix.RLIMIT_FSIZE, &orig))
	if orig.Cur != unix.RLIM_INFINITY && orig.Cur < 4120 {
		t.Skipf("file size already limited to %d bytes", orig.Cur)
	}
	signal.Ignore(syscall.SIGXFSZ)
	require.NoError(t, unix.Setrlimit(unix.RLIMIT_FSIZE, &unix.Rlimit{Cur: 4120, Max: orig.Max}))
	defer func() {
		_ = unix.Setrlimit(unix.RLIMIT_FSIZE, &orig)
		signal.Reset(syscall.SIGXFSZ)
	}()

	_, err = hf.Extend(4096)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 1, hf.Extends())

	// The old slice is still the live mapping.
	require.Same(t, &view[0], &hf.Bytes()[0])
	require.Len(t, hf.Bytes(), 4120)
	require.Equal(t, byte(0x5A), hf.Bytes()[100])
	view[200] = 0x6B
	require.Equal(t, byte(0x6B), hf.Bytes()[200])

	st, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, 4120, st.Size())
}

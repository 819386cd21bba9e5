package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapped.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen_ReadOnly(t *testing.T) {
	path := writeTempFile(t, []byte("hello mmap"))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	require.False(t, m.Writable())
	require.Equal(t, 10, m.Size())
	require.Equal(t, []byte("hello mmap"), m.Bytes())

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 6)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "mmap", string(buf))

	require.ErrorIs(t, m.Sync(), ErrReadOnly)
}

func TestOpenFile_WritableRoundTrip(t *testing.T) {
	path := writeTempFile(t, make([]byte, 16))

	m, err := OpenFile(path, true)
	require.NoError(t, err)

	copy(m.Bytes(), "persisted")
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "persisted", string(data[:9]))
}

func TestMapping_CloseIdempotent(t *testing.T) {
	path := writeTempFile(t, []byte("x"))

	m, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.Nil(t, m.Bytes())

	_, err = m.ReadAt(make([]byte, 1), 0)
	require.ErrorIs(t, err, ErrClosed)

	var nilMapping *Mapping
	require.NoError(t, nilMapping.Close())
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeTempFile(t, nil)

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, 0, m.Size())
	require.Nil(t, m.Bytes())
}

func TestMapping_Advise(t *testing.T) {
	path := writeTempFile(t, make([]byte, 4096))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Advise(AccessSequential))
	require.NoError(t, m.Advise(AccessRandom))
}

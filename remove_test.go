package smapgo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/smapgo/internal/fs"
	"github.com/hupe1980/smapgo/largefile"
)

func newTestHandle(t *testing.T, fsys fs.FileSystem) *Handle {
	t.Helper()
	return NewHandle(
		WithLogger(NoopLogger()),
		WithFileSystem(fsys),
	)
}

// populate creates an smap directory holding k bare partition files.
func populate(t *testing.T, dir string, k int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for index := 0; index < k; index++ {
		require.NoError(t, os.WriteFile(partitionPath(dir, index), []byte("partition"), 0o644))
	}
}

func TestRemove_DeletesExactlyTheLiveSet(t *testing.T) {
	h := newTestHandle(t, nil)

	// The live count is always below the static maximum the reaper walks.
	for _, k := range []int{0, 1, 5, 64} {
		dir := filepath.Join(t.TempDir(), "db")
		populate(t, dir, k)

		require.NoError(t, Remove(h, dir))

		_, err := os.Stat(dir)
		require.ErrorIs(t, err, os.ErrNotExist, "k=%d", k)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	h := newTestHandle(t, nil)

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, 3)

	require.NoError(t, Remove(h, dir))
	// Everything is gone; a second pass only hits "not found" conditions.
	require.NoError(t, Remove(h, dir))
}

func TestRemove_RemovesLargefiles(t *testing.T) {
	h := newTestHandle(t, nil)

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, 2)

	st := &largefile.Store{}
	for id := uint64(0); id < 3; id++ {
		require.NoError(t, st.Put(context.Background(), dir, id, []byte("overflow")))
	}

	require.NoError(t, Remove(h, dir))

	_, err := os.Stat(dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemove_ContinuesPastUnremovablePartition(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(PartitionBasename(3), fs.Fault{FailOnRemove: true})
	h := newTestHandle(t, ffs)

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, 8)

	err := Remove(h, dir)
	require.Error(t, err)

	var re *RemoveError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "remove", re.Op)
	require.Equal(t, partitionPath(dir, 3), re.Path)

	// All other partitions were still removed.
	for index := 0; index < 8; index++ {
		_, statErr := os.Stat(partitionPath(dir, index))
		if index == 3 {
			require.NoError(t, statErr, "the failing partition must remain")
		} else {
			require.ErrorIs(t, statErr, os.ErrNotExist, "partition %d", index)
		}
	}
}

func TestRemove_StrayFileSurfacesDirectoryError(t *testing.T) {
	h := newTestHandle(t, nil)

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, 4)
	stray := filepath.Join(dir, "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("not ours"), 0o644))

	err := Remove(h, dir)
	require.Error(t, err)

	var re *RemoveError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "rmdir", re.Op)
	require.Equal(t, dir, re.Path)

	// Partitions are gone; the stray file and the directory remain.
	for index := 0; index < 4; index++ {
		_, statErr := os.Stat(partitionPath(dir, index))
		require.ErrorIs(t, statErr, os.ErrNotExist)
	}
	_, statErr := os.Stat(stray)
	require.NoError(t, statErr)
}

func TestRemove_FirstErrorWins(t *testing.T) {
	// Partition #2 and the directory removal both fail; the partition error
	// was first, so it is the one surfaced.
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(PartitionBasename(2), fs.Fault{FailOnRemove: true, Err: errors.New("partition fault")})
	h := newTestHandle(t, ffs)

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, 4)

	err := Remove(h, dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "partition fault")

	var re *RemoveError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "remove", re.Op)
}

func TestRemove_RecordsMetrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	h := NewHandle(
		WithLogger(NoopLogger()),
		WithMetricsCollector(mc),
	)

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, 1)

	require.NoError(t, Remove(h, dir))
	require.Equal(t, int64(1), mc.RemoveCount.Load())
	require.Equal(t, int64(0), mc.RemoveErrors.Load())
}

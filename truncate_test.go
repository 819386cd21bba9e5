package smapgo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/smapgo/internal/fs"
)

// callRecorder collects the order of descriptor and filesystem calls so the
// close-before-remove contract can be asserted.
type callRecorder struct {
	events []string
}

func (r *callRecorder) record(event string) {
	r.events = append(r.events, event)
}

func (r *callRecorder) lastIndex(prefix string) int {
	last := -1
	for i, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			last = i
		}
	}
	return last
}

func (r *callRecorder) firstIndex(prefix string) int {
	for i, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			return i
		}
	}
	return -1
}

// fakeDescriptor implements descriptor and records its calls.
type fakeDescriptor struct {
	rec       *callRecorder
	index     int
	backup    bool
	backupErr error
	closeErr  error
}

func (d *fakeDescriptor) Backup() bool { return d.backup }

func (d *fakeDescriptor) SetBackup(enabled bool) error {
	d.rec.record("backup:" + PartitionBasename(d.index))
	if d.backupErr != nil {
		return d.backupErr
	}
	d.backup = enabled
	return nil
}

func (d *fakeDescriptor) Sync() error { return nil }

func (d *fakeDescriptor) Close() error {
	d.rec.record("close:" + PartitionBasename(d.index))
	return d.closeErr
}

// recordingFS delegates to the local filesystem and records Remove calls.
type recordingFS struct {
	fs.FileSystem
	rec *callRecorder
}

func (r *recordingFS) Remove(name string) error {
	err := r.FileSystem.Remove(name)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		r.rec.record("remove:" + filepath.Base(name))
	}
	return err
}

func newFakeSmap(t *testing.T, rec *callRecorder, n int) *Smap {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "db")
	populate(t, dir, n)

	h := newTestHandle(t, &recordingFS{FileSystem: fs.Default, rec: rec})

	s := &Smap{h: h, dir: dir, cfg: DefaultConfig()}
	for index := 0; index < n; index++ {
		s.parts = append(s.parts, partition{
			index: index,
			path:  partitionPath(dir, index),
			td:    &fakeDescriptor{rec: rec, index: index, backup: true},
		})
	}
	return s
}

func TestTruncate_NilReceiver(t *testing.T) {
	var s *Smap
	require.NoError(t, s.Truncate())
}

func TestTruncate_OrderContract(t *testing.T) {
	rec := &callRecorder{}
	s := newFakeSmap(t, rec, 4)

	require.NoError(t, s.Truncate())

	// disable-backup* -> close* -> filesystem deletes.
	lastBackup := rec.lastIndex("backup:")
	firstClose := rec.firstIndex("close:")
	lastClose := rec.lastIndex("close:")
	firstRemove := rec.firstIndex("remove:")

	require.GreaterOrEqual(t, lastBackup, 0)
	require.Greater(t, firstClose, lastBackup, "backup toggles must precede close")
	require.Greater(t, firstRemove, lastClose, "close must precede deletes")

	_, err := os.Stat(s.dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTruncate_SkipsCurrentPartition(t *testing.T) {
	rec := &callRecorder{}
	s := newFakeSmap(t, rec, 3)
	current := s.parts[2].td.(*fakeDescriptor)

	require.NoError(t, s.Truncate())

	require.Contains(t, rec.events, "backup:"+PartitionBasename(0))
	require.Contains(t, rec.events, "backup:"+PartitionBasename(1))
	require.NotContains(t, rec.events, "backup:"+PartitionBasename(2),
		"the current (last) slot must not have its backup toggled")
	require.True(t, current.backup, "current partition keeps its backup flag")
}

func TestTruncate_SkipsDetachedSlots(t *testing.T) {
	rec := &callRecorder{}
	s := newFakeSmap(t, rec, 3)
	s.parts[1].td = nil

	require.NoError(t, s.Truncate())
	require.NotContains(t, rec.events, "backup:"+PartitionBasename(1))
}

func TestTruncate_AccumulatesErrorsAndRunsAllSteps(t *testing.T) {
	rec := &callRecorder{}
	s := newFakeSmap(t, rec, 3)

	backupFault := errors.New("backup fault")
	closeFault := errors.New("close fault")
	s.parts[0].td.(*fakeDescriptor).backupErr = backupFault
	s.parts[1].td.(*fakeDescriptor).closeErr = closeFault

	err := s.Truncate()
	require.Error(t, err)

	// The backup failure happened first, so it wins over the close failure.
	var be *BackupError
	require.ErrorAs(t, err, &be)
	require.Equal(t, partitionPath(s.dir, 0), be.Path)
	require.ErrorIs(t, err, backupFault)

	// Later steps still ran: everything was closed and deleted.
	require.GreaterOrEqual(t, rec.firstIndex("close:"), 0)
	_, statErr := os.Stat(s.dir)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestTruncate_SinglePartitionTogglesNothing(t *testing.T) {
	rec := &callRecorder{}
	s := newFakeSmap(t, rec, 1)

	require.NoError(t, s.Truncate())
	require.Equal(t, -1, rec.firstIndex("backup:"))
}

func TestTruncate_LiveStructure(t *testing.T) {
	ctx := context.Background()
	h := newTestHandle(t, nil)
	dir := filepath.Join(t.TempDir(), "db")

	s, err := Create(ctx, h, dir, Config{Partitions: 3, TileSize: 4096})
	require.NoError(t, err)

	require.NoError(t, s.Truncate())

	_, statErr := os.Stat(dir)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	// The path is ready for recreation.
	s2, err := Create(ctx, h, dir, Config{Partitions: 2, TileSize: 4096})
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

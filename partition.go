package smapgo

import (
	"fmt"
	"os"
)

// PartitionsMax is the static maximum number of partition slots an smap
// directory may hold. The removal path always enumerates this full range
// rather than a live partition count, because it may be invoked on a
// directory nothing holds an open handle for.
const PartitionsMax = 1024

const (
	partitionPrefix = "smap-"
	partitionExt    = ".part"
)

// PartitionBasename returns the file name of the partition with the given
// index inside an smap directory, e.g. "smap-000042.part". Names are stable
// and distinct for all indices below PartitionsMax.
func PartitionBasename(index int) string {
	return fmt.Sprintf("%s%06d%s", partitionPrefix, index, partitionExt)
}

// appendPartitionPath appends the full path of partition index under dir to
// buf and returns the extended buffer. Exactly one separator is emitted
// between dir and the basename, whether or not dir already ends in one.
// The removal loop reuses a single buffer across all indices.
func appendPartitionPath(buf []byte, dir string, index int) []byte {
	buf = append(buf, dir...)
	if n := len(buf); n == 0 || !isPathSeparator(buf[n-1]) {
		buf = append(buf, os.PathSeparator)
	}
	return fmt.Appendf(buf, "%s%06d%s", partitionPrefix, index, partitionExt)
}

// partitionPath is the allocating convenience form of appendPartitionPath.
func partitionPath(dir string, index int) string {
	return string(appendPartitionPath(nil, dir, index))
}

func isPathSeparator(c byte) bool {
	return c == '/' || c == os.PathSeparator
}

// partition is one slot of an open smap. td is nil for slots that currently
// have no backing tiled descriptor.
type partition struct {
	index int
	path  string
	td    descriptor
}

// descriptor is the subset of the tiled-file contract the smap lifecycle
// depends on. *tiled.Tiled satisfies it.
type descriptor interface {
	Backup() bool
	SetBackup(enabled bool) error
	Sync() error
	Close() error
}

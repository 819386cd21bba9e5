package smapgo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Open when the directory holds no smap
	// (partition slot 0 is missing).
	ErrNotFound = errors.New("smap: structure not found")

	// ErrClosed is returned when an operation requires an open structure.
	ErrClosed = errors.New("smap: structure is closed")

	// ErrInvalidPartitionCount is returned when a configured partition count
	// is not in the range 1..PartitionsMax.
	ErrInvalidPartitionCount = errors.New("smap: invalid partition count")
)

// RemoveError reports a filesystem failure for a single path during removal.
// "Not found" conditions are never wrapped in a RemoveError; they count as
// success at the per-file level.
//
// The underlying filesystem error can be accessed via errors.Unwrap.
type RemoveError struct {
	Op    string // "remove" or "rmdir"
	Path  string
	cause error
}

func (e *RemoveError) Error() string {
	return fmt.Sprintf("smap: %s %q: %v", e.Op, e.Path, e.cause)
}

func (e *RemoveError) Unwrap() error { return e.cause }

// BackupError reports a failure to toggle the backup/versioning flag on a
// partition's tiled descriptor.
//
// The underlying error can be accessed via errors.Unwrap.
type BackupError struct {
	Path  string
	cause error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("smap: toggle backup on %q: %v", e.Path, e.cause)
}

func (e *BackupError) Unwrap() error { return e.cause }

// CloseError reports a failure to close a partition's tiled descriptor.
//
// The underlying error can be accessed via errors.Unwrap.
type CloseError struct {
	Path  string
	cause error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("smap: close %q: %v", e.Path, e.cause)
}

func (e *CloseError) Unwrap() error { return e.cause }

// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: Represents an open file with read/write/sync capabilities
//   - [FileSystem]: Abstracts filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Production code should use fs.Default (which is [LocalFS]). Tests inject
// [FaultyFS] to simulate failures, e.g. an unremovable partition file:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("smap-000003.part", fs.Fault{FailOnRemove: true})
//	// inject ffs into component under test
//
// # Design Notes
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem operations are fast and non-interruptible at the syscall
// level; adding context would add overhead without meaningful cancellation
// capability.
package fs

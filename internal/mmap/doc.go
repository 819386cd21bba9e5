// Package mmap provides a minimal, platform-independent memory-mapped file
// abstraction.
//
// [Mapping] wraps one mapped file. Mappings may be read-only ([Open]) or
// shared read-write ([OpenFile] with writable=true); writable mappings are
// flushed with [Mapping.Sync]. Close is idempotent, so teardown paths can
// unmap defensively without tracking state.
//
// Platform backends live in os_unix.go (golang.org/x/sys/unix) and
// os_windows.go (golang.org/x/sys/windows).
package mmap

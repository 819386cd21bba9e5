// Package smapgo implements a partitioned, memory-mapped, key-sorted map
// ("smap") store layout and its teardown path.
//
// An smap lives in a directory of its own. The directory holds a contiguous
// sequence of fixed-size partition files (smap-000000.part, smap-000001.part,
// ...), each backed by a memory-mapped tiled descriptor, plus optional
// overflow "largefile" blobs for values too large to store inline. The last
// live partition slot is the current partition.
//
// The teardown path is the heart of the package:
//
//   - [Remove] surgically deletes every file belonging to a structure and
//     the containing directory. It is idempotent: files that are already
//     gone count as removed, so repeated invocation converges to "nothing
//     left" without spurious failures.
//   - [Smap.Truncate] empties a live, open structure in place: it switches
//     backup/versioning off on every partition but the current one, closes
//     the structure, and then removes it on disk.
//
// Both operations are best-effort. A failing step never stops the remaining
// steps; every failure is logged with its path, and the first real error is
// the one returned to the caller.
//
// Removal runs synchronously on the calling goroutine and performs no
// internal locking or retries. Callers must not run it concurrently with
// other operations against the same directory.
package smapgo

package smapgo

import (
	"errors"
	"os"
	"time"

	"github.com/hupe1980/smapgo/largefile"
)

// Remove surgically deletes the smap rooted at dir: every partition file,
// every largefile, and finally the directory itself.
//
// Removal is best-effort and idempotent. Files that do not exist count as
// already removed, each real failure is logged and the next step still runs,
// and the first real error across all steps is returned. Callers must have
// closed any live mappings of the structure before calling Remove; it does
// not perform a close step itself.
func Remove(h *Handle, dir string) error {
	start := time.Now()
	err := h.removeStructure(dir)
	h.metrics.RecordRemove(time.Since(start), err)
	h.logger.LogRemove(dir, err)
	return err
}

func (h *Handle) removeStructure(dir string) error {
	firstErr := h.removePartitions(dir)

	if err := largefile.RemoveAll(dir, h.logger.Logger, h.fsys); err != nil {
		h.logger.Error("removing smap largefiles failed",
			"dir", dir,
			"error", err,
		)
		if firstErr == nil {
			firstErr = err
		}
	}

	// The directory is expected to hold nothing but partition and largefile
	// files at this point, so a failure here means it was not actually empty.
	if err := h.fsys.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Error("removing smap directory failed",
			"dir", dir,
			"error", err,
		)
		if firstErr == nil {
			firstErr = &RemoveError{Op: "rmdir", Path: dir, cause: err}
		}
	}

	return firstErr
}

// removePartitions deletes the backing file of every partition slot in
// 0..PartitionsMax. The static maximum is enumerated deliberately: the live
// partition count is not trusted because the directory may have no open
// handle. Missing files are success; any other failure is logged with its
// path and the loop continues with the next slot.
func (h *Handle) removePartitions(dir string) error {
	bufp := h.pathBufs.Get().(*[]byte)
	defer h.pathBufs.Put(bufp)

	var firstErr error

	for index := 0; index < PartitionsMax; index++ {
		*bufp = appendPartitionPath((*bufp)[:0], dir, index)
		path := string(*bufp)

		if err := h.fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Error("removing smap partition failed",
				"path", path,
				"error", err,
			)
			if firstErr == nil {
				firstErr = &RemoveError{Op: "remove", Path: path, cause: err}
			}
		}
	}

	return firstErr
}

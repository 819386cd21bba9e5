package smapgo

import "time"

// Truncate empties a live structure in place: backup/versioning is switched
// off on every partition except the current one, the structure is closed,
// and the on-disk directory is removed. Afterwards the path is ready to be
// recreated.
//
// Calling Truncate on a nil receiver is a no-op success. Like Remove, the
// operation is best-effort: every step runs even when an earlier one failed,
// all failures are logged, and the first error is returned.
func (s *Smap) Truncate() error {
	if s == nil {
		return nil
	}

	start := time.Now()
	err := s.truncate()
	s.h.metrics.RecordTruncate(time.Since(start), err)
	s.h.logger.LogTruncate(s.dir, err)
	return err
}

func (s *Smap) truncate() error {
	var firstErr error

	// The last live slot is the current partition; its backup flag stays
	// untouched during truncation.
	for i := 0; i+1 < len(s.parts); i++ {
		p := &s.parts[i]
		if p.td == nil {
			continue
		}
		if err := p.td.SetBackup(false); err != nil {
			s.h.logger.Error("disabling partition backup failed",
				"path", p.path,
				"error", err,
			)
			if firstErr == nil {
				firstErr = &BackupError{Path: p.path, cause: err}
			}
		}
	}

	if err := s.Close(); err != nil {
		s.h.logger.Error("closing smap failed",
			"dir", s.dir,
			"error", err,
		)
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := Remove(s.h, s.dir); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

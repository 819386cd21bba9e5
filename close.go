package smapgo

// Close releases every open tiled descriptor owned by the structure.
// It is idempotent and safe on a nil receiver.
func (s *Smap) Close() error {
	if s == nil {
		return nil
	}
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for i := range s.parts {
		p := &s.parts[i]
		if p.td == nil {
			continue
		}
		if err := p.td.Close(); err != nil && firstErr == nil {
			firstErr = &CloseError{Path: p.path, cause: err}
		}
		p.td = nil
	}

	return firstErr
}

package extract

// Source is the scoped in-memory reference for an uploaded document. It is
// created when a file is chosen and must be released exactly once: when a
// new source replaces it, or when the document session ends.
type Source struct {
	name     string
	data     []byte
	released bool
}

// NewSource wraps uploaded document bytes.
func NewSource(name string, data []byte) *Source {
	return &Source{name: name, data: data}
}

// Name returns the original file name.
func (s *Source) Name() string { return s.name }

// Bytes returns the document payload. Nil after release.
func (s *Source) Bytes() []byte {
	if s.released {
		return nil
	}
	return s.data
}

// Released reports whether the source has been released.
func (s *Source) Released() bool { return s.released }

// release drops the payload. Safe to call once; the slot guards against
// double release.
func (s *Source) release() {
	s.released = true
	s.data = nil
}

// SourceSlot owns at most one live Source and guarantees the release-once
// discipline: setting a new source releases the previous one, and Close
// releases whatever is still held.
type SourceSlot struct {
	current *Source
}

// Set installs a new source, releasing the one it replaces. A nil source
// just releases the current one.
func (sl *SourceSlot) Set(s *Source) {
	if sl.current != nil && !sl.current.released {
		sl.current.release()
	}
	sl.current = s
}

// Current returns the held source, or nil.
func (sl *SourceSlot) Current() *Source { return sl.current }

// Close releases the held source, once, at session end.
func (sl *SourceSlot) Close() {
	sl.Set(nil)
}

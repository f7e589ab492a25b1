package heap

import (
	cerrors "github.com/cockroachdb/errors"
)

// Memory is the heap-growth collaborator. Sbrk extends the arena by
// incr bytes and returns the offset of the start of the new region.
// Extensions must be contiguous and monotonic: each new region begins
// immediately after the previously returned one. On failure the arena
// is left untouched and the returned error wraps ErrOutOfMemory.
//
// Bytes returns the full arena. The returned slice is invalidated by
// the next successful Sbrk call.
type Memory interface {
	Sbrk(incr int) (int, error)
	Bytes() []byte
}

// SliceMemory is a Memory backed by a growable byte slice with a fixed
// upper bound, so heap exhaustion can be produced deterministically in
// tests. Fresh extensions are always zero-filled.
type SliceMemory struct {
	buf []byte
	max int
}

var _ Memory = &SliceMemory{}

// NewSliceMemory creates a SliceMemory that will refuse to grow past
// maxSize bytes.
func NewSliceMemory(maxSize int) *SliceMemory {
	return &SliceMemory{max: maxSize}
}

func (m *SliceMemory) Sbrk(incr int) (int, error) {
	if incr < 0 {
		return 0, cerrors.Errorf("arena cannot shrink: requested extension of %d bytes", incr)
	}

	oldBreak := len(m.buf)
	if oldBreak+incr > m.max {
		return 0, cerrors.Wrapf(ErrOutOfMemory, "arena of %d bytes cannot grow by %d, the limit is %d", oldBreak, incr, m.max)
	}

	m.buf = append(m.buf, make([]byte, incr)...)
	return oldBreak, nil
}

func (m *SliceMemory) Bytes() []byte {
	return m.buf
}

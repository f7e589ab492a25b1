package heap

import "github.com/pkg/errors"

// ErrOutOfMemory is the error returned when the Memory collaborator cannot extend the arena any further
var ErrOutOfMemory error = errors.New("out of memory")

// ErrSizeOverflow is the error returned from ZeroAllocate when the total size computation overflows
var ErrSizeOverflow error = errors.New("allocation size computation overflowed")

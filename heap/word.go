package heap

const (
	// WordSize is the size in bytes of a single header or footer word.
	WordSize = 8
	// DoubleWordSize is the alignment of every block size and payload.
	DoubleWordSize = 2 * WordSize
	// MinBlockSize is the smallest block the heap will carve: a header
	// word, room for the two free-list links, and a footer word.
	MinBlockSize = 4 * WordSize
	// DefaultChunkSize is the minimum extension requested from the
	// Memory collaborator when the free list cannot satisfy a request.
	DefaultChunkSize = 1 << 12
	// DefaultScanLimit is the number of fitting candidates the bounded
	// best-fit search will examine before settling.
	DefaultScanLimit = 50
)

const (
	allocMask     word = 0x1
	prevAllocMask word = 0x2
	sizeMask      word = ^word(0xF)
)

// word is a packed header or footer: the block size in the upper bits,
// the allocation flag in bit 0 and the predecessor-allocation flag in
// bit 1. The low four bits are available because sizes are always
// 16-byte aligned.
type word uint64

func pack(size int, prevAlloc, alloc bool) word {
	w := word(size)
	if prevAlloc {
		w |= prevAllocMask
	}
	if alloc {
		w |= allocMask
	}
	return w
}

func (w word) size() int {
	return int(w & sizeMask)
}

func (w word) alloc() bool {
	return w&allocMask != 0
}

func (w word) prevAlloc() bool {
	return w&prevAllocMask != 0
}

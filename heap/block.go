package heap

import (
	"encoding/binary"
	"fmt"
)

// NoRegion is the null payload reference. Offset 0 always falls inside
// the prologue sentinel and can never name a payload.
const NoRegion = 0

// ref is a block descriptor: the byte offset of the block's header word
// within the arena.
type ref int

const noBlock ref = 0

func (h *Heap) header(b ref) word {
	return word(binary.LittleEndian.Uint64(h.mem[b:]))
}

func (h *Heap) size(b ref) int {
	return h.header(b).size()
}

func (h *Heap) alloc(b ref) bool {
	return h.header(b).alloc()
}

func (h *Heap) prevAlloc(b ref) bool {
	return h.header(b).prevAlloc()
}

func (h *Heap) writeHeader(b ref, size int, prevAlloc, alloc bool) {
	binary.LittleEndian.PutUint64(h.mem[b:], uint64(pack(size, prevAlloc, alloc)))
}

// writeFooter places the footer in the last word of the block.
// Allocated blocks carry no footer.
func (h *Heap) writeFooter(b ref, size int, prevAlloc, alloc bool) {
	if alloc {
		panic(fmt.Sprintf("block at offset %d is allocated and carries no footer", b))
	}
	binary.LittleEndian.PutUint64(h.mem[int(b)+size-WordSize:], uint64(pack(size, prevAlloc, alloc)))
}

// payload returns the payload offset for b, one word past the header.
func (h *Heap) payload(b ref) int {
	return int(b) + WordSize
}

func blockOf(p int) ref {
	return ref(p - WordSize)
}

// next returns the physical successor, found by stepping over b's size.
func (h *Heap) next(b ref) ref {
	return b + ref(h.size(b))
}

// prev returns the physical predecessor by reading its footer, which
// sits one word below b's header. Only free predecessors have footers,
// so callers must check prevAlloc first.
func (h *Heap) prev(b ref) ref {
	if h.prevAlloc(b) {
		panic(fmt.Sprintf("block at offset %d has an allocated predecessor with no footer to read", b))
	}
	footer := word(binary.LittleEndian.Uint64(h.mem[int(b)-WordSize:]))
	return b - ref(footer.size())
}

// setNextPrevAlloc records b's allocation state in the physical
// successor's header, and in its footer when the successor is free.
func (h *Heap) setNextPrevAlloc(b ref, prevAlloc bool) {
	n := h.next(b)
	hd := h.header(n)
	h.writeHeader(n, hd.size(), prevAlloc, hd.alloc())
	if !hd.alloc() {
		h.writeFooter(n, hd.size(), prevAlloc, hd.alloc())
	}
}

// The words just past a free block's header hold its free-list links;
// the same bytes are user payload while the block is allocated. The
// accessors below guard that union on the block's own alloc flag.

func (h *Heap) freePrev(b ref) ref {
	if h.alloc(b) {
		panic(fmt.Sprintf("block at offset %d is allocated and carries no free-list links", b))
	}
	return ref(binary.LittleEndian.Uint64(h.mem[int(b)+WordSize:]))
}

func (h *Heap) freeNext(b ref) ref {
	if h.alloc(b) {
		panic(fmt.Sprintf("block at offset %d is allocated and carries no free-list links", b))
	}
	return ref(binary.LittleEndian.Uint64(h.mem[int(b)+2*WordSize:]))
}

func (h *Heap) setFreePrev(b, prev ref) {
	if h.alloc(b) {
		panic(fmt.Sprintf("block at offset %d is allocated and carries no free-list links", b))
	}
	binary.LittleEndian.PutUint64(h.mem[int(b)+WordSize:], uint64(prev))
}

func (h *Heap) setFreeNext(b, next ref) {
	if h.alloc(b) {
		panic(fmt.Sprintf("block at offset %d is allocated and carries no free-list links", b))
	}
	binary.LittleEndian.PutUint64(h.mem[int(b)+2*WordSize:], uint64(next))
}

package heap

import (
	"github.com/pkg/errors"
)

// Validate performs a read-only consistency pass over the whole heap
// and free list. It walks the physical blocks in address order, then
// walks the free list independently, and cross-checks the two. When the
// allocator is functioning correctly and callers honor the pointer
// contract, this method cannot return an error; it exists as a
// correctness oracle for tests and debug builds.
func (h *Heap) Validate() error {
	if h.mem == nil {
		return errors.New("the heap has not been initialized")
	}

	prologue := h.header(h.heapStart - WordSize)
	if prologue.size() != 0 || !prologue.alloc() {
		return errors.Errorf("the prologue footer at offset %d is not a zero-size allocated sentinel", int(h.heapStart)-WordSize)
	}

	freeBlocks := make(map[ref]struct{})
	freeCount := 0
	allocCount := 0
	prevWasAlloc := true

	b := h.heapStart
	for {
		hd := h.header(b)

		if hd.size() == 0 {
			// epilogue
			if !hd.alloc() {
				return errors.Errorf("the epilogue header at offset %d is not allocated", b)
			}
			if hd.prevAlloc() != prevWasAlloc {
				return errors.Errorf("the epilogue header at offset %d caches the wrong allocation state for its predecessor", b)
			}
			break
		}

		if hd.size() < MinBlockSize {
			return errors.Errorf("block at offset %d has size %d, smaller than the minimum block size %d", b, hd.size(), MinBlockSize)
		}
		if hd.size()%DoubleWordSize != 0 {
			return errors.Errorf("block at offset %d has size %d, which is not double-word aligned", b, hd.size())
		}
		if int(b)+hd.size() > len(h.mem) {
			return errors.Errorf("block at offset %d has size %d and overruns the end of the arena", b, hd.size())
		}

		if hd.prevAlloc() != prevWasAlloc {
			return errors.Errorf("block at offset %d caches the wrong allocation state for its predecessor", b)
		}

		if !hd.alloc() {
			if !prevWasAlloc {
				return errors.Errorf("the free block at offset %d has a free predecessor - the two were never coalesced", b)
			}

			footer := h.header(b + ref(hd.size()) - WordSize)
			if footer != hd {
				return errors.Errorf("the free block at offset %d has a footer that does not match its header", b)
			}

			freeBlocks[b] = struct{}{}
			freeCount++
		} else {
			allocCount++
		}

		prevWasAlloc = hd.alloc()
		b = b + ref(hd.size())
	}

	if allocCount != h.allocCount {
		return errors.Errorf("the heap records %d live allocations but the physical walk found %d", h.allocCount, allocCount)
	}

	// The free list must contain exactly the free blocks the physical
	// walk found, with mutually consistent links. Comparing forward
	// pointers alone proves nothing; the reverse reference is what
	// actually needs checking.
	listCount := 0
	prevNode := noBlock
	for node := h.freeHead; node != noBlock; node = h.freeNext(node) {
		listCount++
		if listCount > freeCount {
			return errors.Errorf("the free list holds more blocks than the %d free blocks in the heap - it may be cyclic", freeCount)
		}

		if h.alloc(node) {
			return errors.Errorf("block at offset %d is in the free list but is not free", node)
		}
		if _, inHeap := freeBlocks[node]; !inHeap {
			return errors.Errorf("the free list names offset %d, which is not a free block of the heap", node)
		}
		if prevNode == noBlock {
			if h.freePrev(node) != noBlock {
				return errors.Errorf("block at offset %d is the head of the free list but has a previous block", node)
			}
		} else if h.freePrev(node) != prevNode {
			return errors.Errorf("block at offset %d lists the block at offset %d as its next block, but the reverse reference is broken", prevNode, node)
		}

		prevNode = node
	}

	if listCount != freeCount {
		return errors.Errorf("the number of free blocks in the heap and the free list do not match! free list: %d, heap: %d", listCount, freeCount)
	}

	return nil
}

package heap

// flInsert pushes b at the head of the free list. The list is
// unordered; recency is the only ordering the fit search can rely on.
func (h *Heap) flInsert(b ref) {
	if b == noBlock {
		return
	}

	h.setFreePrev(b, noBlock)
	h.setFreeNext(b, h.freeHead)
	if h.freeHead != noBlock {
		h.setFreePrev(h.freeHead, b)
	}
	h.freeHead = b
}

// flRemove unlinks b from the free list in O(1) using its own links.
// It is a safe no-op when b is null or allocated, because callers
// remove speculatively during coalescing.
func (h *Heap) flRemove(b ref) {
	if b == noBlock || h.alloc(b) {
		return
	}

	prev := h.freePrev(b)
	next := h.freeNext(b)
	h.setFreePrev(b, noBlock)
	h.setFreeNext(b, noBlock)

	if prev == noBlock {
		h.freeHead = next
	} else {
		h.setFreeNext(prev, next)
	}
	if next != noBlock {
		h.setFreePrev(next, prev)
	}
}

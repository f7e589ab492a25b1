package heap

import (
	"encoding/binary"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/tagheap/tagheap"
)

// CreateOptions contains optional tuning parameters for a Heap. The
// zero value of every field selects its default.
type CreateOptions struct {
	// ChunkSize is the minimum number of bytes requested from the
	// Memory collaborator whenever the heap has to grow. Rounded up
	// to DoubleWordSize. Defaults to DefaultChunkSize.
	ChunkSize int
	// ScanLimit bounds the best-fit search: the free-list scan stops
	// after examining this many fitting candidates. Defaults to
	// DefaultScanLimit.
	ScanLimit int
}

// Heap is a single-threaded dynamic allocator over a growable byte
// arena. Blocks are encoded with boundary tags, free blocks are linked
// through an explicit LIFO free list threaded through their payload
// bytes, and adjacent free blocks are merged eagerly.
//
// A Heap instance owns its arena and free-list head exclusively; no
// operation is safe to call concurrently with another on the same
// instance.
type Heap struct {
	memory Memory
	// mem is the current arena snapshot, refreshed after every growth.
	mem []byte

	heapStart ref
	freeHead  ref

	chunkSize int
	scanLimit int

	allocCount int
	userData   *swiss.Map[int, any]
}

var _ tagheap.Validatable = &Heap{}

// New creates a Heap over the provided Memory. Init must be called
// before the first allocation.
func New(memory Memory, options CreateOptions) *Heap {
	chunkSize := options.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = tagheap.AlignUp(chunkSize, DoubleWordSize)

	scanLimit := options.ScanLimit
	if scanLimit == 0 {
		scanLimit = DefaultScanLimit
	}

	return &Heap{
		memory:    memory,
		chunkSize: chunkSize,
		scanLimit: scanLimit,
		userData:  swiss.NewMap[int, any](42),
	}
}

// Init establishes the prologue footer and epilogue header sentinels
// and performs the initial extension of one chunk. Both sentinels are
// zero-size allocated blocks, so boundary-crossing checks can treat the
// heap's edges like ordinary neighbors.
func (h *Heap) Init() error {
	base, err := h.memory.Sbrk(2 * WordSize)
	if err != nil {
		return err
	}
	h.mem = h.memory.Bytes()

	binary.LittleEndian.PutUint64(h.mem[base:], uint64(pack(0, true, true)))
	binary.LittleEndian.PutUint64(h.mem[base+WordSize:], uint64(pack(0, true, true)))
	h.heapStart = ref(base + WordSize)
	h.freeHead = noBlock
	h.allocCount = 0

	if _, err := h.extend(h.chunkSize); err != nil {
		return err
	}
	return nil
}

// extend grows the arena by at least size bytes, converts the new
// region into one free block in place of the old epilogue, writes a new
// epilogue past it, and coalesces with the last block in case it was
// free.
func (h *Heap) extend(size int) (ref, error) {
	size = tagheap.AlignUp(size, DoubleWordSize)
	base, err := h.memory.Sbrk(size)
	if err != nil {
		return noBlock, err
	}
	h.mem = h.memory.Bytes()

	// The new block's header lands on the old epilogue header, which
	// already caches the allocation state of the last real block.
	b := ref(base - WordSize)
	prevAlloc := h.prevAlloc(b)
	h.writeHeader(b, size, prevAlloc, false)
	h.writeFooter(b, size, prevAlloc, false)
	h.setFreePrev(b, noBlock)
	h.setFreeNext(b, noBlock)

	h.writeHeader(h.next(b), 0, false, true)

	return h.coalesce(b), nil
}

// coalesce merges the free block b with any free physical neighbors,
// inserts the merged block into the free list exactly once, and clears
// the successor's prevAlloc bit. The merged block keeps the prevAlloc
// bit of its lowest-address participant. Returns the merged block.
func (h *Heap) coalesce(b ref) ref {
	next := h.next(b)
	prevAlloc := h.prevAlloc(b)
	nextAlloc := h.alloc(next)
	size := h.size(b)

	switch {
	case prevAlloc && nextAlloc:
		// nothing adjacent to merge

	case prevAlloc && !nextAlloc:
		h.flRemove(next)
		size += h.size(next)
		h.writeHeader(b, size, true, false)
		h.writeFooter(b, size, true, false)

	case !prevAlloc && nextAlloc:
		prev := h.prev(b)
		h.flRemove(prev)
		size += h.size(prev)
		keepPrevAlloc := h.prevAlloc(prev)
		h.writeHeader(prev, size, keepPrevAlloc, false)
		h.writeFooter(prev, size, keepPrevAlloc, false)
		b = prev

	default:
		prev := h.prev(b)
		h.flRemove(next)
		h.flRemove(prev)
		size += h.size(prev) + h.size(next)
		keepPrevAlloc := h.prevAlloc(prev)
		h.writeHeader(prev, size, keepPrevAlloc, false)
		h.writeFooter(prev, size, keepPrevAlloc, false)
		b = prev
	}

	h.setNextPrevAlloc(b, false)
	h.flInsert(b)
	return b
}

// findFit runs the bounded best-fit search: scan the free list from the
// head, return an exact match immediately, otherwise track the smallest
// fitting block among the first scanLimit candidates. The limit bounds
// fitting candidates, not visited nodes, so blocks too small to serve
// the request never consume it.
func (h *Heap) findFit(adjustedSize int) ref {
	best := noBlock
	candidates := 0

	for b := h.freeHead; b != noBlock && candidates < h.scanLimit; b = h.freeNext(b) {
		size := h.size(b)
		if size == adjustedSize {
			return b
		}
		if size > adjustedSize {
			if best == noBlock || size < h.size(best) {
				best = b
			}
			candidates++
		}
	}

	return best
}

// place marks adjustedSize bytes of the free block b as allocated. The
// remainder is split off as a new free block when it can stand alone,
// and coalesced in case its successor is free.
func (h *Heap) place(b ref, adjustedSize int) {
	currentSize := h.size(b)
	h.flRemove(b)

	if currentSize-adjustedSize >= MinBlockSize {
		h.writeHeader(b, adjustedSize, h.prevAlloc(b), true)

		rest := h.next(b)
		h.writeHeader(rest, currentSize-adjustedSize, true, false)
		h.writeFooter(rest, currentSize-adjustedSize, true, false)
		h.setFreePrev(rest, noBlock)
		h.setFreeNext(rest, noBlock)
		h.coalesce(rest)
	} else {
		h.writeHeader(b, currentSize, h.prevAlloc(b), true)
		h.setNextPrevAlloc(b, true)
	}
}

// Allocate reserves size bytes and returns the payload offset into the
// arena. A non-positive size is a defined no-op returning NoRegion with
// no error. When the Memory collaborator cannot satisfy a required
// extension, NoRegion is returned with an error wrapping ErrOutOfMemory
// and the heap is left unchanged.
func (h *Heap) Allocate(size int) (int, error) {
	if h.mem == nil {
		if err := h.Init(); err != nil {
			return NoRegion, err
		}
	}
	tagheap.DebugValidate(h)

	if size <= 0 {
		return NoRegion, nil
	}

	// Allocated blocks carry no footer, so only the header word is
	// added before rounding.
	adjustedSize := tagheap.AlignUp(size+WordSize+tagheap.DebugMargin, DoubleWordSize)
	if adjustedSize < MinBlockSize {
		adjustedSize = MinBlockSize
	}

	b := h.findFit(adjustedSize)
	if b == noBlock {
		var err error
		b, err = h.extend(tagheap.Max(adjustedSize, h.chunkSize))
		if err != nil {
			return NoRegion, err
		}
	}

	h.place(b, adjustedSize)
	h.allocCount++

	if tagheap.DebugMargin > 0 {
		tagheap.WriteMagicValue(h.mem, int(b)+h.size(b)-tagheap.DebugMargin)
	}

	tagheap.DebugValidate(h)
	return h.payload(b), nil
}

// Release returns the allocation at payload offset p to the heap and
// merges it with any free neighbors. Release(NoRegion) is a safe no-op.
// Releasing an offset that was not returned by Allocate, Resize or
// ZeroAllocate, or releasing one twice, is a caller error the
// steady-state path does not detect; only Validate can surface the
// resulting damage.
func (h *Heap) Release(p int) {
	if p == NoRegion {
		return
	}
	tagheap.DebugValidate(h)

	b := blockOf(p)
	size := h.size(b)
	prevAlloc := h.prevAlloc(b)

	h.writeHeader(b, size, prevAlloc, false)
	h.writeFooter(b, size, prevAlloc, false)
	h.setFreePrev(b, noBlock)
	h.setFreeNext(b, noBlock)

	h.userData.Delete(p)
	h.allocCount--

	h.coalesce(b)
	tagheap.DebugValidate(h)
}

// Resize moves the allocation at p to a fresh region of at least size
// bytes, copying the smaller of the old and new payload sizes. Resize
// with size 0 releases p and returns NoRegion; Resize of NoRegion
// behaves as Allocate. Growth is never attempted in place, even when
// the physical successor is free. On allocation failure the original
// block is left untouched and nothing is copied or released.
func (h *Heap) Resize(p int, size int) (int, error) {
	if size == 0 {
		h.Release(p)
		return NoRegion, nil
	}
	if p == NoRegion {
		return h.Allocate(size)
	}

	newP, err := h.Allocate(size)
	if err != nil || newP == NoRegion {
		return NoRegion, err
	}

	copySize := h.PayloadSize(p)
	if size < copySize {
		copySize = size
	}
	copy(h.mem[newP:newP+copySize], h.mem[p:p+copySize])

	h.Release(p)
	return newP, nil
}

// ZeroAllocate reserves count*size bytes and zero-fills them. The size
// computation is overflow-checked; overflow returns NoRegion with an
// error wrapping ErrSizeOverflow and no heap growth occurs.
func (h *Heap) ZeroAllocate(count, size int) (int, error) {
	if count < 0 || size < 0 {
		return NoRegion, cerrors.Wrapf(ErrSizeOverflow, "%d elements of %d bytes", count, size)
	}

	total := count * size
	if count != 0 && total/count != size {
		return NoRegion, cerrors.Wrapf(ErrSizeOverflow, "%d elements of %d bytes", count, size)
	}

	p, err := h.Allocate(total)
	if err != nil || p == NoRegion {
		return NoRegion, err
	}

	region := h.mem[p : p+total]
	for i := range region {
		region[i] = 0
	}
	return p, nil
}

// Payload returns the usable bytes of the allocation at p. The slice is
// only valid until the next operation that grows the heap.
func (h *Heap) Payload(p int) []byte {
	b := blockOf(p)
	if !h.alloc(b) {
		panic("payload requested for a free block")
	}
	return h.mem[p : p+h.PayloadSize(p)]
}

// PayloadSize reports the usable byte count of the block at payload
// offset p: everything except the header for allocated blocks, and
// everything except header and footer for free ones.
func (h *Heap) PayloadSize(p int) int {
	b := blockOf(p)
	if h.alloc(b) {
		return h.size(b) - WordSize - tagheap.DebugMargin
	}
	return h.size(b) - DoubleWordSize
}

// AllocationCount returns the number of live allocations.
func (h *Heap) AllocationCount() int {
	return h.allocCount
}

// IsEmpty returns true when the heap has no live allocations.
func (h *Heap) IsEmpty() bool {
	return h.allocCount == 0
}

// SumFreeSize returns the total bytes held by free blocks.
func (h *Heap) SumFreeSize() int {
	total := 0
	for b := h.freeHead; b != noBlock; b = h.freeNext(b) {
		total += h.size(b)
	}
	return total
}

// FreeBlockCount returns the number of blocks in the free list.
func (h *Heap) FreeBlockCount() int {
	count := 0
	for b := h.freeHead; b != noBlock; b = h.freeNext(b) {
		count++
	}
	return count
}

// SetAllocationUserData attaches arbitrary consumer data to the live
// allocation at payload offset p.
func (h *Heap) SetAllocationUserData(p int, userData any) error {
	if p == NoRegion || !h.alloc(blockOf(p)) {
		return cerrors.Errorf("user data cannot be set for offset %d: no live allocation there", p)
	}
	h.userData.Put(p, userData)
	return nil
}

// AllocationUserData returns the consumer data attached to the live
// allocation at payload offset p, or nil when none was set.
func (h *Heap) AllocationUserData(p int) (any, error) {
	if p == NoRegion || !h.alloc(blockOf(p)) {
		return nil, cerrors.Errorf("user data cannot be retrieved for offset %d: no live allocation there", p)
	}
	userData, _ := h.userData.Get(p)
	return userData, nil
}

// VisitAllBlocks calls handleBlock for every block in address order,
// sentinels excluded.
func (h *Heap) VisitAllBlocks(handleBlock func(offset, size int, free bool) error) error {
	for b := h.heapStart; h.size(b) > 0; b = h.next(b) {
		err := handleBlock(int(b), h.size(b), !h.alloc(b))
		if err != nil {
			return err
		}
	}

	return nil
}

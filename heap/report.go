package heap

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/tagheap/tagheap"
	"golang.org/x/exp/slog"
)

// AddStatistics sums this heap's allocation statistics into the
// statistics currently present in the provided tagheap.Statistics
// object.
func (h *Heap) AddStatistics(stats *tagheap.Statistics) {
	freeSize := h.SumFreeSize()

	stats.AllocationCount += h.allocCount
	stats.FreeBlockCount += h.FreeBlockCount()
	stats.HeapBytes += len(h.mem)
	stats.AllocationBytes += len(h.mem) - freeSize
}

// AddDetailedStatistics walks every block and sums per-block statistics
// into the provided tagheap.DetailedStatistics object.
func (h *Heap) AddDetailedStatistics(stats *tagheap.DetailedStatistics) {
	stats.HeapBytes += len(h.mem)

	_ = h.VisitAllBlocks(func(offset, size int, free bool) error {
		if free {
			stats.AddFreeRange(size)
		} else {
			stats.AddAllocation(size)
		}
		return nil
	})
}

// HeapJsonData populates a json object with summary information about
// the heap and one entry per block.
func (h *Heap) HeapJsonData(json jwriter.ObjectState) {
	var stats tagheap.DetailedStatistics
	stats.Clear()
	h.AddDetailedStatistics(&stats)

	json.Name("TotalBytes").Int(stats.HeapBytes)
	json.Name("UnusedBytes").Int(h.SumFreeSize())
	json.Name("Allocations").Int(stats.AllocationCount)
	json.Name("FreeRanges").Int(stats.FreeBlockCount)

	blocksJson := json.Name("Blocks").Array()
	defer blocksJson.End()

	_ = h.VisitAllBlocks(func(offset, size int, free bool) error {
		obj := blocksJson.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		if free {
			obj.Name("Type").String("FREE")
		} else {
			obj.Name("Type").String("ALLOCATED")
		}
		return nil
	})
}

// BuildStatsString produces the HeapJsonData dump as a JSON string.
func (h *Heap) BuildStatsString() string {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	h.HeapJsonData(obj)
	obj.End()

	return string(writer.Bytes())
}

// DebugLogAllAllocations calls logFunc for every live allocation in
// address order, passing its payload offset, payload size, and any
// attached user data.
func (h *Heap) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int, userData any)) {
	_ = h.VisitAllBlocks(func(offset, size int, free bool) error {
		if !free {
			p := offset + WordSize
			userData, _ := h.userData.Get(p)
			logFunc(logger, p, h.PayloadSize(p), userData)
		}
		return nil
	})
}

// CheckCorruption verifies the debug margins written after every live
// allocation are still intact. Margins are only written when tagheap is
// built with the debug_tag_heap build tag; without it this method
// cannot fail.
func (h *Heap) CheckCorruption() error {
	if tagheap.DebugMargin == 0 {
		return nil
	}

	return h.VisitAllBlocks(func(offset, size int, free bool) error {
		if !free && !tagheap.ValidateMagicValue(h.mem, offset+size-tagheap.DebugMargin) {
			return errors.Errorf("memory corruption detected after the allocation at offset %d", offset+WordSize)
		}
		return nil
	})
}

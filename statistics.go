package tagheap

import "math"

type Statistics struct {
	AllocationCount int
	FreeBlockCount  int
	HeapBytes       int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.FreeBlockCount = 0
	s.HeapBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.AllocationCount += other.AllocationCount
	s.FreeBlockCount += other.FreeBlockCount
	s.HeapBytes += other.HeapBytes
	s.AllocationBytes += other.AllocationBytes
}

type DetailedStatistics struct {
	Statistics
	AllocationSizeMin int
	AllocationSizeMax int
	FreeSizeMin       int
	FreeSizeMax       int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeSizeMin = math.MaxInt
	s.FreeSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeBlockCount++

	if size < s.FreeSizeMin {
		s.FreeSizeMin = size
	}

	if size > s.FreeSizeMax {
		s.FreeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.FreeSizeMin < s.FreeSizeMin {
		s.FreeSizeMin = other.FreeSizeMin
	}

	if other.FreeSizeMax > s.FreeSizeMax {
		s.FreeSizeMax = other.FreeSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}

package tagheap_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap"
)

func TestDetailedStatisticsClear(t *testing.T) {
	var stats tagheap.DetailedStatistics
	stats.Clear()

	require.Equal(t, math.MaxInt, stats.AllocationSizeMin)
	require.Equal(t, 0, stats.AllocationSizeMax)
	require.Equal(t, math.MaxInt, stats.FreeSizeMin)
	require.Equal(t, 0, stats.FreeSizeMax)
}

func TestDetailedStatisticsAccumulate(t *testing.T) {
	var stats tagheap.DetailedStatistics
	stats.Clear()

	stats.AddAllocation(32)
	stats.AddAllocation(128)
	stats.AddFreeRange(4096)

	require.Equal(t, 2, stats.AllocationCount)
	require.Equal(t, 160, stats.AllocationBytes)
	require.Equal(t, 32, stats.AllocationSizeMin)
	require.Equal(t, 128, stats.AllocationSizeMax)
	require.Equal(t, 1, stats.FreeBlockCount)
	require.Equal(t, 4096, stats.FreeSizeMin)
	require.Equal(t, 4096, stats.FreeSizeMax)
}

func TestDetailedStatisticsMerge(t *testing.T) {
	var a, b tagheap.DetailedStatistics
	a.Clear()
	b.Clear()

	a.AddAllocation(64)
	a.AddFreeRange(256)
	b.AddAllocation(512)
	b.AddFreeRange(32)

	a.AddDetailedStatistics(&b)

	require.Equal(t, 2, a.AllocationCount)
	require.Equal(t, 576, a.AllocationBytes)
	require.Equal(t, 64, a.AllocationSizeMin)
	require.Equal(t, 512, a.AllocationSizeMax)
	require.Equal(t, 2, a.FreeBlockCount)
	require.Equal(t, 32, a.FreeSizeMin)
	require.Equal(t, 256, a.FreeSizeMax)
}

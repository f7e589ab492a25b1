package heap_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap/heap"
	"golang.org/x/exp/slog"
)

func TestBuildStatsString(t *testing.T) {
	h := heap.New(heap.NewSliceMemory(1<<16), heap.CreateOptions{})
	require.NoError(t, h.Init())

	_, err := h.Allocate(100)
	require.NoError(t, err)
	_, err = h.Allocate(200)
	require.NoError(t, err)

	statsString := h.BuildStatsString()
	require.True(t, json.Valid([]byte(statsString)))

	var parsed struct {
		TotalBytes  int
		UnusedBytes int
		Allocations int
		FreeRanges  int
		Blocks      []struct {
			Offset int
			Size   int
			Type   string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(statsString), &parsed))

	require.Equal(t, 2*heap.WordSize+heap.DefaultChunkSize, parsed.TotalBytes)
	require.Equal(t, h.SumFreeSize(), parsed.UnusedBytes)
	require.Equal(t, 2, parsed.Allocations)
	require.Equal(t, 1, parsed.FreeRanges)
	require.Len(t, parsed.Blocks, 3)
	require.Equal(t, "ALLOCATED", parsed.Blocks[0].Type)
	require.Equal(t, "FREE", parsed.Blocks[2].Type)
}

func TestDebugLogAllAllocations(t *testing.T) {
	h := heap.New(heap.NewSliceMemory(1<<16), heap.CreateOptions{})
	require.NoError(t, h.Init())

	p1, err := h.Allocate(100)
	require.NoError(t, err)
	p2, err := h.Allocate(30)
	require.NoError(t, err)
	require.NoError(t, h.SetAllocationUserData(p2, "second"))

	type logged struct {
		offset   int
		size     int
		userData any
	}
	var calls []logged

	h.DebugLogAllAllocations(slog.Default(), func(log *slog.Logger, offset, size int, userData any) {
		calls = append(calls, logged{offset, size, userData})
	})

	require.Equal(t, []logged{
		{p1, h.PayloadSize(p1), nil},
		{p2, h.PayloadSize(p2), "second"},
	}, calls)
}

func TestVisitAllBlocksStopsOnError(t *testing.T) {
	h := heap.New(heap.NewSliceMemory(1<<16), heap.CreateOptions{})
	require.NoError(t, h.Init())

	_, err := h.Allocate(100)
	require.NoError(t, err)

	errStop := errors.New("stop")
	visited := 0
	err = h.VisitAllBlocks(func(offset, size int, free bool) error {
		visited++
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	require.Equal(t, 1, visited)
}

func TestCheckCorruptionCleanHeap(t *testing.T) {
	h := heap.New(heap.NewSliceMemory(1<<16), heap.CreateOptions{})
	require.NoError(t, h.Init())

	_, err := h.Allocate(100)
	require.NoError(t, err)
	require.NoError(t, h.CheckCorruption())
}

package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordPackRoundTrip(t *testing.T) {
	cases := []struct {
		size      int
		prevAlloc bool
		alloc     bool
	}{
		{0, true, true},
		{MinBlockSize, false, false},
		{MinBlockSize, true, false},
		{MinBlockSize, false, true},
		{MinBlockSize, true, true},
		{DefaultChunkSize, true, false},
		{1 << 40, false, true},
	}

	for _, c := range cases {
		w := pack(c.size, c.prevAlloc, c.alloc)
		require.Equal(t, c.size, w.size())
		require.Equal(t, c.prevAlloc, w.prevAlloc())
		require.Equal(t, c.alloc, w.alloc())
	}
}

func TestWordFlagsDoNotDisturbSize(t *testing.T) {
	w := pack(1<<20, true, true)
	require.Equal(t, word(1<<20|0x3), w)

	w = pack(1<<20, false, false)
	require.Equal(t, word(1<<20), w)
}

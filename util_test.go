package tagheap_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, tagheap.AlignUp(0, 16))
	require.Equal(t, 16, tagheap.AlignUp(1, 16))
	require.Equal(t, 16, tagheap.AlignUp(16, 16))
	require.Equal(t, 32, tagheap.AlignUp(17, 16))
	require.Equal(t, 4096, tagheap.AlignUp(4081, 4096))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, 0, tagheap.AlignDown(15, 16))
	require.Equal(t, 16, tagheap.AlignDown(16, 16))
	require.Equal(t, 16, tagheap.AlignDown(31, 16))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, tagheap.CheckPow2(16, "alignment"))
	require.NoError(t, tagheap.CheckPow2(0, "alignment"))

	err := tagheap.CheckPow2(48, "alignment")
	require.ErrorIs(t, err, tagheap.PowerOfTwoError)
	require.ErrorContains(t, err, "alignment is 48")
}

func TestMax(t *testing.T) {
	require.Equal(t, 4096, tagheap.Max(4096, 32))
	require.Equal(t, 4096, tagheap.Max(32, 4096))
}

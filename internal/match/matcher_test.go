package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nums(vals ...int64) []*int64 {
	out := make([]*int64, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out
}

func TestBestExactWinsRegardlessOfOrder(t *testing.T) {
	idx, dist, found := Best(101, nums(100, 101), DefaultTolerance)
	require.True(t, found)
	require.Equal(t, 1, idx)
	require.Zero(t, dist)
}

func TestBestToleranceBoundaryInclusive(t *testing.T) {
	// best distance is exactly 5: accepted
	idx, dist, found := Best(200, nums(195, 210), 5)
	require.True(t, found)
	require.Equal(t, 0, idx)
	require.EqualValues(t, 5, dist)

	// best distance 6: rejected even though a nearest candidate exists
	_, _, found = Best(201, nums(195, 210), 5)
	require.False(t, found)
}

func TestBestTiesBrokenByListOrder(t *testing.T) {
	idx, dist, found := Best(100, nums(98, 102), 5)
	require.True(t, found)
	require.Equal(t, 0, idx)
	require.EqualValues(t, 2, dist)
}

func TestBestSkipsCandidatesWithoutNumbers(t *testing.T) {
	candidates := []*int64{nil, nil}
	v := int64(103)
	candidates = append(candidates, &v)

	idx, dist, found := Best(100, candidates, 5)
	require.True(t, found)
	require.Equal(t, 2, idx)
	require.EqualValues(t, 3, dist)

	_, _, found = Best(100, []*int64{nil, nil}, 5)
	require.False(t, found)
}

package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestRoundsFor(t *testing.T) {
	testCases := []struct {
		entries  int
		expected int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{6, 3},
		{8, 3},
		{9, 4},
		{128, 7},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, RoundsFor(tc.entries), "entries=%d", tc.entries)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 64, 128} {
		assert.True(t, IsPowerOfTwo(n), n)
	}
	for _, n := range []int{0, -4, 3, 6, 100} {
		assert.False(t, IsPowerOfTwo(n), n)
	}
}

func TestPairEntrants(t *testing.T) {
	t.Run("6 entries", func(t *testing.T) {
		entrants := ids(6)
		pairs, bye := PairEntrants(entrants)

		require.Len(t, pairs, 3)
		assert.Nil(t, bye)
		assert.Equal(t, [2]uuid.UUID{entrants[0], entrants[1]}, pairs[0])
		assert.Equal(t, [2]uuid.UUID{entrants[4], entrants[5]}, pairs[2])
	})

	t.Run("5 entries", func(t *testing.T) {
		entrants := ids(5)
		pairs, bye := PairEntrants(entrants)

		require.Len(t, pairs, 2)
		require.NotNil(t, bye)
		assert.Equal(t, entrants[4], *bye)
	})

	t.Run("single entrant is a bye", func(t *testing.T) {
		entrants := ids(1)
		pairs, bye := PairEntrants(entrants)

		assert.Empty(t, pairs)
		require.NotNil(t, bye)
		assert.Equal(t, entrants[0], *bye)
	})
}

func TestMatchLoser(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	m := Match{Entry1ID: &a, Entry2ID: &b}
	assert.Nil(t, m.LoserEntryID())
	assert.False(t, m.IsComplete())

	m.WinnerEntryID = &b
	require.NotNil(t, m.LoserEntryID())
	assert.Equal(t, a, *m.LoserEntryID())
}

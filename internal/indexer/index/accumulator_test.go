package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

func TestAccumulatorSumsPerDocument(t *testing.T) {
	acc := NewAccumulator(3 * 4)
	require.NoError(t, acc.AddAll(PostingList{{DocID: 9, Weight: 7}, {DocID: 5, Weight: 3}}))
	require.NoError(t, acc.AddAll(PostingList{{DocID: 5, Weight: 2}, {DocID: 1, Weight: 1}}))

	assert.Equal(t, []Candidate{
		{DocID: 9, Weight: 7},
		{DocID: 5, Weight: 5},
		{DocID: 1, Weight: 1},
	}, acc.Candidates())
	assert.Equal(t, 3, acc.Len())
	assert.Equal(t, uint64(12), acc.Cap())

	acc.Reset()
	assert.Empty(t, acc.Candidates())
}

func TestAccumulatorZeroCapacity(t *testing.T) {
	acc := NewAccumulator(0)
	assert.Empty(t, acc.Candidates())
	err := acc.Add(Posting{DocID: 1, Weight: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrCapacityExceeded))
}

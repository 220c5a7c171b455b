package ranker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
)

func TestRankOrdersByWeightThenDocID(t *testing.T) {
	in := []index.Candidate{
		{DocID: 5, Weight: 3},
		{DocID: 9, Weight: 7},
		{DocID: 2, Weight: 3},
		{DocID: 8, Weight: 3},
	}
	got := Rank(in, 10)
	assert.Equal(t, []index.Candidate{
		{DocID: 9, Weight: 7},
		{DocID: 8, Weight: 3},
		{DocID: 5, Weight: 3},
		{DocID: 2, Weight: 3},
	}, got)
	assert.Equal(t, uint64(5), in[0].DocID, "input left untouched")
}

func TestRankTruncates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := make([]index.Candidate, 500)
	for i := range in {
		in[i] = index.Candidate{DocID: uint64(i), Weight: uint64(rng.Intn(20))}
	}

	got := Rank(in, 0)
	require.Len(t, got, DefaultLimit)

	full := make([]index.Candidate, len(in))
	copy(full, in)
	Sort(full)
	assert.Equal(t, full[:DefaultLimit], got)

	for i := 1; i < len(got); i++ {
		assert.True(t, Better(got[i-1], got[i]))
	}
	assert.Len(t, Rank(in, 3), 3)
}

func TestRankEmpty(t *testing.T) {
	got := Rank(nil, 10)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func BenchmarkRank(b *testing.B) {
	in := make([]index.Candidate, 100000)
	for i := range in {
		in[i] = index.Candidate{DocID: uint64(i), Weight: uint64(i * 7919 % 1000)}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Rank(in, DefaultLimit)
	}
}

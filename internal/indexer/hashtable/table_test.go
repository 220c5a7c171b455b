package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

func TestTermSlotMatchesBuilder(t *testing.T) {
	tests := []struct {
		term string
		want uint64
	}{
		{"cat", 2720},
		{"dog", 34624},
		{"café", 264004},
		{"", 141305},
		{"日本", 112237},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, TermSlot(tt.term, 350000))
		})
	}
}

func TestTermBytesLatin1(t *testing.T) {
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9}, TermBytes("café"))
	assert.Equal(t, []byte("日本"), TermBytes("日本"))
	assert.Equal(t, uint64(0), Slot([]byte("x"), 0))
}

func TestQueryTableSumsCommutatively(t *testing.T) {
	inserts := [][2]uint64{{5, 3}, {9, 7}, {5, 4}, {2, 1}, {9, 1}}

	forward := NewQueryTable(30)
	for _, in := range inserts {
		require.NoError(t, forward.Insert(in[0], in[1]))
	}
	backward := NewQueryTable(30)
	for i := len(inserts) - 1; i >= 0; i-- {
		require.NoError(t, backward.Insert(inserts[i][0], inserts[i][1]))
	}

	for _, id := range []uint64{5, 9, 2} {
		a, ok := forward.Get(id)
		require.True(t, ok)
		b, ok := backward.Get(id)
		require.True(t, ok)
		assert.Equal(t, a, b, "doc %d", id)
	}
	w, _ := forward.Get(5)
	assert.Equal(t, uint64(7), w)
	assert.Equal(t, 3, forward.Len())
	assert.Equal(t, []uint64{5, 9, 2}, forward.Keys())
	assert.Equal(t, []uint64{9, 2, 5}, backward.Keys())
}

func TestCollidingKeysBothRetrievable(t *testing.T) {
	const capacity = 7
	bySlot := make(map[uint64]uint64)
	var a, b uint64
	for id := uint64(1); id < 100; id++ {
		s := Slot(docIDBytes(id), capacity)
		if prev, ok := bySlot[s]; ok {
			a, b = prev, id
			break
		}
		bySlot[s] = id
	}
	require.NotZero(t, b, "no collision found")

	tbl := NewQueryTable(capacity)
	require.NoError(t, tbl.Insert(a, 10))
	require.NoError(t, tbl.Insert(b, 20))

	va, ok := tbl.Get(a)
	require.True(t, ok)
	assert.Equal(t, uint64(10), va)
	vb, ok := tbl.Get(b)
	require.True(t, ok)
	assert.Equal(t, uint64(20), vb)
}

func TestCapacityExceeded(t *testing.T) {
	tbl := NewQueryTable(4)
	for id := uint64(1); id <= 4; id++ {
		require.NoError(t, tbl.Insert(id, 1))
	}
	err := tbl.Insert(5, 1)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCapacityExceeded))
	assert.False(t, tbl.Contains(5))
	assert.NoError(t, tbl.Insert(3, 1), "existing keys still merge when full")

	empty := NewFrequencyTable(0)
	assert.True(t, apperrors.Is(empty.Insert("a", 1), apperrors.ErrCapacityExceeded))
	_, ok := empty.Get("a")
	assert.False(t, ok)
}

func TestCapacityThreeNHoldsN(t *testing.T) {
	for _, n := range []uint64{1, 2, 5, 17, 100} {
		tbl := NewQueryTable(3 * n)
		for id := uint64(0); id < n; id++ {
			require.NoError(t, tbl.Insert(id*7919+1, id), "n=%d id=%d", n, id)
		}
		assert.Equal(t, int(n), tbl.Len())
	}
}

func TestFrequencyTableCounts(t *testing.T) {
	tbl := NewFrequencyTable(11)
	for _, term := range []string{"a", "b", "a", "a"} {
		require.NoError(t, tbl.Insert(term, 1))
	}
	n, _ := tbl.Get("a")
	assert.Equal(t, uint64(3), n)
	assert.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.Keys())

	tbl.Reset()
	assert.Equal(t, 0, tbl.Len())
	assert.False(t, tbl.Contains("a"))
	assert.Equal(t, uint64(11), tbl.Cap())
}

func TestPostingsTableAppends(t *testing.T) {
	tbl := NewPostingsTable(11)
	require.NoError(t, tbl.Insert("cat", &Occurrences{Docs: []uint64{5}, Count: 1}))
	require.NoError(t, tbl.Insert("cat", &Occurrences{Docs: []uint64{9}, Count: 1}))
	occ, ok := tbl.Get("cat")
	require.True(t, ok)
	assert.Equal(t, []uint64{5, 9}, occ.Docs)
	assert.Equal(t, uint64(2), occ.Count)
}

func BenchmarkQueryTableInsert(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tbl := NewQueryTable(3000)
		for id := uint64(0); id < 1000; id++ {
			_ = tbl.Insert(id, 1)
		}
	}
}

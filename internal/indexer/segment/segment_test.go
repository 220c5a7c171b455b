package segment

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/hashtable"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

var backends = []string{config.BackendFile, config.BackendMmap}

func testIndexConfig(t *testing.T, dictSize uint64) config.IndexConfig {
	t.Helper()
	cfg := config.Default().Index
	cfg.Dir = t.TempDir()
	cfg.DictSize = dictSize
	return cfg
}

// termsAtSlot returns n distinct terms whose home slot is slot.
func termsAtSlot(t *testing.T, slot, size uint64, n int) []string {
	t.Helper()
	var out []string
	for i := 0; len(out) < n && i < 100000; i++ {
		term := fmt.Sprintf("t%d", i)
		if hashtable.TermSlot(term, size) == slot {
			out = append(out, term)
		}
	}
	require.Len(t, out, n)
	return out
}

func openDictionary(t *testing.T, cfg config.IndexConfig, backend string) *Dictionary {
	t.Helper()
	store, err := Open(cfg.DictPath(), cfg.DictRecordLength, backend)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewDictionary(store, cfg.DictSize)
}

func TestWriteAndReadBack(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			cfg := testIndexConfig(t, 11)
			entries := []index.TermEntry{
				{Term: "cat", Postings: index.PostingList{{DocID: 1, Weight: 4}, {DocID: 0, Weight: 2}}},
				{Term: "dog", Postings: index.PostingList{{DocID: 1, Weight: 1}}},
			}
			require.NoError(t, NewWriter(cfg).Write(entries, []string{"a.html", "b.html"}))

			dict := openDictionary(t, cfg, backend)
			rec, found, err := dict.Lookup("dog")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, DictRecord{Term: "dog", DocFreq: 1, PostingsStart: 2}, rec)

			_, found, err = dict.Lookup("bird")
			require.NoError(t, err)
			assert.False(t, found)

			postStore, err := Open(cfg.PostPath(), cfg.PostRecordLength, backend)
			require.NoError(t, err)
			defer postStore.Close()
			assert.Equal(t, uint64(3), postStore.Len())
			postings := NewPostings(postStore)
			require.NoError(t, postings.CheckRun(0, 2))
			for i, want := range entries[0].Postings {
				got, err := postings.At(uint64(i))
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			mapStore, err := Open(cfg.MapPath(), cfg.MapRecordLength, backend)
			require.NoError(t, err)
			defer mapStore.Close()
			name, err := NewDocumentMap(mapStore).Name(1)
			require.NoError(t, err)
			assert.Equal(t, "b.html", name.FileName)
			assert.Empty(t, name.Extra)
		})
	}
}

func TestProbeWrapsAround(t *testing.T) {
	const size = 5
	terms := termsAtSlot(t, size-1, size, 3)
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			cfg := testIndexConfig(t, size)
			dict := []DictRecord{
				{Term: terms[0], DocFreq: 1, PostingsStart: 0},
				{Term: terms[1], DocFreq: 2, PostingsStart: 1},
			}
			records, err := LayoutDictionary(dict, size)
			require.NoError(t, err)
			assert.Equal(t, terms[1], records[0][0], "second term wraps to slot 0")
			require.NoError(t, WriteRecords(cfg.DictPath(), cfg.DictRecordLength, records))

			d := openDictionary(t, cfg, backend)
			rec, found, steps, err := d.Probe(terms[1])
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, 2, steps)
			assert.Equal(t, uint64(2), rec.DocFreq)

			_, found, steps, err = d.Probe(terms[2])
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, 3, steps, "stops at the first empty slot")
		})
	}
}

func TestProbeWithoutEmptySlotIsCorrupt(t *testing.T) {
	cfg := testIndexConfig(t, 3)
	records := [][]string{{"x", "1", "0"}, {"y", "1", "0"}, {"z", "1", "0"}}
	require.NoError(t, WriteRecords(cfg.DictPath(), cfg.DictRecordLength, records))

	d := openDictionary(t, cfg, config.BackendFile)
	_, found, steps, err := d.Probe("absent")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCorruptIndex))
	assert.False(t, found)
	assert.Equal(t, 3, steps)
}

func TestCorruptRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post")
	require.NoError(t, WriteRecords(path, 9, [][]string{{"1", "2"}, {"x", "2"}, {"7"}}))

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			store, err := Open(path, 9, backend)
			require.NoError(t, err)
			defer store.Close()
			p := NewPostings(store)

			got, err := p.At(0)
			require.NoError(t, err)
			assert.Equal(t, index.Posting{DocID: 1, Weight: 2}, got)

			tests := []struct {
				name string
				call func() error
			}{
				{"bad integer", func() error { _, err := p.At(1); return err }},
				{"short record", func() error { _, err := p.At(2); return err }},
				{"out of range", func() error { _, err := p.At(3); return err }},
				{"run past end", func() error { return p.CheckRun(2, 5) }},
				{"run longer than file", func() error { return p.CheckRun(0, 9999999999999) }},
				{"run start overflows", func() error { return p.CheckRun(math.MaxUint64, 2) }},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					err := tt.call()
					require.Error(t, err)
					assert.True(t, apperrors.Is(err, apperrors.ErrCorruptIndex), err.Error())
				})
			}

			assert.NoError(t, p.CheckRun(1, 0))
			assert.NoError(t, p.CheckRun(0, 3))
			assert.NoError(t, p.CheckRun(3, 0))
		})
	}
}

func TestOpenMissingFileIsUnavailable(t *testing.T) {
	for _, backend := range backends {
		_, err := Open(filepath.Join(t.TempDir(), "absent"), 9, backend)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable))
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestLenIgnoresTrailingPartialRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map")
	require.NoError(t, os.WriteFile(path, []byte("a.html     \nb.h"), 0644))
	for _, backend := range backends {
		store, err := Open(path, 12, backend)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), store.Len())
		assert.Equal(t, 12, store.RecordLength())
		assert.Equal(t, path, store.Path())
		require.NoError(t, store.Close())
	}
}

func TestEmptyFileMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	store, err := Open(path, 9, config.BackendMmap)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, uint64(0), store.Len())
	_, err = store.Record(0)
	assert.True(t, apperrors.Is(err, apperrors.ErrCorruptIndex))
}

func TestFormatRecord(t *testing.T) {
	rec, err := FormatRecord([]string{"5", "3"}, 9)
	require.NoError(t, err)
	assert.Equal(t, "5 3     \n", string(rec))

	_, err = FormatRecord([]string{"averyverylongterm"}, 9)
	assert.Error(t, err)
}

func TestLayoutDictionaryRejectsOverflow(t *testing.T) {
	_, err := LayoutDictionary([]DictRecord{{Term: "a"}, {Term: "b"}}, 2)
	assert.Error(t, err)
	_, err = LayoutDictionary([]DictRecord{{Term: "a"}, {Term: "a"}}, 5)
	assert.Error(t, err)
}

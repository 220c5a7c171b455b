package index

import (
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/hashtable"
)

// Accumulator sums posting weights per document for a single query. It is
// sized once, from the total number of postings the query will read, and
// never grows.
type Accumulator struct {
	table *hashtable.Table[uint64, uint64]
}

func NewAccumulator(capacity uint64) *Accumulator {
	return &Accumulator{table: hashtable.NewQueryTable(capacity)}
}

// Add folds one posting into its document's running total.
func (a *Accumulator) Add(p Posting) error {
	return a.table.Insert(p.DocID, p.Weight)
}

// AddAll folds a whole postings run.
func (a *Accumulator) AddAll(list PostingList) error {
	for _, p := range list {
		if err := a.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Candidates returns every document seen so far with its summed weight, in
// the order the documents were first added.
func (a *Accumulator) Candidates() []Candidate {
	keys := a.table.Keys()
	out := make([]Candidate, 0, len(keys))
	for _, id := range keys {
		w, _ := a.table.Get(id)
		out = append(out, Candidate{DocID: id, Weight: w})
	}
	return out
}

func (a *Accumulator) Len() int    { return a.table.Len() }
func (a *Accumulator) Cap() uint64 { return a.table.Cap() }

func (a *Accumulator) Reset() {
	a.table.Reset()
}

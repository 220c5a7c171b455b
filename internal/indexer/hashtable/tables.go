package hashtable

// NewFrequencyTable counts term occurrences: every insert adds one to the
// stored count, whatever value is passed.
func NewFrequencyTable(capacity uint64) *Table[string, uint64] {
	return newTable(capacity, TermBytes, func(old, _ uint64) uint64 { return old + 1 }, false)
}

// Occurrences records the documents a term was seen in, in insertion order.
type Occurrences struct {
	Docs  []uint64
	Count uint64
}

// NewPostingsTable collects per-term document occurrences the way the
// builder does; re-inserting a term appends the new documents.
func NewPostingsTable(capacity uint64) *Table[string, *Occurrences] {
	return newTable(capacity, TermBytes, func(old, n *Occurrences) *Occurrences {
		old.Docs = append(old.Docs, n.Docs...)
		old.Count += n.Count
		return old
	}, false)
}

// NewQueryTable sums weights per document id and remembers the order in
// which documents first appeared.
func NewQueryTable(capacity uint64) *Table[uint64, uint64] {
	return newTable(capacity, docIDBytes, func(old, n uint64) uint64 { return old + n }, true)
}

package segment

import (
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/hashtable"
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

// Dictionary resolves terms against the on-disk term dictionary.
type Dictionary struct {
	store Store
	size  uint64
}

// NewDictionary wraps store. size is the slot count the builder hashed
// terms into; it is usually, but not necessarily, the record count.
func NewDictionary(store Store, size uint64) *Dictionary {
	return &Dictionary{store: store, size: size}
}

// Lookup finds term in the dictionary.
func (d *Dictionary) Lookup(term string) (DictRecord, bool, error) {
	rec, found, _, err := d.Probe(term)
	return rec, found, err
}

// Probe scans forward one record at a time from the term's home slot,
// wrapping from the last record to the first, until it meets the term or an
// empty slot. It also returns the number of records read. A scan that reads
// more than Len() records without stopping means the file is corrupt.
func (d *Dictionary) Probe(term string) (DictRecord, bool, int, error) {
	records := d.store.Len()
	n := hashtable.TermSlot(term, d.size)
	for steps := 1; uint64(steps) <= records; steps++ {
		fields, err := d.store.Record(n)
		if err != nil {
			return DictRecord{}, false, steps, err
		}
		if err := requireFields(d.store, n, fields, 3); err != nil {
			return DictRecord{}, false, steps, err
		}
		switch fields[0] {
		case EmptyTerm:
			return DictRecord{}, false, steps, nil
		case term:
			rec, err := d.parse(n, fields)
			return rec, err == nil, steps, err
		}
		n++
		if n == records {
			n = 0
		}
	}
	if records == 0 {
		return DictRecord{}, false, 0, apperrors.Corruptf("%s: dictionary is empty", d.store.Path())
	}
	return DictRecord{}, false, int(records), apperrors.Corruptf("%s: no entry or empty slot for %q after %d records", d.store.Path(), term, records)
}

func (d *Dictionary) parse(n uint64, fields []string) (DictRecord, error) {
	docFreq, err := parseUint(d.store, n, "document frequency", fields[1])
	if err != nil {
		return DictRecord{}, err
	}
	start, err := parseUint(d.store, n, "postings start", fields[2])
	if err != nil {
		return DictRecord{}, err
	}
	return DictRecord{Term: fields[0], DocFreq: docFreq, PostingsStart: start}, nil
}

package segment

import (
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

// Postings reads posting records.
type Postings struct {
	store Store
}

func NewPostings(store Store) *Postings {
	return &Postings{store: store}
}

// At returns posting record n.
func (p *Postings) At(n uint64) (index.Posting, error) {
	fields, err := p.store.Record(n)
	if err != nil {
		return index.Posting{}, err
	}
	if err := requireFields(p.store, n, fields, 2); err != nil {
		return index.Posting{}, err
	}
	docID, err := parseUint(p.store, n, "document id", fields[0])
	if err != nil {
		return index.Posting{}, err
	}
	weight, err := parseUint(p.store, n, "weight", fields[1])
	if err != nil {
		return index.Posting{}, err
	}
	return index.Posting{DocID: docID, Weight: weight}, nil
}

// CheckRun reports ErrCorruptIndex unless the docFreq records starting at
// start all lie inside the postings file.
func (p *Postings) CheckRun(start, docFreq uint64) error {
	records := p.store.Len()
	if docFreq > records || start > records-docFreq {
		return apperrors.Corruptf("%s: postings run of %d records at %d exceeds %d records",
			p.store.Path(), docFreq, start, records)
	}
	return nil
}

package segment

import (
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

// EmptyTerm marks an unused dictionary slot.
const EmptyTerm = "NULL"

// DictRecord is one dictionary entry: the term, the number of documents it
// occurs in, and the first record of its postings run.
type DictRecord struct {
	Term          string
	DocFreq       uint64
	PostingsStart uint64
}

// MapRecord is one document map entry. The record number is the document id.
type MapRecord struct {
	FileName string
	Extra    []string
}

func parseUint(s Store, n uint64, field, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, apperrors.Corruptf("%s: record %d: bad %s %q", s.Path(), n, field, value)
	}
	return v, nil
}

func requireFields(s Store, n uint64, fields []string, want int) error {
	if len(fields) < want {
		return apperrors.Corruptf("%s: record %d has %d fields, want %d", s.Path(), n, len(fields), want)
	}
	return nil
}

// Package segment reads and writes the flat index files. Every file is an
// array of fixed-width text records: record N occupies bytes
// [N*RecordLength, (N+1)*RecordLength), holds whitespace-separated fields and
// ends with a newline.
package segment

import (
	"fmt"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

// Store gives random access to the records of one index file.
type Store interface {
	// Record returns the fields of record n.
	Record(n uint64) ([]string, error)
	// Len returns the number of whole records in the file.
	Len() uint64
	RecordLength() int
	Path() string
	Close() error
}

// Open opens path read-only with the given backend ("file" or "mmap").
// Failures to open are reported as ErrStoreUnavailable.
func Open(path string, recordLength int, backend string) (Store, error) {
	if recordLength < 1 {
		return nil, fmt.Errorf("opening %s: invalid record length %d", path, recordLength)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Unavailable(path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperrors.Unavailable(path, err)
	}
	records := uint64(info.Size()) / uint64(recordLength)

	switch backend {
	case config.BackendFile, "":
		return &fileStore{f: f, path: path, recordLength: recordLength, records: records}, nil
	case config.BackendMmap:
		s, err := mapFile(f, path, recordLength, records)
		if err != nil {
			f.Close()
			return nil, apperrors.Unavailable(path, err)
		}
		return s, nil
	default:
		f.Close()
		return nil, fmt.Errorf("opening %s: unknown backend %q", path, backend)
	}
}

func checkRange(s Store, n uint64) error {
	if n >= s.Len() {
		return apperrors.Corruptf("%s: record %d outside [0, %d)", s.Path(), n, s.Len())
	}
	return nil
}

func splitRecord(raw []byte) []string {
	return strings.Fields(string(raw))
}

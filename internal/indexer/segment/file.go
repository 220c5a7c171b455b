package segment

import (
	"fmt"
	"os"
)

// fileStore reads records with positional reads on an open file.
type fileStore struct {
	f            *os.File
	path         string
	recordLength int
	records      uint64
}

func (s *fileStore) Record(n uint64) ([]string, error) {
	if err := checkRange(s, n); err != nil {
		return nil, err
	}
	buf := make([]byte, s.recordLength)
	if _, err := s.f.ReadAt(buf, int64(n)*int64(s.recordLength)); err != nil {
		return nil, fmt.Errorf("reading record %d of %s: %w", n, s.path, err)
	}
	return splitRecord(buf), nil
}

func (s *fileStore) Len() uint64       { return s.records }
func (s *fileStore) RecordLength() int { return s.recordLength }
func (s *fileStore) Path() string      { return s.path }

func (s *fileStore) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

package segment

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// mmapStore serves records from a read-only mapping of the whole file.
type mmapStore struct {
	f            *os.File
	data         mmap.MMap
	path         string
	recordLength int
	records      uint64
}

func mapFile(f *os.File, path string, recordLength int, records uint64) (*mmapStore, error) {
	s := &mmapStore{f: f, path: path, recordLength: recordLength, records: records}
	// Empty files cannot be mapped.
	if records == 0 {
		return s, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	s.data = m
	return s, nil
}

func (s *mmapStore) Record(n uint64) ([]string, error) {
	if err := checkRange(s, n); err != nil {
		return nil, err
	}
	off := n * uint64(s.recordLength)
	return splitRecord(s.data[off : off+uint64(s.recordLength)]), nil
}

func (s *mmapStore) Len() uint64       { return s.records }
func (s *mmapStore) RecordLength() int { return s.recordLength }
func (s *mmapStore) Path() string      { return s.path }

// Close unmaps the file and closes it.
func (s *mmapStore) Close() error {
	if s.data != nil {
		if err := s.data.Unmap(); err != nil {
			return err
		}
		s.data = nil
	}
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		return err
	}
	return nil
}

package segment

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/hashtable"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
)

// Writer lays out the dictionary, postings and document map files in the
// format Open reads, using the same slot function and collision chains as
// the offline builder.
type Writer struct {
	cfg config.IndexConfig
}

// NewWriter creates a Writer for the files described by cfg.
func NewWriter(cfg config.IndexConfig) *Writer {
	return &Writer{cfg: cfg}
}

// Write replaces the three index files. docs[i] is the file name of
// document i. Each entry's postings are stored as one consecutive run in
// the order given.
func (w *Writer) Write(entries []index.TermEntry, docs []string) error {
	if err := os.MkdirAll(w.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	dict := make([]DictRecord, 0, len(entries))
	post := make([][]string, 0)
	for _, e := range entries {
		dict = append(dict, DictRecord{
			Term:          e.Term,
			DocFreq:       uint64(len(e.Postings)),
			PostingsStart: uint64(len(post)),
		})
		for _, p := range e.Postings {
			post = append(post, []string{
				strconv.FormatUint(p.DocID, 10),
				strconv.FormatUint(p.Weight, 10),
			})
		}
	}
	dictRecords, err := LayoutDictionary(dict, w.cfg.DictSize)
	if err != nil {
		return err
	}

	docRecords := make([][]string, len(docs))
	for i, name := range docs {
		docRecords[i] = []string{name}
	}

	if err := WriteRecords(w.cfg.DictPath(), w.cfg.DictRecordLength, dictRecords); err != nil {
		return err
	}
	if err := WriteRecords(w.cfg.PostPath(), w.cfg.PostRecordLength, post); err != nil {
		return err
	}
	return WriteRecords(w.cfg.MapPath(), w.cfg.MapRecordLength, docRecords)
}

// LayoutDictionary places every entry at its home slot, moving forward one
// slot at a time (wrapping at size) past occupied ones. Unused slots hold
// the EmptyTerm sentinel. At least one slot must stay empty so that lookups
// of absent terms terminate.
func LayoutDictionary(entries []DictRecord, size uint64) ([][]string, error) {
	if uint64(len(entries)) >= size {
		return nil, fmt.Errorf("dictionary of %d slots cannot hold %d terms", size, len(entries))
	}
	slots := make([]*DictRecord, size)
	for i := range entries {
		e := &entries[i]
		n := hashtable.TermSlot(e.Term, size)
		for slots[n] != nil {
			if slots[n].Term == e.Term {
				return nil, fmt.Errorf("duplicate dictionary term %q", e.Term)
			}
			n = (n + 1) % size
		}
		slots[n] = e
	}
	records := make([][]string, size)
	for i, e := range slots {
		if e == nil {
			records[i] = []string{EmptyTerm, "0", "0"}
			continue
		}
		records[i] = []string{
			e.Term,
			strconv.FormatUint(e.DocFreq, 10),
			strconv.FormatUint(e.PostingsStart, 10),
		}
	}
	return records, nil
}

// FormatRecord joins fields with single spaces and pads the result with
// spaces to recordLength-1 bytes followed by a newline.
func FormatRecord(fields []string, recordLength int) ([]byte, error) {
	line := strings.Join(fields, " ")
	if len(line) > recordLength-1 {
		return nil, fmt.Errorf("record %q needs %d bytes, record length is %d", line, len(line)+1, recordLength)
	}
	buf := make([]byte, recordLength)
	copy(buf, line)
	for i := len(line); i < recordLength-1; i++ {
		buf[i] = ' '
	}
	buf[recordLength-1] = '\n'
	return buf, nil
}

// WriteRecords atomically replaces path with the given records. It writes
// to a .tmp file first and renames on success.
func WriteRecords(path string, recordLength int, records [][]string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp record file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for i, fields := range records {
		rec, err := FormatRecord(fields, recordLength)
		if err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("formatting record %d of %s: %w", i, path, err)
		}
		if _, err := bw.Write(rec); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("writing record %d of %s: %w", i, path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing record file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming record file: %w", err)
	}
	return nil
}

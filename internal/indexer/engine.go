package indexer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
)

// Engine holds open handles to the dictionary, postings and document map
// stores of one index directory. An Engine serves a single query and must
// be closed when that query finishes.
type Engine struct {
	cfg      config.IndexConfig
	dict     *segment.Dictionary
	postings *segment.Postings
	docs     *segment.DocumentMap
	stores   []segment.Store
	logger   *slog.Logger
}

// Open opens the three stores named by cfg. If any of them cannot be opened
// the ones already opened are closed again and the error wraps
// ErrStoreUnavailable.
func Open(cfg config.IndexConfig) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		logger: slog.Default().With("component", "indexer"),
	}
	dictStore, err := e.open(cfg.DictPath(), cfg.DictRecordLength)
	if err != nil {
		return nil, err
	}
	postStore, err := e.open(cfg.PostPath(), cfg.PostRecordLength)
	if err != nil {
		e.Close()
		return nil, err
	}
	mapStore, err := e.open(cfg.MapPath(), cfg.MapRecordLength)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.dict = segment.NewDictionary(dictStore, cfg.DictSize)
	e.postings = segment.NewPostings(postStore)
	e.docs = segment.NewDocumentMap(mapStore)
	e.logger.Debug("index opened",
		"dir", cfg.Dir,
		"backend", cfg.Backend,
		"dict_records", dictStore.Len(),
		"post_records", postStore.Len(),
		"map_records", mapStore.Len(),
	)
	return e, nil
}

func (e *Engine) open(path string, recordLength int) (segment.Store, error) {
	s, err := segment.Open(path, recordLength, e.cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("opening index store: %w", err)
	}
	e.stores = append(e.stores, s)
	return s, nil
}

// Lookup probes the dictionary for term and reports how many records the
// scan read.
func (e *Engine) Lookup(term string) (segment.DictRecord, bool, int, error) {
	return e.dict.Probe(term)
}

// Posting returns postings record n.
func (e *Engine) Posting(n uint64) (index.Posting, error) {
	return e.postings.At(n)
}

// CheckRun verifies that the postings run of rec lies inside the postings
// store, so that its DocFreq can be trusted for sizing.
func (e *Engine) CheckRun(rec segment.DictRecord) error {
	return e.postings.CheckRun(rec.PostingsStart, rec.DocFreq)
}

// DocumentName resolves a document id through the document map.
func (e *Engine) DocumentName(docID uint64) (segment.MapRecord, error) {
	return e.docs.Name(docID)
}

// Close releases every open store.
func (e *Engine) Close() error {
	var errs []error
	for _, s := range e.stores {
		if err := s.Close(); err != nil {
			e.logger.Error("closing index store", "path", s.Path(), "error", err)
			errs = append(errs, err)
		}
	}
	e.stores = nil
	return errors.Join(errs...)
}

// Check opens and closes the stores of cfg, reporting whether a query could
// run against them.
func Check(cfg config.IndexConfig) error {
	e, err := Open(cfg)
	if err != nil {
		return err
	}
	return e.Close()
}

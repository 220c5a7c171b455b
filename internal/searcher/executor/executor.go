package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/tracing"
)

// Hit is one ranked document.
type Hit struct {
	DocID    uint64 `json:"doc_id"`
	FileName string `json:"file"`
	Weight   uint64 `json:"weight"`
}

type SearchResult struct {
	Query     string            `json:"query"`
	Terms     []string          `json:"terms"`
	TotalHits int               `json:"total_hits"`
	Results   []Hit             `json:"results"`
	TermStats map[string]uint64 `json:"term_stats"`
	Missing   []string          `json:"missing,omitempty"`
}

// Empty reports whether the query matched nothing.
func (r *SearchResult) Empty() bool {
	return len(r.Results) == 0
}

func emptyResult(plan *parser.QueryPlan) *SearchResult {
	return &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		Results:   []Hit{},
		TermStats: map[string]uint64{},
	}
}

// Executor answers queries against one index directory. It keeps no open
// files between queries; each query opens and closes its own store handles.
type Executor struct {
	index   config.IndexConfig
	search  config.SearchConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates an Executor. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics) *Executor {
	return &Executor{
		index:   cfg.Index,
		search:  cfg.Search,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Limit returns the configured maximum number of results per query.
func (e *Executor) Limit() int {
	return e.search.ResultLimit
}

// Execute returns the best matches for query, up to the configured result
// limit.
func (e *Executor) Execute(ctx context.Context, query string) (*SearchResult, error) {
	return e.Search(ctx, query, e.search.ResultLimit)
}

// Search runs query and returns at most limit results. limit is capped at
// the configured result limit; zero or less means the configured limit. The
// whole pipeline is bounded by the configured search timeout.
func (e *Executor) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 || limit > e.search.ResultLimit {
		limit = e.search.ResultLimit
	}
	start := time.Now()
	result, err := resilience.WithTimeout(ctx, e.search.Timeout, "search", func(ctx context.Context) (*SearchResult, error) {
		return e.run(ctx, query, limit)
	})
	if err != nil {
		e.observe(metrics.ResultError, 0, start)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		return nil, err
	}
	resultType := metrics.ResultHit
	if result.Empty() {
		resultType = metrics.ResultZeroResult
	}
	e.observe(resultType, len(result.Results), start)
	return result, nil
}

func (e *Executor) observe(resultType string, returned int, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	e.metrics.SearchLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	if resultType != metrics.ResultError {
		e.metrics.SearchResultsCount.Observe(float64(returned))
	}
}

type termRun struct {
	term string
	rec  segment.DictRecord
}

func (e *Executor) run(ctx context.Context, query string, limit int) (*SearchResult, error) {
	start := time.Now()
	ctx, root := tracing.StartSpan(ctx, "search", traceID(ctx))
	defer func() {
		root.End()
		root.Log()
	}()

	_, tokenizeSpan := tracing.StartChildSpan(ctx, "tokenize")
	plan := parser.Parse(query)
	tokenizeSpan.SetAttr("terms", len(plan.Terms))
	tokenizeSpan.End()

	engine, err := indexer.Open(e.index)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	result := emptyResult(plan)
	if plan.Empty() {
		e.logQuery(ctx, root, result, 0, start)
		return result, nil
	}

	// Every term is resolved before any postings are read so that the
	// accumulator can be sized from the total.
	_, lookupSpan := tracing.StartChildSpan(ctx, "lookup")
	runs := make([]termRun, 0, len(plan.Terms))
	var totalPostings uint64
	for _, term := range plan.Terms {
		if err := ctx.Err(); err != nil {
			lookupSpan.End()
			return nil, err
		}
		rec, found, steps, err := engine.Lookup(term)
		if e.metrics != nil {
			e.metrics.DictionaryProbeSteps.Observe(float64(steps))
		}
		if err != nil {
			lookupSpan.End()
			return nil, fmt.Errorf("looking up term %q: %w", term, err)
		}
		if !found {
			result.Missing = append(result.Missing, term)
			continue
		}
		if err := engine.CheckRun(rec); err != nil {
			lookupSpan.End()
			return nil, fmt.Errorf("looking up term %q: %w", term, err)
		}
		if totalPostings+rec.DocFreq < totalPostings {
			lookupSpan.End()
			return nil, apperrors.Corruptf("postings total overflows at term %q", term)
		}
		runs = append(runs, termRun{term: term, rec: rec})
		result.TermStats[term] = rec.DocFreq
		totalPostings += rec.DocFreq
	}
	lookupSpan.SetAttr("found", len(runs))
	lookupSpan.SetAttr("total_postings", totalPostings)
	lookupSpan.End()

	if totalPostings == 0 {
		e.logQuery(ctx, root, result, 0, start)
		return result, nil
	}

	_, accSpan := tracing.StartChildSpan(ctx, "accumulate")
	if totalPostings > math.MaxInt/e.search.AccumulatorFactor {
		accSpan.End()
		return nil, apperrors.Newf(apperrors.ErrCapacityExceeded, http.StatusInternalServerError,
			"accumulator for %d postings is not addressable", totalPostings)
	}
	capacity := e.search.AccumulatorFactor * totalPostings
	if e.metrics != nil {
		e.metrics.AccumulatorCapacity.Observe(float64(capacity))
	}
	acc := index.NewAccumulator(capacity)
	for _, r := range runs {
		for i := uint64(0); i < r.rec.DocFreq; i++ {
			if err := ctx.Err(); err != nil {
				accSpan.End()
				return nil, err
			}
			p, err := engine.Posting(r.rec.PostingsStart + i)
			if err != nil {
				accSpan.End()
				return nil, fmt.Errorf("reading postings of %q: %w", r.term, err)
			}
			if err := acc.Add(p); err != nil {
				accSpan.End()
				return nil, fmt.Errorf("accumulating postings of %q: %w", r.term, err)
			}
		}
	}
	accSpan.SetAttr("capacity", capacity)
	accSpan.SetAttr("candidates", acc.Len())
	accSpan.End()

	_, rankSpan := tracing.StartChildSpan(ctx, "rank")
	candidates := acc.Candidates()
	ranked := ranker.Rank(candidates, limit)
	rankSpan.End()

	_, resolveSpan := tracing.StartChildSpan(ctx, "resolve")
	hits := make([]Hit, 0, len(ranked))
	for _, c := range ranked {
		doc, err := engine.DocumentName(c.DocID)
		if err != nil {
			resolveSpan.End()
			return nil, fmt.Errorf("resolving document %d: %w", c.DocID, err)
		}
		hits = append(hits, Hit{DocID: c.DocID, FileName: doc.FileName, Weight: c.Weight})
	}
	resolveSpan.End()

	result.TotalHits = len(candidates)
	result.Results = hits
	e.logQuery(ctx, root, result, capacity, start)
	return result, nil
}

func (e *Executor) logQuery(ctx context.Context, root *tracing.Span, result *SearchResult, capacity uint64, start time.Time) {
	log := e.logger
	if id := logger.RequestID(ctx); id != "" {
		log = log.With("request_id", id)
	}
	log.Info("query executed",
		"query", result.Query,
		"terms", result.Terms,
		"missing", result.Missing,
		"accumulator_capacity", capacity,
		"candidates", result.TotalHits,
		"results", len(result.Results),
		"stages_us", root.Timings(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
}

// traceID reuses the request id when there is one.
func traceID(ctx context.Context) string {
	if id := logger.RequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

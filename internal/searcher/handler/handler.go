// Package handler exposes the query pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/metrics"
)

// SearchExecutor runs one query. *executor.Executor implements it.
type SearchExecutor interface {
	Search(ctx context.Context, query string, limit int) (*executor.SearchResult, error)
	Limit() int
}

// Tracker receives an event per answered query. *analytics.Collector
// implements it.
type Tracker interface {
	Track(event analytics.SearchEvent)
}

type Handler struct {
	executor SearchExecutor
	cache    *cache.QueryCache
	tracker  Tracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Handler. queryCache, tracker and m may each be nil.
func New(exec SearchExecutor, queryCache *cache.QueryCache, tracker Tracker, m *metrics.Metrics) *Handler {
	return &Handler{
		executor: exec,
		cache:    queryCache,
		tracker:  tracker,
		metrics:  m,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?q=...&limit=n.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.executor.Limit()
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, h.executor.Limit())
	}

	compute := func() (*executor.SearchResult, error) {
		return h.executor.Search(ctx, query, limit)
	}
	var (
		result   *executor.SearchResult
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, parser.Parse(query), limit, compute)
	} else {
		result, err = compute()
	}
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		log.Error("search failed", "query", query, "status", status, "error", err)
		h.writeError(w, status, publicMessage(err))
		return
	}
	if cacheHit {
		// Cached entries are shared by queries with the same terms.
		shared := *result
		shared.Query = query
		result = &shared
	}

	latency := time.Since(start)
	if cacheHit && h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues("hit").Observe(latency.Seconds())
	}
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.tracker != nil {
		h.tracker.Track(analytics.NewSearchEvent(result, cacheHit, latency, logger.RequestID(ctx)))
	}

	h.writeJSON(w, http.StatusOK, result)
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return "index unavailable"
	case errors.Is(err, apperrors.ErrTimeout):
		return "search timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return "search failed"
	}
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	stats := map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	}
	if entries, err := h.cache.Entries(r.Context()); err != nil {
		h.logger.Warn("counting cache entries failed", "error", err)
	} else {
		stats["entries"] = entries
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

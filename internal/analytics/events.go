package analytics

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
)

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent describes one answered query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Missing   []string  `json:"missing,omitempty"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// NewSearchEvent builds the event for a finished query.
func NewSearchEvent(result *executor.SearchResult, cacheHit bool, latency time.Duration, requestID string) SearchEvent {
	eventType := EventSearch
	if result.Empty() {
		eventType = EventZeroResult
	}
	return SearchEvent{
		Type:      eventType,
		Query:     result.Query,
		Terms:     result.Terms,
		Missing:   result.Missing,
		TotalHits: result.TotalHits,
		Returned:  len(result.Results),
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

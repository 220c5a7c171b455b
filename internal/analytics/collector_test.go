package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) published() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Event(nil), p.events...)
}

func TestCollectorPublishesTrackedEvents(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 8)
	c.Start(context.Background())

	c.Track(SearchEvent{Query: "Cat dog", Terms: []string{"cat", "dog"}})
	c.Track(SearchEvent{Query: "bird", Terms: []string{"bird"}})
	c.Close()

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, "cat dog", events[0].Key)
	assert.Equal(t, "bird", events[1].Value.(SearchEvent).Query)
}

func TestCollectorSurvivesPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 8)
	c.Start(context.Background())
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})
	c.Close()
	assert.Len(t, pub.published(), 2)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 1)
	c.Track(SearchEvent{Query: "kept"})
	c.Track(SearchEvent{Query: "dropped"})

	c.Start(context.Background())
	c.Close()
	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, "kept", events[0].Value.(SearchEvent).Query)
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 8)
	ctx, cancel := context.WithCancel(context.Background())
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})
	cancel()
	c.Start(ctx)

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after cancel")
	}
	assert.Len(t, pub.published(), 2)
}

func TestNewSearchEvent(t *testing.T) {
	result := &executor.SearchResult{
		Query:     "zebra cat",
		Terms:     []string{"zebra", "cat"},
		Missing:   []string{"zebra"},
		TotalHits: 0,
		Results:   []executor.Hit{},
	}
	e := NewSearchEvent(result, true, 1500*time.Microsecond, "req-9")
	assert.Equal(t, EventZeroResult, e.Type)
	assert.Equal(t, int64(1), e.LatencyMs)
	assert.Equal(t, []string{"zebra"}, e.Missing)
	assert.True(t, e.CacheHit)
	assert.Equal(t, "req-9", e.RequestID)

	result.Results = []executor.Hit{{DocID: 1, FileName: "a.html", Weight: 2}}
	assert.Equal(t, EventSearch, NewSearchEvent(result, false, 0, "").Type)
}

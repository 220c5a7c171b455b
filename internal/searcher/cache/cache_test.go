package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/redis"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: make(map[string]string)}
}

func (m *memoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memoryBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value)
	return nil
}

func (m *memoryBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryBackend) Count(ctx context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

func newCache(t *testing.T, dir string) (*QueryCache, *memoryBackend) {
	t.Helper()
	cfg := config.Default()
	cfg.Index.Dir = dir
	backend := newMemoryBackend()
	return New(backend, cfg, nil), backend
}

func TestKeyIgnoresTermOrderAndCase(t *testing.T) {
	c, _ := newCache(t, "/idx")
	assert.Equal(t, c.buildKey(parser.Parse("Cat dog"), 10), c.buildKey(parser.Parse("dog CAT cat"), 10))
	assert.NotEqual(t, c.buildKey(parser.Parse("cat"), 10), c.buildKey(parser.Parse("cat"), 5))

	other, _ := newCache(t, "/other")
	assert.NotEqual(t, c.buildKey(parser.Parse("cat"), 10), other.buildKey(parser.Parse("cat"), 10))
	assert.True(t, strings.HasPrefix(c.buildKey(parser.Parse("cat"), 10), keyPrefix))
}

func TestGetOrCompute(t *testing.T) {
	c, backend := newCache(t, "/idx")
	ctx := context.Background()
	plan := parser.Parse("cat")
	want := &executor.SearchResult{
		Query:     "cat",
		Terms:     []string{"cat"},
		TotalHits: 1,
		Results:   []executor.Hit{{DocID: 9, FileName: "b.html", Weight: 7}},
		TermStats: map[string]uint64{"cat": 1},
	}
	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return want, nil
	}

	got, hit, err := c.GetOrCompute(ctx, plan, 10, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, want, got)

	got, hit, err = c.GetOrCompute(ctx, parser.Parse("CAT"), 10, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	n, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	deleted, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, backend.data)
}

func TestComputeErrorIsNotCached(t *testing.T) {
	c, backend := newCache(t, "/idx")
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), parser.Parse("cat"), 10, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, backend.data)
}

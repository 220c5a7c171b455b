package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshots struct {
	snapshots []AggregatedStats
	err       error
	limit     int
}

func (f *fakeSnapshots) ListSnapshots(_ context.Context, limit int) ([]AggregatedStats, error) {
	f.limit = limit
	return f.snapshots, f.err
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(SearchEvent{Query: "cat", Returned: 1})

	rec := httptest.NewRecorder()
	NewHandler(agg, nil).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalSearches)
	assert.Equal(t, []QueryCount{{"cat", 1}}, stats.TopQueries)
}

func TestSnapshotsHandler(t *testing.T) {
	tests := []struct {
		name      string
		snapshots SnapshotLister
		target    string
		status    int
	}{
		{"storage disabled", nil, "/api/v1/analytics/snapshots", http.StatusServiceUnavailable},
		{"bad limit", &fakeSnapshots{}, "/api/v1/analytics/snapshots?limit=-1", http.StatusBadRequest},
		{"store error", &fakeSnapshots{err: errors.New("db down")}, "/api/v1/analytics/snapshots", http.StatusInternalServerError},
		{"empty", &fakeSnapshots{}, "/api/v1/analytics/snapshots", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(NewAggregator(), tt.snapshots).Snapshots(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	lister := &fakeSnapshots{snapshots: []AggregatedStats{{TotalSearches: 3}}}
	rec := httptest.NewRecorder()
	NewHandler(NewAggregator(), lister).Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, lister.limit)

	var got []AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].TotalSearches)
}

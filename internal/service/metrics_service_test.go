package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, 20*time.Millisecond)
	m.RecordResult("created")
	m.RecordResult("skipped")
	m.RecordResult("created")
	m.RecordPromotion("conflict")
	m.RecordLogin("success")
	m.RecordCacheOperation(true, nil, time.Millisecond)
	m.RecordCacheOperation(false, nil, time.Millisecond)
	m.RecordCacheOperation(false, errors.New("redis down"), time.Millisecond)
	m.RecordCacheOperation(true, nil, time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Equal(t, uint64(3), snap.ResultsProcessed)
	assert.Equal(t, uint64(1), snap.Promotions)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `results_processed_total{outcome="created"} 2`)
	assert.Contains(t, body, `promotions_total{outcome="conflict"} 1`)
	assert.Contains(t, body, `admin_logins_total{outcome="success"} 1`)
	assert.Contains(t, body, `cache_operations_total{result="error"} 1`)
	assert.Contains(t, body, `cache_operations_total{result="hit"} 2`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordResult("created")
	m.RecordPromotion("ok")
	m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

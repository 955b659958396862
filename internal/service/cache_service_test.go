package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type stubCacheStore struct {
	getErr   error
	setTTL   time.Duration
	patterns []string
}

func (s *stubCacheStore) Get(context.Context, string, interface{}) error { return s.getErr }

func (s *stubCacheStore) Set(_ context.Context, _ string, _ interface{}, ttl time.Duration) error {
	s.setTTL = ttl
	return nil
}

func (s *stubCacheStore) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	store := &stubCacheStore{}
	svc := NewCacheService(store, nil, 0, nil, false)

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	require.NoError(t, svc.Invalidate(context.Background(), "k*"))
	assert.Zero(t, store.setTTL)
	assert.Empty(t, store.patterns)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceRecordsOutcomes(t *testing.T) {
	metrics := NewMetricsService()
	store := &stubCacheStore{getErr: appErrors.ErrCacheMiss}
	svc := NewCacheService(store, metrics, time.Minute, nil, true)
	ctx := context.Background()

	hit, err := svc.Get(ctx, "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)

	store.getErr = nil
	hit, err = svc.Get(ctx, "k", &struct{}{})
	require.NoError(t, err)
	assert.True(t, hit)

	store.getErr = errors.New("connection refused")
	_, err = svc.Get(ctx, "k", &struct{}{})
	assert.Error(t, err)

	require.NoError(t, svc.Set(ctx, "k", 1, 0))
	assert.Equal(t, time.Minute, store.setTTL)
	require.NoError(t, svc.Invalidate(ctx, "results:lookup:*"))
	assert.Equal(t, []string{"results:lookup:*"}, store.patterns)

	assert.InDelta(t, 0.5, metrics.Snapshot().CacheHitRatio, 0.0001)
}

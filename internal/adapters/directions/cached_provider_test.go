package directions

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-scheduler-service/internal/adapters/cache"
	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

func TestCachedProvider_ServesRepeatsFromCache(t *testing.T) {
	ctx := context.Background()
	mock := NewMockDirectionsProvider([]MockPair{{From: depot, To: client, Meters: 5000, Seconds: 600}})
	p := NewCachedProvider(mock, cache.NewMemoryDistanceCache(1, 0), obs.NoopMetrics{}, zerolog.Nop())

	for range 3 {
		r, err := p.GetDirections(ctx, depot, client)
		require.NoError(t, err)
		assert.Equal(t, ports.DistanceResult{DistanceMeters: 5000, DurationSeconds: 600}, r)
	}

	assert.Len(t, mock.Calls(), 1)
}

func TestCachedProvider_DoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	mock := NewMockDirectionsProvider(nil)
	p := NewCachedProvider(mock, cache.NewMemoryDistanceCache(1, 0), nil, zerolog.Nop())

	_, err := p.GetDirections(ctx, depot, client)
	require.Error(t, err)
	_, err = p.GetDirections(ctx, depot, client)
	require.Error(t, err)

	assert.Len(t, mock.Calls(), 2)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (ports.DistanceResult, bool, error) {
	return ports.DistanceResult{}, false, errors.New("down")
}

func (brokenCache) Put(context.Context, string, ports.DistanceResult) error {
	return errors.New("down")
}

func TestCachedProvider_CacheErrorsFallThrough(t *testing.T) {
	mock := NewMockDirectionsProvider([]MockPair{{From: depot, To: client, Meters: 10, Seconds: 1}})
	p := NewCachedProvider(mock, brokenCache{}, nil, zerolog.Nop())

	r, err := p.GetDirections(context.Background(), depot, client)
	require.NoError(t, err)
	assert.Equal(t, 10, r.DistanceMeters)
}

func TestMockDirectionsProvider_KeysByRoundedCoordinates(t *testing.T) {
	mock := NewMockDirectionsProvider([]MockPair{{From: depot, To: client, Meters: 1, Seconds: 1}})

	jitter := domain.Coordinates{Lat: client.Lat + 0.000001, Lng: client.Lng}
	_, err := mock.GetDirections(context.Background(), depot, jitter)
	assert.NoError(t, err)
}

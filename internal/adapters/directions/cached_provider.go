package directions

import (
	"context"

	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

// CachedProvider consults a DistanceCache before delegating to the wrapped
// provider. Cache read and write failures are logged and never fail a lookup.
type CachedProvider struct {
	next    ports.DirectionsProvider
	cache   ports.DistanceCache
	metrics obs.Metrics
	logger  zerolog.Logger
}

func NewCachedProvider(
	next ports.DirectionsProvider,
	cache ports.DistanceCache,
	metrics obs.Metrics,
	logger zerolog.Logger,
) *CachedProvider {
	if metrics == nil {
		metrics = obs.NoopMetrics{}
	}
	return &CachedProvider{next: next, cache: cache, metrics: metrics, logger: logger}
}

func (c *CachedProvider) GetDirections(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	key := domain.PairKey(origin, destination)

	if r, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("pair", key).Msg("directions cache read failed")
	} else if ok {
		c.metrics.IncDirectionsCacheHit()
		return r, nil
	}

	c.metrics.IncDirectionsCacheMiss()

	r, err := c.next.GetDirections(ctx, origin, destination)
	if err != nil {
		return ports.DistanceResult{}, err
	}

	if err := c.cache.Put(ctx, key, r); err != nil {
		c.logger.Warn().Err(err).Str("pair", key).Msg("directions cache write failed")
	}

	return r, nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

const (
	selectDistanceSQL = `SELECT distance_meters, duration_seconds FROM distance_cache WHERE pair_key = $1`
	upsertDistanceSQL = `INSERT INTO distance_cache (pair_key, distance_meters, duration_seconds)` +
		` VALUES ($1, $2, $3)` +
		` ON CONFLICT (pair_key) DO UPDATE SET distance_meters = EXCLUDED.distance_meters,` +
		` duration_seconds = EXCLUDED.duration_seconds, updated_at = now()`
)

// SQLDistanceCache is a Postgres-backed cache for coordinate-pair directions.
type SQLDistanceCache struct {
	pool *pgxpool.Pool
}

func NewSQLDistanceCache(pool *pgxpool.Pool) *SQLDistanceCache {
	return &SQLDistanceCache{pool: pool}
}

// Fetch a cached result for one coordinate pair.
func (s *SQLDistanceCache) Get(ctx context.Context, key string) (_ ports.DistanceResult, _ bool, err error) {
	defer obs.Time(ctx, "distance.cache.Get")(&err)

	if s.pool == nil {
		return ports.DistanceResult{}, false, errors.New("distance cache: pool is nil")
	}

	sql, args, err := buildGet(key)
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get distance cache: %w", err)
	}

	var r ports.DistanceResult
	err = s.pool.QueryRow(ctx, sql, args...).Scan(&r.DistanceMeters, &r.DurationSeconds)
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}

	return r, true, nil
}

// Store a result for one coordinate pair, replacing any previous value.
func (s *SQLDistanceCache) Put(ctx context.Context, key string, r ports.DistanceResult) error {
	if s.pool == nil {
		return errors.New("distance cache: pool is nil")
	}

	sql, args, err := buildPut(key, r)
	if err != nil {
		return fmt.Errorf("insert distance cache: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert distance cache key=%q: %w", args[0], err)
	}

	return nil
}

func pairKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("key must not be empty")
	}
	return key, nil
}

func buildGet(key string) (string, []any, error) {
	k, err := pairKey(key)
	if err != nil {
		return "", nil, err
	}
	return selectDistanceSQL, []any{k}, nil
}

func buildPut(key string, r ports.DistanceResult) (string, []any, error) {
	k, err := pairKey(key)
	if err != nil {
		return "", nil, err
	}
	if r.DistanceMeters < 0 || r.DurationSeconds < 0 {
		return "", nil, fmt.Errorf("negative result for %q", k)
	}
	return upsertDistanceSQL, []any{k, r.DistanceMeters, r.DurationSeconds}, nil
}

package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/ports"
)

func TestBuildGet_UsesPairKey(t *testing.T) {
	key := domain.PairKey(
		domain.Coordinates{Lat: -23.5505, Lng: -46.6333},
		domain.Coordinates{Lat: -23.5614, Lng: -46.6559},
	)

	sql, args, err := buildGet("  " + key + "\n")
	require.NoError(t, err)
	assert.Equal(t, `SELECT distance_meters, duration_seconds FROM distance_cache WHERE pair_key = $1`, sql)
	assert.Equal(t, []any{"-23.55050,-46.63330|-23.56140,-46.65590"}, args)
}

func TestBuildPut_Upserts(t *testing.T) {
	sql, args, err := buildPut("a|b", ports.DistanceResult{DistanceMeters: 4211, DurationSeconds: 611})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO distance_cache (pair_key, distance_meters, duration_seconds)`+
			` VALUES ($1, $2, $3)`+
			` ON CONFLICT (pair_key) DO UPDATE SET distance_meters = EXCLUDED.distance_meters,`+
			` duration_seconds = EXCLUDED.duration_seconds, updated_at = now()`,
		sql,
	)
	assert.Equal(t, []any{"a|b", 4211, 611}, args)
}

func TestBuildPut_RejectsInvalidInput(t *testing.T) {
	_, _, err := buildPut("   ", ports.DistanceResult{})
	assert.Error(t, err)

	_, _, err = buildPut("a|b", ports.DistanceResult{DistanceMeters: -1})
	assert.Error(t, err)

	_, _, err = buildGet("")
	assert.Error(t, err)
}

func TestSQLDistanceCache_NilPool(t *testing.T) {
	c := NewSQLDistanceCache(nil)

	_, _, err := c.Get(context.Background(), "a|b")
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), "a|b", ports.DistanceResult{}))
}

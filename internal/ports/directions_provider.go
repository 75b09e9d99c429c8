package ports

import (
	"context"

	"logistics-scheduler-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel distance and duration between two coordinates.
type DirectionsProvider interface {
	// Return travel distance and estimated duration from origin to destination.
	GetDirections(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}

// Persistent lookup of previously fetched directions, keyed by domain.PairKey.
type DistanceCache interface {
	// Return the cached result and whether it was present.
	Get(ctx context.Context, key string) (DistanceResult, bool, error)
	Put(ctx context.Context, key string, result DistanceResult) error
}

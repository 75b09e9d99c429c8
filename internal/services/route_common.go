package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

const (
	// departureSafetyMargin is added ahead of each operation's window.
	departureSafetyMargin = 15 * time.Minute

	rentalServiceDuration = 30 * time.Minute
	rentalTurnaround      = 5 * time.Minute
	defaultBaseDeparture  = "08:00"
)

// RouteOptimizer builds single-vehicle, single-day routes. Both variants
// walk the stops sequentially, threading a routeState through each step.
type RouteOptimizer struct {
	directions ports.DirectionsProvider
	costs      *CostModel
	loc        *time.Location
	logger     zerolog.Logger
	metrics    obs.Metrics
}

func NewRouteOptimizer(
	directions ports.DirectionsProvider,
	costs *CostModel,
	loc *time.Location,
	logger zerolog.Logger,
	metrics obs.Metrics,
) *RouteOptimizer {
	if loc == nil {
		loc = time.UTC
	}
	if metrics == nil {
		metrics = obs.NoopMetrics{}
	}
	return &RouteOptimizer{
		directions: directions,
		costs:      costs,
		loc:        loc,
		logger:     logger,
		metrics:    metrics,
	}
}

// routeState is the vehicle position and running totals between two steps.
// clock is only meaningful for the rental variant.
type routeState struct {
	position        domain.Coordinates
	clock           time.Time
	distanceMeters  int
	durationSeconds int
}

func (s routeState) travel(to domain.Coordinates, leg ports.DistanceResult) routeState {
	return routeState{
		position:        to,
		clock:           s.clock,
		distanceMeters:  s.distanceMeters + leg.DistanceMeters,
		durationSeconds: s.durationSeconds + leg.DurationSeconds,
	}
}

// leg asks the provider for one hop. Failures degrade to a zero leg.
func (o *RouteOptimizer) leg(ctx context.Context, from, to domain.Coordinates) ports.DistanceResult {
	r, err := o.directions.GetDirections(ctx, from, to)
	if err != nil {
		o.logger.Warn().
			Err(err).
			Str("from", from.Key()).
			Str("to", to.Key()).
			Msg("directions unavailable, counting leg as zero")
		return ports.DistanceResult{}
	}
	return r
}

func legDuration(leg ports.DistanceResult) time.Duration {
	return time.Duration(leg.DurationSeconds) * time.Second
}

func legMinutes(leg ports.DistanceResult) float64 {
	return float64(leg.DurationSeconds) / 60
}

func legKm(leg ports.DistanceResult) float64 {
	return float64(leg.DistanceMeters) / 1000
}

// partitionStops splits stops into routable and skipped, keeping order.
func partitionStops(stops []domain.ServiceStop, routable func(domain.ServiceStop) bool) (valid, skipped []domain.ServiceStop) {
	for _, s := range stops {
		if routable(s) {
			valid = append(valid, s)
		} else {
			skipped = append(skipped, s)
		}
	}
	return valid, skipped
}

func (o *RouteOptimizer) logSkipped(variant string, skipped []domain.ServiceStop) {
	for _, s := range skipped {
		o.logger.Warn().
			Str("variant", variant).
			Str("stop_id", s.ID).
			Bool("has_destination", s.HasDestination()).
			Bool("has_schedule", s.HasSchedule()).
			Msg("skipping stop without destination or schedule")
	}
}

// returnToBase adds the leg from the last stop back to start, if any stop
// was visited.
func (o *RouteOptimizer) returnToBase(ctx context.Context, state routeState, start domain.Coordinates, visited int) routeState {
	if visited == 0 {
		return state
	}
	back := o.leg(ctx, state.position, start)
	return state.travel(start, back)
}

func routeTotals(state routeState, ratePerKm float64) *domain.RouteTotals {
	km := float64(state.distanceMeters) / 1000
	return &domain.RouteTotals{
		DistanceKm:      km,
		DurationMinutes: float64(state.durationSeconds) / 60,
		Cost:            km * ratePerKm,
	}
}

package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"logistics-scheduler-service/internal/domain"
)

type OperationRouteRequest struct {
	Stops         []domain.ServiceStop
	StartLocation *domain.Coordinates
	StartBaseID   string
	AccountID     string
}

// OptimizeOperationRoute orders operations by their committed start and
// estimates timings per stop.
//
// Each stop's suggested departure is derived from its own window
// (start - travel - safety margin), not from the previous stop's finish, so
// consecutive departures are not chained. Stops without a destination or a
// full window are dropped. Directions failures count as zero-length legs.
func (o *RouteOptimizer) OptimizeOperationRoute(
	ctx context.Context,
	req OperationRouteRequest,
) (_ *domain.RouteSummary, err error) {
	started := time.Now()
	defer func() {
		if err == nil {
			o.metrics.ObserveRouteOptimization("operations", time.Since(started))
		}
	}()

	if req.StartLocation == nil {
		return nil, invalidInput("startLocation", "is required")
	}

	if len(req.Stops) == 0 {
		return domain.EmptyRouteSummary(), nil
	}

	sorted := slices.Clone(req.Stops)
	slices.SortStableFunc(sorted, func(a, b domain.ServiceStop) int {
		return a.StartOrZero().Compare(b.StartOrZero())
	})

	valid, skipped := partitionStops(sorted, func(s domain.ServiceStop) bool {
		return s.HasDestination() && s.HasSchedule()
	})
	o.logSkipped("operations", skipped)

	state := routeState{position: *req.StartLocation}
	stops := make([]domain.OptimizedStop, 0, len(valid))
	for _, stop := range valid {
		var placed domain.OptimizedStop
		state, placed = o.operationStep(ctx, state, stop, len(stops)+1)
		stops = append(stops, placed)
	}

	state = o.returnToBase(ctx, state, *req.StartLocation, len(stops))

	summary := &domain.RouteSummary{Stops: stops}

	var rate float64
	if len(stops) > 0 {
		first := stops[0]
		departure := first.SuggestedDepartureFromPrevious
		summary.BaseDepartureTime = &departure

		rate, err = o.costs.RateForVehicle(ctx, req.AccountID, req.StartBaseID, first.Stop.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("optimize operation route: %w", err)
		}
	}

	totals := routeTotals(state, rate)
	revenue := 0.0
	for _, s := range stops {
		revenue += s.Stop.Value
	}
	profit := revenue - totals.Cost
	totals.Revenue = &revenue
	totals.Profit = &profit
	summary.Totals = totals

	return summary, nil
}

func (o *RouteOptimizer) operationStep(
	ctx context.Context,
	state routeState,
	stop domain.ServiceStop,
	order int,
) (routeState, domain.OptimizedStop) {
	dest, _ := stop.Destination.Coordinates()
	leg := o.leg(ctx, state.position, dest)
	travel := legDuration(leg)

	start := stop.ScheduledStart.In(o.loc)
	end := stop.ScheduledEnd.In(o.loc)

	departure := start.Add(-(travel + departureSafetyMargin))
	arrival := departure.Add(travel)

	serviceStart := start
	if arrival.After(start) {
		serviceStart = arrival
	}
	serviceEnd := serviceStart.Add(end.Sub(start))

	next := state.travel(dest, leg)
	next.clock = serviceEnd

	return next, domain.OptimizedStop{
		Stop:                           stop,
		OrderInRoute:                   order,
		TravelMinutesToHere:            legMinutes(leg),
		DistanceKmToHere:               legKm(leg),
		EstimatedArrival:               arrival,
		EstimatedServiceStart:          serviceStart,
		EstimatedServiceEnd:            serviceEnd,
		SuggestedDepartureFromPrevious: departure,
	}
}

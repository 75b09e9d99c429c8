package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"logistics-scheduler-service/internal/domain"
)

type RentalRouteRequest struct {
	Rentals       []domain.Rental
	Day           time.Time
	StartLocation *domain.Coordinates
	BaseID        string
	AccountID     string
	// BaseDepartureTime is "HH:mm"; empty means 08:00.
	BaseDepartureTime string
}

// Synthetic windows used only to order a day's rental tasks.
var (
	deliveryWindow = [2]int{8, 9}
	pickupWindow   = [2]int{17, 18}
)

// OptimizeRentalRoute sequences the day's deliveries and pickups on a single
// advancing clock: each stop starts on arrival, lasts a fixed service
// duration, and the vehicle leaves a fixed turnaround after finishing.
func (o *RouteOptimizer) OptimizeRentalRoute(
	ctx context.Context,
	req RentalRouteRequest,
) (_ *domain.RouteSummary, err error) {
	started := time.Now()
	defer func() {
		if err == nil {
			o.metrics.ObserveRouteOptimization("rentals", time.Since(started))
		}
	}()

	if req.StartLocation == nil {
		return nil, invalidInput("startLocation", "is required")
	}
	if req.Day.IsZero() {
		return nil, invalidInput("day", "is required")
	}

	departureClock := req.BaseDepartureTime
	if departureClock == "" {
		departureClock = defaultBaseDeparture
	}
	hour, minute, err := domain.ParseClock(departureClock)
	if err != nil {
		return nil, invalidInput("baseDepartureTime", err.Error())
	}

	tasks := ExpandRentals(req.Rentals, req.Day, o.loc)
	if len(tasks) == 0 {
		return domain.EmptyRouteSummary(), nil
	}

	slices.SortStableFunc(tasks, func(a, b domain.ServiceStop) int {
		return a.StartOrZero().Compare(b.StartOrZero())
	})

	valid, skipped := partitionStops(tasks, domain.ServiceStop.HasDestination)
	o.logSkipped("rentals", skipped)

	baseDeparture := domain.AtClock(req.Day, hour, minute, o.loc)

	state := routeState{position: *req.StartLocation, clock: baseDeparture}
	stops := make([]domain.OptimizedStop, 0, len(valid))
	for _, stop := range valid {
		var placed domain.OptimizedStop
		state, placed = o.rentalStep(ctx, state, stop, len(stops)+1)
		stops = append(stops, placed)
	}

	state = o.returnToBase(ctx, state, *req.StartLocation, len(stops))

	var rate float64
	if len(stops) > 0 {
		rate, err = o.costs.RateForRollOff(ctx, req.AccountID, req.BaseID)
		if err != nil {
			return nil, fmt.Errorf("optimize rental route: %w", err)
		}
	}

	return &domain.RouteSummary{
		Stops:             stops,
		BaseDepartureTime: &baseDeparture,
		Totals:            routeTotals(state, rate),
	}, nil
}

func (o *RouteOptimizer) rentalStep(
	ctx context.Context,
	state routeState,
	stop domain.ServiceStop,
	order int,
) (routeState, domain.OptimizedStop) {
	dest, _ := stop.Destination.Coordinates()
	leg := o.leg(ctx, state.position, dest)

	departure := state.clock
	arrival := departure.Add(legDuration(leg))
	serviceEnd := arrival.Add(rentalServiceDuration)

	next := state.travel(dest, leg)
	next.clock = serviceEnd.Add(rentalTurnaround)

	return next, domain.OptimizedStop{
		Stop:                           stop,
		OrderInRoute:                   order,
		TravelMinutesToHere:            legMinutes(leg),
		DistanceKmToHere:               legKm(leg),
		EstimatedArrival:               arrival,
		EstimatedServiceStart:          arrival,
		EstimatedServiceEnd:            serviceEnd,
		SuggestedDepartureFromPrevious: departure,
	}
}

// ExpandRentals turns rentals into the day's delivery and pickup tasks. A
// rental yields a delivery when its rental date falls on day and a pickup
// when its return date does.
func ExpandRentals(rentals []domain.Rental, day time.Time, loc *time.Location) []domain.ServiceStop {
	var tasks []domain.ServiceStop
	for _, r := range rentals {
		if r.RentalDate != nil && domain.SameDay(*r.RentalDate, day, loc) {
			tasks = append(tasks, rentalTask(r, domain.StopKindDelivery, day, deliveryWindow, loc))
		}
		if r.ReturnDate != nil && domain.SameDay(*r.ReturnDate, day, loc) {
			tasks = append(tasks, rentalTask(r, domain.StopKindPickup, day, pickupWindow, loc))
		}
	}
	return tasks
}

func rentalTask(r domain.Rental, kind domain.StopKind, day time.Time, window [2]int, loc *time.Location) domain.ServiceStop {
	start := domain.AtClock(day, window[0], 0, loc)
	end := domain.AtClock(day, window[1], 0, loc)
	return domain.ServiceStop{
		ID:             r.ID + "-" + string(kind),
		Kind:           kind,
		SourceID:       r.ID,
		ClientID:       r.ClientID,
		Destination:    r.Destination,
		ScheduledStart: &start,
		ScheduledEnd:   &end,
		Value:          r.Value,
	}
}

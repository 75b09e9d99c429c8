package domain

import "time"

type StopKind string

const (
	StopKindOperation StopKind = "operation"
	StopKindDelivery  StopKind = "delivery"
	StopKindPickup    StopKind = "pickup"
)

// Destination is where a stop takes place. Lat/Lng are optional because
// records captured without geocoding carry only an address.
type Destination struct {
	Address string   `json:"address" mapstructure:"address"`
	Lat     *float64 `json:"lat,omitempty" mapstructure:"lat"`
	Lng     *float64 `json:"lng,omitempty" mapstructure:"lng"`
}

// Coordinates reports the destination position, if known.
func (d Destination) Coordinates() (Coordinates, bool) {
	if d.Lat == nil || d.Lng == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *d.Lat, Lng: *d.Lng}, true
}

// ServiceStop is one visit in a day's route. It is built fresh for every
// optimization run from live operation or rental records and never persisted.
//
// For rental-derived stops ScheduledStart/ScheduledEnd are synthetic
// placeholders used only for intra-day ordering.
type ServiceStop struct {
	ID             string
	Kind           StopKind
	SourceID       string
	ClientID       string
	Destination    Destination
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Value          float64
	VehicleID      string
}

// HasDestination reports whether the stop can be routed to.
func (s ServiceStop) HasDestination() bool {
	_, ok := s.Destination.Coordinates()
	return ok
}

// HasSchedule reports whether both ends of the service window are set.
func (s ServiceStop) HasSchedule() bool {
	return s.ScheduledStart != nil && s.ScheduledEnd != nil
}

// StartOrZero returns the scheduled start, or the zero time when absent so
// that unscheduled stops sort first.
func (s ServiceStop) StartOrZero() time.Time {
	if s.ScheduledStart == nil {
		return time.Time{}
	}
	return *s.ScheduledStart
}

// OptimizedStop is a stop placed in a computed route. Immutable once computed.
type OptimizedStop struct {
	Stop                           ServiceStop
	OrderInRoute                   int
	TravelMinutesToHere            float64
	DistanceKmToHere               float64
	EstimatedArrival               time.Time
	EstimatedServiceStart          time.Time
	EstimatedServiceEnd            time.Time
	SuggestedDepartureFromPrevious time.Time
}

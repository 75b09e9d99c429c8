package dto

import (
	"time"

	"logistics-scheduler-service/internal/domain"
)

type DestinationDTO struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

type OperationStopRequest struct {
	ID          string         `json:"id" validate:"required"`
	ClientID    string         `json:"client_id"`
	Destination DestinationDTO `json:"destination"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	Value       float64        `json:"value"`
	TruckID     string         `json:"truck_id"`
}

type OperationRouteRequest struct {
	Operations    []OperationStopRequest `json:"operations"`
	StartLocation *domain.Coordinates    `json:"start_location"`
	StartBaseID   string                 `json:"start_base_id"`
	AccountID     string                 `json:"account_id" validate:"required"`
}

type RentalRequest struct {
	ID          string         `json:"id" validate:"required"`
	ClientID    string         `json:"client_id"`
	Destination DestinationDTO `json:"destination"`
	RentalDate  *time.Time     `json:"rental_date"`
	ReturnDate  *time.Time     `json:"return_date"`
	Value       float64        `json:"value"`
}

type RentalRouteRequest struct {
	Rentals           []RentalRequest     `json:"rentals"`
	Day               string              `json:"day" validate:"required|date"`
	StartLocation     *domain.Coordinates `json:"start_location"`
	BaseID            string              `json:"base_id"`
	AccountID         string              `json:"account_id" validate:"required"`
	BaseDepartureTime string              `json:"base_departure_time"`
}

type OptimizedStopResponse struct {
	ID                             string         `json:"id"`
	Kind                           string         `json:"kind"`
	SourceID                       string         `json:"source_id"`
	ClientID                       string         `json:"client_id,omitempty"`
	Destination                    DestinationDTO `json:"destination"`
	OrderInRoute                   int            `json:"order_in_route"`
	TravelMinutesToHere            float64        `json:"travel_minutes_to_here"`
	DistanceKmToHere               float64        `json:"distance_km_to_here"`
	EstimatedArrival               time.Time      `json:"estimated_arrival"`
	EstimatedServiceStart          time.Time      `json:"estimated_service_start"`
	EstimatedServiceEnd            time.Time      `json:"estimated_service_end"`
	SuggestedDepartureFromPrevious time.Time      `json:"suggested_departure_from_previous"`
}

// RouteSummaryResponse carries only "stops" for an empty route.
type RouteSummaryResponse struct {
	Stops                []OptimizedStopResponse `json:"stops"`
	BaseDepartureTime    *time.Time              `json:"base_departure_time,omitempty"`
	TotalDistance        string                  `json:"total_distance,omitempty"`
	TotalDistanceKm      *float64                `json:"total_distance_km,omitempty"`
	TotalDuration        string                  `json:"total_duration,omitempty"`
	TotalDurationMinutes *float64                `json:"total_duration_minutes,omitempty"`
	TotalCost            *float64                `json:"total_cost,omitempty"`
	TotalRevenue         *float64                `json:"total_revenue,omitempty"`
	Profit               *float64                `json:"profit,omitempty"`
}

func (d DestinationDTO) ToDomain() domain.Destination {
	return domain.Destination{Address: d.Address, Lat: d.Lat, Lng: d.Lng}
}

func (o OperationStopRequest) ToDomain() domain.ServiceStop {
	return domain.ServiceStop{
		ID:             o.ID,
		Kind:           domain.StopKindOperation,
		SourceID:       o.ID,
		ClientID:       o.ClientID,
		Destination:    o.Destination.ToDomain(),
		ScheduledStart: o.StartDate,
		ScheduledEnd:   o.EndDate,
		Value:          o.Value,
		VehicleID:      o.TruckID,
	}
}

func (r RentalRequest) ToDomain() domain.Rental {
	return domain.Rental{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Destination: r.Destination.ToDomain(),
		RentalDate:  r.RentalDate,
		ReturnDate:  r.ReturnDate,
		Value:       r.Value,
	}
}

func NewRouteSummaryResponse(s *domain.RouteSummary) RouteSummaryResponse {
	res := RouteSummaryResponse{
		Stops:             make([]OptimizedStopResponse, 0, len(s.Stops)),
		BaseDepartureTime: s.BaseDepartureTime,
	}

	for _, st := range s.Stops {
		res.Stops = append(res.Stops, OptimizedStopResponse{
			ID:       st.Stop.ID,
			Kind:     string(st.Stop.Kind),
			SourceID: st.Stop.SourceID,
			ClientID: st.Stop.ClientID,
			Destination: DestinationDTO{
				Address: st.Stop.Destination.Address,
				Lat:     st.Stop.Destination.Lat,
				Lng:     st.Stop.Destination.Lng,
			},
			OrderInRoute:                   st.OrderInRoute,
			TravelMinutesToHere:            st.TravelMinutesToHere,
			DistanceKmToHere:               st.DistanceKmToHere,
			EstimatedArrival:               st.EstimatedArrival,
			EstimatedServiceStart:          st.EstimatedServiceStart,
			EstimatedServiceEnd:            st.EstimatedServiceEnd,
			SuggestedDepartureFromPrevious: st.SuggestedDepartureFromPrevious,
		})
	}

	if t := s.Totals; t != nil {
		km, minutes, cost := t.DistanceKm, t.DurationMinutes, t.Cost
		res.TotalDistance = t.DistanceText()
		res.TotalDistanceKm = &km
		res.TotalDuration = t.DurationText()
		res.TotalDurationMinutes = &minutes
		res.TotalCost = &cost
		res.TotalRevenue = t.Revenue
		res.Profit = t.Profit
	}
	return res
}

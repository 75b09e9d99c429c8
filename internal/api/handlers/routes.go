package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/api/dto"
	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/services"
)

type RouteOptimizer interface {
	OptimizeOperationRoute(ctx context.Context, req services.OperationRouteRequest) (*domain.RouteSummary, error)
	OptimizeRentalRoute(ctx context.Context, req services.RentalRouteRequest) (*domain.RouteSummary, error)
}

type RouteHandler struct {
	Optimizer RouteOptimizer
	Location  *time.Location
}

// Operations plans a day of scheduled operations for one vehicle.
func (h *RouteHandler) Operations(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OperationRouteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stops := make([]domain.ServiceStop, 0, len(req.Operations))
	for _, op := range req.Operations {
		stops = append(stops, op.ToDomain())
	}

	summary, err := h.Optimizer.OptimizeOperationRoute(r.Context(), services.OperationRouteRequest{
		Stops:         stops,
		StartLocation: req.StartLocation,
		StartBaseID:   req.StartBaseID,
		AccountID:     req.AccountID,
	})
	h.respond(w, r, summary, err)
}

// Rentals plans the deliveries and pickups that fall on the requested day.
func (h *RouteHandler) Rentals(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.RentalRouteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	day, err := time.ParseInLocation(domain.DateLayout, req.Day, h.location())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	rentals := make([]domain.Rental, 0, len(req.Rentals))
	for _, rental := range req.Rentals {
		rentals = append(rentals, rental.ToDomain())
	}

	summary, err := h.Optimizer.OptimizeRentalRoute(r.Context(), services.RentalRouteRequest{
		Rentals:           rentals,
		Day:               day,
		StartLocation:     req.StartLocation,
		BaseID:            req.BaseID,
		AccountID:         req.AccountID,
		BaseDepartureTime: req.BaseDepartureTime,
	})
	h.respond(w, r, summary, err)
}

func (h *RouteHandler) respond(w http.ResponseWriter, r *http.Request, summary *domain.RouteSummary, err error) {
	var invalid *services.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeError(w, r, http.StatusBadRequest, invalid.Error())
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("route optimization failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, r, http.StatusOK, dto.NewRouteSummaryResponse(summary))
	}
}

func (h *RouteHandler) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/adapters/directions"
	"logistics-scheduler-service/internal/adapters/docstore"
	"logistics-scheduler-service/internal/adapters/repositories"
	"logistics-scheduler-service/internal/domain"
)

var (
	hub   = domain.Coordinates{Lat: -23.50000, Lng: -46.60000}
	siteA = domain.Coordinates{Lat: -23.51000, Lng: -46.61000}
	siteB = domain.Coordinates{Lat: -23.52000, Lng: -46.62000}
	siteC = domain.Coordinates{Lat: -23.53000, Lng: -46.63000}
)

func at(c domain.Coordinates) domain.Destination {
	lat, lng := c.Lat, c.Lng
	return domain.Destination{Address: c.Key(), Lat: &lat, Lng: &lng}
}

func ts(t time.Time) *time.Time { return &t }

func fleetStore() *docstore.MemoryStore {
	s := docstore.NewMemoryStore()
	s.Seed("accounts", "a1", map[string]any{
		"operationalCosts": []any{
			map[string]any{"baseId": "", "vehicleTypeId": "vt1", "value": 1.5},
			map[string]any{"baseId": "b1", "vehicleTypeId": "vt1", "value": 2.0},
			map[string]any{"baseId": "b1", "vehicleTypeId": "vt2", "value": 3.0},
		},
	})
	s.Seed("accounts/a1/trucks", "t1", map[string]any{"vehicleTypeId": "vt1"})
	s.Seed("accounts/a1/trucks", "t9", map[string]any{"vehicleTypeId": "vt-unpriced"})
	s.Seed("accounts/a1/vehicle_types", "vt1", map[string]any{"name": "Caminhão Vácuo"})
	s.Seed("accounts/a1/vehicle_types", "vt2", map[string]any{"name": "Poliguindaste Truck"})
	return s
}

func newTestOptimizer(t *testing.T, pairs []directions.MockPair) (*RouteOptimizer, *directions.MockDirectionsProvider) {
	t.Helper()
	provider := directions.NewMockDirectionsProvider(pairs)
	costs := NewCostModel(repositories.NewDocumentFleetRepository(fleetStore()))
	return NewRouteOptimizer(provider, costs, time.UTC, zerolog.Nop(), nil), provider
}

func floatPtrEquals(p *float64, want float64) bool {
	if p == nil {
		return false
	}
	d := *p - want
	return d < 1e-9 && d > -1e-9
}

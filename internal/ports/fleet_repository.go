package ports

import (
	"context"

	"logistics-scheduler-service/internal/domain"
)

// Read-only access to an account's fleet and cost settings.
type FleetRepository interface {
	// Return the truck or ErrDocumentNotFound.
	GetTruck(ctx context.Context, accountID, truckID string) (domain.Truck, error)
	ListVehicleTypes(ctx context.Context, accountID string) ([]domain.VehicleType, error)
	GetCostRates(ctx context.Context, accountID string) (domain.CostRates, error)
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

// Document-backed implementation of the FleetRepository port.
type DocumentFleetRepository struct {
	store ports.DocumentStore
}

func NewDocumentFleetRepository(store ports.DocumentStore) *DocumentFleetRepository {
	return &DocumentFleetRepository{store: store}
}

func (r *DocumentFleetRepository) GetTruck(ctx context.Context, accountID, truckID string) (domain.Truck, error) {
	if accountID == "" || truckID == "" {
		return domain.Truck{}, errors.New("get truck: account and truck id are required")
	}

	doc, err := r.store.Get(ctx, domain.AccountCollection(accountID, domain.TrucksCollection), truckID)
	if err != nil {
		return domain.Truck{}, fmt.Errorf("get truck: %w", err)
	}

	var truck domain.Truck
	if err := domain.DecodeDocument(doc.Data, &truck); err != nil {
		return domain.Truck{}, fmt.Errorf("get truck %s: %w", truckID, err)
	}
	truck.ID = doc.ID

	return truck, nil
}

// Return every vehicle type of the account, ordered by id.
func (r *DocumentFleetRepository) ListVehicleTypes(ctx context.Context, accountID string) (_ []domain.VehicleType, err error) {
	defer obs.Time(ctx, "fleet.ListVehicleTypes")(&err)

	docs, err := r.store.Query(ctx, domain.AccountCollection(accountID, domain.VehicleTypesCollection), ports.Query{})
	if err != nil {
		return nil, fmt.Errorf("list vehicle types: %w", err)
	}

	types := make([]domain.VehicleType, 0, len(docs))
	for _, doc := range docs {
		var vt domain.VehicleType
		if err := domain.DecodeDocument(doc.Data, &vt); err != nil {
			return nil, fmt.Errorf("list vehicle types: %s: %w", doc.ID, err)
		}
		vt.ID = doc.ID
		types = append(types, vt)
	}

	return types, nil
}

// Return the per-km rates configured on the account document.
func (r *DocumentFleetRepository) GetCostRates(ctx context.Context, accountID string) (domain.CostRates, error) {
	if accountID == "" {
		return nil, errors.New("get cost rates: account id is required")
	}

	doc, err := r.store.Get(ctx, domain.AccountsCollection, accountID)
	if err != nil {
		return nil, fmt.Errorf("get cost rates: %w", err)
	}

	var account domain.Account
	if err := domain.DecodeDocument(doc.Data, &account); err != nil {
		return nil, fmt.Errorf("get cost rates %s: %w", accountID, err)
	}

	return account.OperationalCosts, nil
}

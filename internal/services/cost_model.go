package services

import (
	"context"
	"errors"
	"fmt"

	"logistics-scheduler-service/internal/ports"
)

// CostModel resolves per-kilometer operational rates from account settings.
type CostModel struct {
	fleet ports.FleetRepository
}

func NewCostModel(fleet ports.FleetRepository) *CostModel {
	return &CostModel{fleet: fleet}
}

// RateForVehicle resolves the rate of the vehicle type assigned to vehicleID.
// An unknown vehicle or account resolves to zero.
func (c *CostModel) RateForVehicle(ctx context.Context, accountID, baseID, vehicleID string) (float64, error) {
	if accountID == "" || vehicleID == "" {
		return 0, nil
	}

	truck, err := c.fleet.GetTruck(ctx, accountID, vehicleID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rate for vehicle %s: %w", vehicleID, err)
	}

	return c.rateForType(ctx, accountID, baseID, truck.VehicleTypeID)
}

// RateForRollOff resolves the rate of the first vehicle type whose name marks
// it as a roll-off truck.
func (c *CostModel) RateForRollOff(ctx context.Context, accountID, baseID string) (float64, error) {
	if accountID == "" {
		return 0, nil
	}

	types, err := c.fleet.ListVehicleTypes(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("rate for roll-off: %w", err)
	}

	for _, vt := range types {
		if vt.IsRollOff() {
			return c.rateForType(ctx, accountID, baseID, vt.ID)
		}
	}
	return 0, nil
}

func (c *CostModel) rateForType(ctx context.Context, accountID, baseID, vehicleTypeID string) (float64, error) {
	if vehicleTypeID == "" {
		return 0, nil
	}

	rates, err := c.fleet.GetCostRates(ctx, accountID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cost rates for account %s: %w", accountID, err)
	}

	return rates.RateFor(baseID, vehicleTypeID), nil
}

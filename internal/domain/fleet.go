package domain

import "strings"

// rollOffKeyword identifies the roll-off truck type ("poliguindaste") used
// for dumpster drop-off and pickup.
const rollOffKeyword = "poliguindaste"

// Truck is a vehicle of the account's fleet.
type Truck struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	Plate         string `json:"plate" mapstructure:"plate"`
	VehicleTypeID string `json:"vehicleTypeId" mapstructure:"vehicleTypeId"`
}

// VehicleType groups trucks that share an operational cost profile.
type VehicleType struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// IsRollOff reports whether the type is a roll-off truck.
func (v VehicleType) IsRollOff() bool {
	return strings.Contains(strings.ToLower(v.Name), rollOffKeyword)
}

// CostRate is a per-kilometer operational cost configured for a base and
// vehicle type.
type CostRate struct {
	BaseID        string  `json:"baseId" mapstructure:"baseId"`
	VehicleTypeID string  `json:"vehicleTypeId" mapstructure:"vehicleTypeId"`
	Value         float64 `json:"value" mapstructure:"value"`
}

type CostRates []CostRate

// RateFor resolves the per-km rate: exact (base, type) match first, then any
// rate configured for the type alone, else zero.
func (r CostRates) RateFor(baseID, vehicleTypeID string) float64 {
	if vehicleTypeID == "" {
		return 0
	}

	if baseID != "" {
		for _, rate := range r {
			if rate.BaseID == baseID && rate.VehicleTypeID == vehicleTypeID {
				return rate.Value
			}
		}
	}

	for _, rate := range r {
		if rate.VehicleTypeID == vehicleTypeID {
			return rate.Value
		}
	}

	return 0
}

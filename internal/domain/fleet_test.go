package domain

import "testing"

func TestCostRatesRateFor(t *testing.T) {
	rates := CostRates{
		{BaseID: "north", VehicleTypeID: "roll-off", Value: 4.5},
		{BaseID: "south", VehicleTypeID: "roll-off", Value: 5.0},
		{BaseID: "south", VehicleTypeID: "vacuum", Value: 7.25},
	}

	tests := []struct {
		name  string
		base  string
		vtype string
		want  float64
	}{
		{"exact match", "south", "roll-off", 5.0},
		{"type-only fallback", "east", "vacuum", 7.25},
		{"no base falls back to type", "", "roll-off", 4.5},
		{"unknown type", "north", "crane", 0},
		{"no type", "north", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rates.RateFor(tt.base, tt.vtype); got != tt.want {
				t.Errorf("RateFor(%q, %q) = %v, want %v", tt.base, tt.vtype, got, tt.want)
			}
		})
	}
}

func TestVehicleTypeIsRollOff(t *testing.T) {
	if !(VehicleType{Name: "Caminhão Poliguindaste"}).IsRollOff() {
		t.Error("expected poliguindaste type to be roll-off")
	}
	if (VehicleType{Name: "Caminhão Vácuo"}).IsRollOff() {
		t.Error("vacuum truck should not be roll-off")
	}
}

package domain

import "testing"

func TestFormatDistanceKm(t *testing.T) {
	tests := map[float64]string{
		0:     "0,0 km",
		12.34: "12,3 km",
		12.36: "12,4 km",
		104:   "104,0 km",
	}
	for km, want := range tests {
		if got := FormatDistanceKm(km); got != want {
			t.Fatalf("FormatDistanceKm(%v) = %q, want %q", km, got, want)
		}
	}
}

func TestFormatDurationMinutes(t *testing.T) {
	tests := map[float64]string{
		0:     "0h 0min",
		59.6:  "1h 0min",
		85:    "1h 25min",
		601.2: "10h 1min",
	}
	for minutes, want := range tests {
		if got := FormatDurationMinutes(minutes); got != want {
			t.Fatalf("FormatDurationMinutes(%v) = %q, want %q", minutes, got, want)
		}
	}
}

func TestEmptyRouteSummary(t *testing.T) {
	s := EmptyRouteSummary()
	if s.Stops == nil || len(s.Stops) != 0 {
		t.Fatalf("expected empty non-nil stops, got %#v", s.Stops)
	}
	if s.Totals != nil || s.BaseDepartureTime != nil {
		t.Fatalf("expected no totals, got %#v", s)
	}
}

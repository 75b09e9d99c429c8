package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RouteTotals aggregates a computed route, including the return leg to the start.
// Revenue and Profit are only set by the operation variant.
type RouteTotals struct {
	DistanceKm      float64
	DurationMinutes float64
	Cost            float64
	Revenue         *float64
	Profit          *float64
}

// DistanceText renders the distance as "12,3 km".
func (t RouteTotals) DistanceText() string {
	return FormatDistanceKm(t.DistanceKm)
}

// DurationText renders the duration as "1h 25min".
func (t RouteTotals) DurationText() string {
	return FormatDurationMinutes(t.DurationMinutes)
}

// RouteSummary is the planned route for a single vehicle and a single day.
// A RouteSummary is produced atomically per optimization call and is not
// persisted by the core. An empty input produces Stops only, with nil
// BaseDepartureTime and Totals.
type RouteSummary struct {
	Stops             []OptimizedStop
	BaseDepartureTime *time.Time
	Totals            *RouteTotals
}

// EmptyRouteSummary is the result for an empty stop set.
func EmptyRouteSummary() *RouteSummary {
	return &RouteSummary{Stops: []OptimizedStop{}}
}

func FormatDistanceKm(km float64) string {
	return strings.Replace(strconv.FormatFloat(km, 'f', 1, 64), ".", ",", 1) + " km"
}

func FormatDurationMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	return fmt.Sprintf("%dh %dmin", total/60, total%60)
}

package domain

import (
	"fmt"
	"strconv"
)

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lng float64 `json:"lng" mapstructure:"lng"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }

// Key renders the coordinates with five decimals (~1m), which is the precision
// used for cache keys.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', 5, 64) + "," + strconv.FormatFloat(c.Lng, 'f', 5, 64)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lng)
}

// PairKey identifies an origin->destination leg.
func PairKey(origin, destination Coordinates) string {
	return origin.Key() + "|" + destination.Key()
}

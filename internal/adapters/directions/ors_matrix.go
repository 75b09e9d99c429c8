package directions

import (
	"context"
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/ports"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrixRow retrieves distance and duration between two points using
// the OpenRouteService matrix endpoint.
func (o *ORSDirectionsProvider) fetchMatrixRow(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	bodyObj := matrixRequest{
		Locations:    [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.postJSON(ctx, endpoint, payload)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return ports.DistanceResult{}, fmt.Errorf(
			"expected 1 source row; got distances=%d durations=%d",
			len(mr.Distances), len(mr.Durations),
		)
	}

	if len(mr.Distances[0]) != 1 || len(mr.Durations[0]) != 1 {
		return ports.DistanceResult{}, fmt.Errorf(
			"expected 1 destination; got distances=%d durations=%d",
			len(mr.Distances[0]), len(mr.Durations[0]),
		)
	}

	metersPtr := mr.Distances[0][0]
	secondsPtr := mr.Durations[0][0]
	if metersPtr == nil || secondsPtr == nil {
		return ports.DistanceResult{}, fmt.Errorf("no route between %s and %s", origin, destination)
	}

	// ORS returns float metrics; round to nearest integer for domain consistency.
	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(*metersPtr)),
		DurationSeconds: int(math.Round(*secondsPtr)),
	}, nil
}

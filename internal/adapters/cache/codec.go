package cache

import (
	"fmt"

	json "github.com/goccy/go-json"

	"logistics-scheduler-service/internal/ports"
)

type cachedResult struct {
	Meters  int `json:"m"`
	Seconds int `json:"s"`
}

func encodeResult(r ports.DistanceResult) ([]byte, error) {
	b, err := json.Marshal(cachedResult{Meters: r.DistanceMeters, Seconds: r.DurationSeconds})
	if err != nil {
		return nil, fmt.Errorf("encode distance result: %w", err)
	}
	return b, nil
}

func decodeResult(b []byte) (ports.DistanceResult, error) {
	var c cachedResult
	if err := json.Unmarshal(b, &c); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode distance result: %w", err)
	}
	return ports.DistanceResult{DistanceMeters: c.Meters, DurationSeconds: c.Seconds}, nil
}

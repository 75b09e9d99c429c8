package directions

import (
	"context"
	"fmt"
	"sync"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockDirectionsProvider answers from a fixed table of coordinate pairs and
// records every lookup. Unknown pairs return an error.
type MockDirectionsProvider struct {
	m     map[string]ports.DistanceResult
	mu    sync.Mutex
	calls []string
}

func NewMockDirectionsProvider(pairs []MockPair) *MockDirectionsProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[domain.PairKey(p.From, p.To)] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDirectionsProvider{m: m}
}

func (p *MockDirectionsProvider) GetDirections(_ context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	key := domain.PairKey(origin, destination)

	p.mu.Lock()
	p.calls = append(p.calls, key)
	p.mu.Unlock()

	r, ok := p.m[key]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %s -> %s", origin, destination)
	}

	return r, nil
}

// Calls returns the pair keys looked up so far, in order.
func (p *MockDirectionsProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

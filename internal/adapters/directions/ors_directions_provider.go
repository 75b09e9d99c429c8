package directions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "driving-hgv"
)

// ORSDirectionsProvider implements DirectionsProvider using the
// OpenRouteService matrix endpoint with a single source and destination.
// External calls are retried with backoff. The provider is safe for
// concurrent use.
type ORSDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	backoff time.Duration
	wait    func(context.Context, time.Duration) error
}

type ORSOptions struct {
	BaseURL string
	Profile string
	Timeout time.Duration
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

func NewORSDirectionsProvider(apiKey string, opts ORSOptions) (*ORSDirectionsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Profile == "" {
		opts.Profile = defaultProfile
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	provider := &ORSDirectionsProvider{
		session: &http.Client{Timeout: opts.Timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		profile: opts.Profile,
		backoff: opts.Backoff,
		wait:    sleepContext,
	}

	return provider, nil
}

func (o *ORSDirectionsProvider) GetDirections(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDirections")(&err)

	if origin.Key() == destination.Key() {
		return ports.DistanceResult{}, nil
	}

	result, err := o.fetchMatrixRow(ctx, origin, destination)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf(
			"get directions %s -> %s: %w",
			origin, destination, err,
		)
	}

	return result, nil
}

package directions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	maxAttempts = 4
	// ORS rate limits are per key and per minute; a longer Retry-After is
	// treated as a quota exhaustion and not waited out.
	maxRetryAfter = 30 * time.Second
)

// orsStatusError is a non-2xx reply from the ORS API.
type orsStatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *orsStatusError) Error() string {
	return fmt.Sprintf("ors status %d: %s", e.Code, e.Body)
}

func (e *orsStatusError) transient() bool {
	switch e.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// postJSON sends payload to endpoint, retrying network errors and transient
// statuses. A Retry-After header on 429/503 replaces the exponential delay.
func (o *ORSDirectionsProvider) postJSON(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	backoff := o.initialBackoff()

	for attempt := 1; ; attempt++ {
		resp, err := o.send(ctx, endpoint, payload)
		if err == nil {
			return resp, nil
		}

		delay, retry := retryDelay(err, backoff)
		if !retry || attempt == maxAttempts {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			return nil, fmt.Errorf("retry in %s exceeds deadline: %w", delay, err)
		}
		if werr := o.wait(ctx, delay); werr != nil {
			return nil, werr
		}
		backoff *= 2
	}
}

func (o *ORSDirectionsProvider) send(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 400 {
		return resp, nil
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	serr := &orsStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	if d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
		serr.RetryAfter = d
	}
	return nil, serr
}

// retryDelay reports whether err is worth another attempt and how long to
// wait before it.
func retryDelay(err error, backoff time.Duration) (time.Duration, bool) {
	var se *orsStatusError
	if errors.As(err, &se) {
		if !se.transient() {
			return 0, false
		}
		if se.RetryAfter > maxRetryAfter {
			return 0, false
		}
		if se.RetryAfter > 0 {
			return se.RetryAfter, true
		}
		return backoff, true
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return backoff, true
	}
	return 0, false
}

// parseRetryAfter accepts both forms of the header: delay-seconds and an
// HTTP date.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o *ORSDirectionsProvider) initialBackoff() time.Duration {
	if o.backoff > 0 {
		return o.backoff
	}
	return 200 * time.Millisecond
}

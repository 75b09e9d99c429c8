package events

import (
	"context"
	"sync"

	"logistics-scheduler-service/internal/ports"
)

// NoopPublisher drops events; used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...ports.Event) error { return nil }

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
	Err    error
}

func (r *RecordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *RecordingPublisher) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.Event(nil), r.events...)
}

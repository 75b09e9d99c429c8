package ports

import "context"

const (
	EventServiceOrderCreated = "service_order.created"
	EventBackupCompleted     = "backup.completed"
	EventBackupFailed        = "backup.failed"
)

// Event is a domain notification keyed by the owning account.
type Event struct {
	Type      string         `json:"type"`
	AccountID string         `json:"accountId"`
	SubjectID string         `json:"subjectId"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Fire-and-forget publication of domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

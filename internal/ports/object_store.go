package ports

import "context"

// Blob storage for backup archives and document attachments.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
}

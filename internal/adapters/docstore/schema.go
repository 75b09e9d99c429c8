package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"logistics-scheduler-service/internal/platform/batch"
	"logistics-scheduler-service/internal/ports"
)

// Initialize the Postgres schema: the document table and the directions cache.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("init schema: pool is nil")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createDocumentsQuery := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		collection_group TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	);
	`

	createGroupIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_documents_group_id
	ON documents (collection_group, id COLLATE "C");
	`

	createDataIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_documents_data
	ON documents USING GIN (data jsonb_path_ops);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		pair_key TEXT PRIMARY KEY,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	statements := []string{
		createDocumentsQuery,
		createGroupIndexQuery,
		createDataIndexQuery,
		createDistanceCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DocumentSeed struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Data       map[string]any `json:"data"`
}

// Populate the store with documents from a JSON file, in commits of at most
// chunkSize writes. Returns the number of documents written.
func SeedFromJSON(ctx context.Context, store ports.DocumentStore, jsonPath string, chunkSize int) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed documents: read %q: %w", jsonPath, err)
	}

	var data []DocumentSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed documents: parse json: %w", err)
	}

	writes := make([]ports.Write, 0, len(data))
	for i, item := range data {
		collection := strings.Trim(strings.TrimSpace(item.Collection), "/")
		if collection == "" {
			return 0, fmt.Errorf("seed documents: item at index %d: collection cannot be empty", i+1)
		}

		id := strings.TrimSpace(item.ID)
		if id == "" || strings.Contains(id, "/") {
			return 0, fmt.Errorf("seed documents: item at index %d: invalid id %q", i+1, item.ID)
		}

		writes = append(writes, ports.SetWrite(collection, id, item.Data))
	}

	if _, err := batch.CommitChunked(ctx, slices.Values(writes), chunkSize, store.Commit); err != nil {
		return 0, fmt.Errorf("seed documents: %w", err)
	}

	return len(writes), nil
}

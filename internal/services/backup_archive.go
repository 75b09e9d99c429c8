package services

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/compress"
	"logistics-scheduler-service/internal/ports"
)

const archiveContentType = "application/zstd"

// BackupSnapshot is the archived form of one backup container.
type BackupSnapshot struct {
	AccountID   string                               `json:"accountId"`
	BackupID    string                               `json:"backupId"`
	CreatedAt   string                               `json:"createdAt"`
	Account     map[string]any                       `json:"account"`
	Collections map[string]map[string]map[string]any `json:"collections"`
}

// DocumentCount is the number of subcollection documents in the snapshot.
func (s BackupSnapshot) DocumentCount() int {
	n := 0
	for _, docs := range s.Collections {
		n += len(docs)
	}
	return n
}

// Archiver writes compressed off-site copies of completed backups.
type Archiver struct {
	store      ports.DocumentStore
	objects    ports.ObjectStore
	compressor compress.Compressor
	prefix     string
	pageSize   int
}

func NewArchiver(store ports.DocumentStore, objects ports.ObjectStore, compressor compress.Compressor, prefix string) *Archiver {
	return &Archiver{
		store:      store,
		objects:    objects,
		compressor: compressor,
		prefix:     prefix,
		pageSize:   500,
	}
}

// Key is {prefix}{accountID}/{backupID}.json.zst.
func (a *Archiver) Key(accountID, backupID string) string {
	return fmt.Sprintf("%s%s/%s.json.zst", a.prefix, accountID, backupID)
}

// Archive reads the backup's copied documents, then uploads them as one
// zstd-compressed JSON object and returns its key.
func (a *Archiver) Archive(ctx context.Context, accountID, backupID, createdAt string) (string, error) {
	snapshot := BackupSnapshot{
		AccountID:   accountID,
		BackupID:    backupID,
		CreatedAt:   createdAt,
		Collections: map[string]map[string]map[string]any{},
	}

	wrapper, err := a.store.Get(ctx, domain.BackupAccountCollection(accountID, backupID), accountID)
	if err != nil {
		return "", fmt.Errorf("archive %s: read account copy: %w", backupID, err)
	}
	snapshot.Account = wrapper.Data

	for _, sub := range domain.BackupSubcollections {
		docs := map[string]map[string]any{}
		for doc, err := range scanCollection(ctx, a.store, domain.BackupDataCollection(accountID, backupID, sub), a.pageSize) {
			if err != nil {
				return "", fmt.Errorf("archive %s: read %s: %w", backupID, sub, err)
			}
			docs[doc.ID] = doc.Data
		}
		if len(docs) > 0 {
			snapshot.Collections[sub] = docs
		}
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("archive %s: encode: %w", backupID, err)
	}

	body, err := a.compressor.Compress(raw)
	if err != nil {
		return "", fmt.Errorf("archive %s: compress: %w", backupID, err)
	}

	key := a.Key(accountID, backupID)
	if err := a.objects.Put(ctx, key, body, archiveContentType); err != nil {
		return "", fmt.Errorf("archive %s: upload: %w", backupID, err)
	}
	return key, nil
}

// Load downloads and decodes an archive written by Archive.
func (a *Archiver) Load(ctx context.Context, key string) (BackupSnapshot, error) {
	body, err := a.objects.Get(ctx, key)
	if err != nil {
		return BackupSnapshot{}, fmt.Errorf("load archive %s: %w", key, err)
	}

	raw, err := a.compressor.Decompress(body)
	if err != nil {
		return BackupSnapshot{}, fmt.Errorf("load archive %s: %w", key, err)
	}

	var snapshot BackupSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return BackupSnapshot{}, fmt.Errorf("load archive %s: decode: %w", key, err)
	}
	return snapshot, nil
}

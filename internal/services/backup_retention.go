package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/batch"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

// CleanupRetention deletes the account's completed backups created more than
// retentionDays ago, with their nested documents and archived objects. It
// returns the number of backups removed; a backup that fails to delete is
// logged and the sweep moves on.
func (s *BackupService) CleanupRetention(ctx context.Context, accountID string, retentionDays int) (removed int, err error) {
	defer obs.Time(ctx, "backup.CleanupRetention")(&err)
	defer func() { s.metrics.IncJobRun(jobRetention, outcome(err)) }()

	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := domain.FormatISO(s.env.Now().AddDate(0, 0, -retentionDays))
	expired, err := s.store.Query(ctx, domain.BackupsCollection(accountID), ports.Query{
		Filters: []ports.Filter{
			{Field: "status", Op: ports.OpEqual, Value: string(domain.BackupStatusCompleted)},
			{Field: "createdAt", Op: ports.OpLessThan, Value: cutoff},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("retention %s: query expired backups: %w", accountID, err)
	}

	var errs []error
	for _, doc := range expired {
		if err := s.deleteBackup(ctx, accountID, doc); err != nil {
			s.metrics.IncJobUnit(jobRetention, "failed")
			s.logger.Error().Err(err).Str("account_id", accountID).Str("backup_id", doc.ID).Msg("deleting expired backup failed")
			errs = append(errs, err)
			continue
		}
		removed++
		s.metrics.IncJobUnit(jobRetention, "deleted")
	}

	if removed > 0 {
		s.logger.Info().Str("account_id", accountID).Int("removed", removed).Str("cutoff", cutoff).Msg("expired backups removed")
	}
	return removed, errors.Join(errs...)
}

func (s *BackupService) deleteBackup(ctx context.Context, accountID string, container ports.Document) error {
	attachments := map[string]struct{}{}
	collect := func(data map[string]any) {
		for _, p := range domain.AttachmentPaths(data) {
			attachments[p] = struct{}{}
		}
	}

	for _, sub := range domain.BackupSubcollections {
		if _, err := s.deleteAll(ctx, domain.BackupDataCollection(accountID, container.ID, sub), collect); err != nil {
			return fmt.Errorf("backup %s: delete %s: %w", container.ID, sub, err)
		}
	}

	if _, err := s.deleteAll(ctx, domain.BackupAccountCollection(accountID, container.ID), collect); err != nil {
		return fmt.Errorf("backup %s: delete account copy: %w", container.ID, err)
	}

	collect(container.Data)
	if err := s.store.Commit(ctx, []ports.Write{ports.DeleteWrite(container.Collection, container.ID)}); err != nil {
		return fmt.Errorf("backup %s: delete container: %w", container.ID, err)
	}

	for p := range attachments {
		if !strings.HasPrefix(p, s.opts.AttachmentPrefix) {
			continue
		}
		if err := s.objects.Delete(ctx, p); err != nil {
			s.logger.Warn().Err(err).Str("backup_id", container.ID).Str("path", p).Msg("deleting backup object failed")
		}
	}
	return nil
}

// deleteAll removes every document in collection page by page, passing each
// document to visit before it is deleted.
func (s *BackupService) deleteAll(ctx context.Context, collection string, visit func(map[string]any)) (int, error) {
	return batch.DeleteByPage(ctx, s.opts.DeletePageSize,
		func(ctx context.Context, after string, limit int) ([]ports.Document, error) {
			return s.store.Query(ctx, collection, ports.Query{StartAfter: after, Limit: limit})
		},
		func(doc ports.Document) string { return doc.ID },
		func(ctx context.Context, page []ports.Document) error {
			writes := make([]ports.Write, 0, len(page))
			for _, doc := range page {
				if visit != nil {
					visit(doc.Data)
				}
				writes = append(writes, ports.DeleteWrite(doc.Collection, doc.ID))
			}
			return s.store.Commit(ctx, writes)
		},
	)
}

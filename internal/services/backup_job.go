package services

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/batch"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

const (
	jobBackup    = "backup"
	jobRetention = "retention"

	accountPageSize = 100
)

type BackupOptions struct {
	ChunkSize              int
	DeletePageSize         int
	DefaultPeriodicityDays int
	AttachmentPrefix       string
	ArchiveEnabled         bool
}

func (o BackupOptions) withDefaults() BackupOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 500
	}
	if o.DeletePageSize <= 0 {
		o.DeletePageSize = 50
	}
	if o.DefaultPeriodicityDays <= 0 {
		o.DefaultPeriodicityDays = domain.DefaultBackupPeriodicityDays
	}
	if o.AttachmentPrefix == "" {
		o.AttachmentPrefix = "backups/"
	}
	return o
}

type BackupReport struct {
	Accounts int `json:"accounts"`
	BackedUp int `json:"backedUp"`
	Failed   int `json:"failed"`
	NotDue   int `json:"notDue"`
	Cleaned  int `json:"cleaned"`
}

// BackupService snapshots account document trees and prunes old snapshots.
type BackupService struct {
	store    ports.DocumentStore
	objects  ports.ObjectStore
	archiver *Archiver
	events   ports.EventPublisher
	env      JobEnv
	opts     BackupOptions
	logger   zerolog.Logger
	metrics  obs.Metrics
}

func NewBackupService(
	store ports.DocumentStore,
	objects ports.ObjectStore,
	archiver *Archiver,
	events ports.EventPublisher,
	env JobEnv,
	opts BackupOptions,
	logger zerolog.Logger,
	metrics obs.Metrics,
) *BackupService {
	if metrics == nil {
		metrics = obs.NoopMetrics{}
	}
	return &BackupService{
		store:    store,
		objects:  objects,
		archiver: archiver,
		events:   events,
		env:      env.withDefaults(),
		opts:     opts.withDefaults(),
		logger:   logger.With().Str("job", jobBackup).Logger(),
		metrics:  metrics,
	}
}

// RunScheduled backs up every account that is due, then applies retention
// for accounts that configure it. A failing account is recorded on its
// container and does not stop the run.
func (s *BackupService) RunScheduled(ctx context.Context) (report BackupReport, err error) {
	defer obs.Time(ctx, "backup.RunScheduled")(&err)
	defer func() { s.metrics.IncJobRun(jobBackup, outcome(err)) }()

	now := s.env.Now()

	for doc, err := range scanCollection(ctx, s.store, domain.AccountsCollection, accountPageSize) {
		if err != nil {
			return report, fmt.Errorf("backup: list accounts: %w", err)
		}
		report.Accounts++

		var account domain.Account
		if err := domain.DecodeDocument(doc.Data, &account); err != nil {
			report.Failed++
			s.metrics.IncJobUnit(jobBackup, "failed")
			s.logger.Error().Err(err).Str("account_id", doc.ID).Msg("unreadable account document")
			continue
		}
		account.ID = doc.ID

		if !account.BackupDue(now, s.opts.DefaultPeriodicityDays, s.env.Location) {
			report.NotDue++
			continue
		}

		if _, err := s.BackupAccount(ctx, account.ID); err != nil {
			report.Failed++
			s.metrics.IncJobUnit(jobBackup, "failed")
			s.logger.Error().Err(err).Str("account_id", account.ID).Msg("account backup failed")
			continue
		}
		report.BackedUp++
		s.metrics.IncJobUnit(jobBackup, "completed")

		if account.BackupRetentionDays > 0 {
			removed, err := s.CleanupRetention(ctx, account.ID, account.BackupRetentionDays)
			report.Cleaned += removed
			if err != nil {
				s.logger.Error().Err(err).Str("account_id", account.ID).Msg("backup retention failed")
			}
		}
	}

	s.logger.Info().
		Int("accounts", report.Accounts).
		Int("backed_up", report.BackedUp).
		Int("failed", report.Failed).
		Int("not_due", report.NotDue).
		Int("cleaned", report.Cleaned).
		Msg("backup run finished")

	return report, nil
}

// BackupAccount copies the account document and its subcollections into a
// new container. The container ends completed, or failed with the error
// recorded; lastBackupDate only moves on completion.
func (s *BackupService) BackupAccount(ctx context.Context, accountID string) (container domain.BackupContainer, err error) {
	defer obs.Time(ctx, "backup.BackupAccount")(&err)

	now := s.env.Now()
	container = domain.BackupContainer{
		ID:        domain.NewBackupID(now),
		AccountID: accountID,
		CreatedAt: domain.FormatISO(now),
		Status:    domain.BackupStatusInProgress,
	}
	logger := s.logger.With().Str("account_id", accountID).Str("backup_id", container.ID).Logger()
	backups := domain.BackupsCollection(accountID)

	err = s.store.Commit(ctx, []ports.Write{ports.SetWrite(backups, container.ID, map[string]any{
		"id":        container.ID,
		"accountId": accountID,
		"createdAt": container.CreatedAt,
		"status":    string(container.Status),
	})})
	if err != nil {
		return container, fmt.Errorf("backup %s: create container: %w", accountID, err)
	}

	copied, err := s.copyAccount(ctx, accountID, container.ID)
	if err != nil {
		container.Status = domain.BackupStatusFailed
		container.Error = err.Error()
		s.markFailed(ctx, logger, container)
		return container, fmt.Errorf("backup %s: %w", accountID, err)
	}
	container.DocumentCount = copied

	if s.opts.ArchiveEnabled && s.archiver != nil {
		key, err := s.archiver.Archive(ctx, accountID, container.ID, container.CreatedAt)
		if err != nil {
			logger.Warn().Err(err).Msg("backup archive upload failed")
		} else {
			container.ArchivePath = key
		}
	}

	container.Status = domain.BackupStatusCompleted
	container.CompletedAt = domain.FormatISO(s.env.Now())

	update := map[string]any{
		"status":        string(container.Status),
		"completedAt":   container.CompletedAt,
		"documentCount": container.DocumentCount,
	}
	if container.ArchivePath != "" {
		update["archivePath"] = container.ArchivePath
	}

	err = s.store.Commit(ctx, []ports.Write{
		ports.MergeWrite(backups, container.ID, update),
		ports.MergeWrite(domain.AccountsCollection, accountID, map[string]any{"lastBackupDate": container.CreatedAt}),
	})
	if err != nil {
		container.Status = domain.BackupStatusFailed
		container.Error = err.Error()
		s.markFailed(ctx, logger, container)
		return container, fmt.Errorf("backup %s: complete: %w", accountID, err)
	}

	s.publish(ctx, logger, ports.EventBackupCompleted, container)
	logger.Info().Int("documents", copied).Msg("backup completed")
	return container, nil
}

func (s *BackupService) markFailed(ctx context.Context, logger zerolog.Logger, container domain.BackupContainer) {
	err := s.store.Commit(ctx, []ports.Write{ports.MergeWrite(
		domain.BackupsCollection(container.AccountID),
		container.ID,
		map[string]any{"status": string(container.Status), "error": container.Error},
	)})
	if err != nil {
		logger.Error().Err(err).Msg("recording backup failure")
	}
	s.publish(ctx, logger, ports.EventBackupFailed, container)
}

func (s *BackupService) publish(ctx context.Context, logger zerolog.Logger, eventType string, container domain.BackupContainer) {
	payload := map[string]any{"status": string(container.Status)}
	if container.Error != "" {
		payload["error"] = container.Error
	}
	err := s.events.Publish(ctx, ports.Event{
		Type:      eventType,
		AccountID: container.AccountID,
		SubjectID: container.ID,
		Payload:   payload,
	})
	if err != nil {
		logger.Warn().Err(err).Str("event", eventType).Msg("publishing backup event failed")
	}
}

// copyAccount writes the account wrapper and every subcollection into the
// backup paths and returns the number of subcollection documents copied.
func (s *BackupService) copyAccount(ctx context.Context, accountID, backupID string) (int, error) {
	account, err := s.store.Get(ctx, domain.AccountsCollection, accountID)
	if err != nil {
		return 0, fmt.Errorf("read account: %w", err)
	}

	err = s.store.Commit(ctx, []ports.Write{
		ports.SetWrite(domain.BackupAccountCollection(accountID, backupID), accountID, account.Data),
	})
	if err != nil {
		return 0, fmt.Errorf("copy account document: %w", err)
	}

	total := 0
	for _, sub := range domain.BackupSubcollections {
		n, err := s.copyCollection(ctx,
			domain.AccountCollection(accountID, sub),
			domain.BackupDataCollection(accountID, backupID, sub),
		)
		total += n
		if err != nil {
			return total, fmt.Errorf("copy %s: %w", sub, err)
		}
	}
	return total, nil
}

// copyCollection copies every document from src into dst in chunked
// commits and returns the number of documents written.
func (s *BackupService) copyCollection(ctx context.Context, src, dst string) (int, error) {
	var scanErr error
	copied := 0

	writes := func(yield func(ports.Write) bool) {
		for doc, err := range scanCollection(ctx, s.store, src, s.opts.ChunkSize) {
			if err != nil {
				scanErr = err
				return
			}
			if !yield(ports.SetWrite(dst, doc.ID, doc.Data)) {
				return
			}
		}
	}

	_, err := batch.CommitChunked(ctx, iter.Seq[ports.Write](writes), s.opts.ChunkSize,
		func(ctx context.Context, chunk []ports.Write) error {
			if err := s.store.Commit(ctx, chunk); err != nil {
				return err
			}
			copied += len(chunk)
			return nil
		})
	return copied, errors.Join(err, scanErr)
}

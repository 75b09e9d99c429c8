package services

import (
	"context"
	"errors"
	"fmt"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

// Fields that describe the backup schedule rather than account data; a
// restore leaves the live values alone.
var restoreExcludedFields = []string{"lastBackupDate", "backupPeriodicityDays", "backupRetentionDays"}

type RestoreReport struct {
	Deleted  int `json:"deleted"`
	Restored int `json:"restored"`
}

// RestoreBackup replaces the account's live subcollections with the copies
// held by a completed backup and merges the saved account document back.
func (s *BackupService) RestoreBackup(ctx context.Context, accountID, backupID string) (report RestoreReport, err error) {
	defer obs.Time(ctx, "backup.RestoreBackup")(&err)

	doc, err := s.store.Get(ctx, domain.BackupsCollection(accountID), backupID)
	if err != nil {
		return report, fmt.Errorf("restore %s/%s: %w", accountID, backupID, err)
	}

	var container domain.BackupContainer
	if err := domain.DecodeDocument(doc.Data, &container); err != nil {
		return report, fmt.Errorf("restore %s/%s: %w", accountID, backupID, err)
	}
	if !container.Restorable() {
		return report, fmt.Errorf("restore %s/%s: status %q: %w", accountID, backupID, container.Status, ErrBackupNotRestorable)
	}

	wrapper, err := s.store.Get(ctx, domain.BackupAccountCollection(accountID, backupID), accountID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return report, fmt.Errorf("restore %s/%s: account copy missing: %w", accountID, backupID, ErrBackupNotRestorable)
	}
	if err != nil {
		return report, fmt.Errorf("restore %s/%s: %w", accountID, backupID, err)
	}

	logger := s.logger.With().Str("account_id", accountID).Str("backup_id", backupID).Logger()

	for _, sub := range domain.BackupSubcollections {
		live := domain.AccountCollection(accountID, sub)

		deleted, err := s.deleteAll(ctx, live, nil)
		report.Deleted += deleted
		if err != nil {
			return report, fmt.Errorf("restore %s/%s: clear %s: %w", accountID, backupID, sub, err)
		}

		restored, err := s.copyCollection(ctx, domain.BackupDataCollection(accountID, backupID, sub), live)
		report.Restored += restored
		if err != nil {
			return report, fmt.Errorf("restore %s/%s: copy %s: %w", accountID, backupID, sub, err)
		}
	}

	account := domain.CloneData(wrapper.Data)
	for _, f := range restoreExcludedFields {
		delete(account, f)
	}
	if len(account) > 0 {
		err = s.store.Commit(ctx, []ports.Write{ports.MergeWrite(domain.AccountsCollection, accountID, account)})
		if err != nil {
			return report, fmt.Errorf("restore %s/%s: account document: %w", accountID, backupID, err)
		}
	}

	logger.Info().Int("deleted", report.Deleted).Int("restored", report.Restored).Msg("backup restored")
	return report, nil
}

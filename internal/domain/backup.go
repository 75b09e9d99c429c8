package domain

import (
	"strconv"
	"time"
)

type BackupStatus string

const (
	BackupStatusInProgress BackupStatus = "in-progress"
	BackupStatusCompleted  BackupStatus = "completed"
	BackupStatusFailed     BackupStatus = "failed"
)

// BackupContainer groups the copies of an account's collections taken at one
// point in time. A failed container may hold partial data and is never
// restorable.
type BackupContainer struct {
	ID            string       `mapstructure:"id"`
	AccountID     string       `mapstructure:"accountId"`
	CreatedAt     string       `mapstructure:"createdAt"`
	CompletedAt   string       `mapstructure:"completedAt"`
	Status        BackupStatus `mapstructure:"status"`
	Error         string       `mapstructure:"error"`
	DocumentCount int          `mapstructure:"documentCount"`
	ArchivePath   string       `mapstructure:"archivePath"`
}

// NewBackupID returns "backup-<unix millis>".
func NewBackupID(now time.Time) string {
	return "backup-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// Restorable reports whether the container holds a complete copy.
func (b BackupContainer) Restorable() bool {
	return b.Status == BackupStatusCompleted
}

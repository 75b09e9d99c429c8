package domain

import (
	"math"
	"time"
)

const DefaultBackupPeriodicityDays = 7

// Account is the tenant document. Only the fields the scheduled jobs and the
// cost model read are mapped here.
type Account struct {
	ID                    string    `mapstructure:"id"`
	Name                  string    `mapstructure:"name"`
	BackupPeriodicityDays int       `mapstructure:"backupPeriodicityDays"`
	BackupRetentionDays   int       `mapstructure:"backupRetentionDays"`
	LastBackupDate        string    `mapstructure:"lastBackupDate"`
	OperationalCosts      CostRates `mapstructure:"operationalCosts"`
}

// PeriodicityDays is the configured backup interval, or fallback when unset.
func (a Account) PeriodicityDays(fallback int) int {
	if a.BackupPeriodicityDays > 0 {
		return a.BackupPeriodicityDays
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultBackupPeriodicityDays
}

// BackupDue reports whether a backup should run at now: always when the
// account has never been backed up (or the stamp is unreadable), otherwise
// once the whole days elapsed reach the periodicity.
func (a Account) BackupDue(now time.Time, fallbackDays int, loc *time.Location) bool {
	if a.LastBackupDate == "" {
		return true
	}

	last, err := ParseISO(a.LastBackupDate, loc)
	if err != nil {
		return true
	}

	elapsed := math.Floor(now.Sub(last).Hours() / 24)
	return elapsed >= float64(a.PeriodicityDays(fallbackDays))
}

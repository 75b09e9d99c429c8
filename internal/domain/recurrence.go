package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type RecurrenceType string

const (
	RecurrenceTypeRental    RecurrenceType = "rental"
	RecurrenceTypeOperation RecurrenceType = "operation"
)

type RecurrenceStatus string

const (
	RecurrenceStatusActive    RecurrenceStatus = "active"
	RecurrenceStatusCancelled RecurrenceStatus = "cancelled"
	RecurrenceStatusCompleted RecurrenceStatus = "completed"
)

type BillingType string

const (
	BillingTypePerService BillingType = "per_service"
	BillingTypeMonthly    BillingType = "monthly"
)

// RecurrenceProfile is a saved weekly template that generates service orders.
// Only the scheduler mutates NextRunDate, LastRunDate and Status.
type RecurrenceProfile struct {
	ID           string           `mapstructure:"id"`
	AccountID    string           `mapstructure:"accountId"`
	Type         RecurrenceType   `mapstructure:"type"`
	Frequency    string           `mapstructure:"frequency"`
	DaysOfWeek   []int            `mapstructure:"daysOfWeek"`
	Time         string           `mapstructure:"time"`
	EndDate      string           `mapstructure:"endDate"`
	BillingType  string           `mapstructure:"billingType"`
	Status       RecurrenceStatus `mapstructure:"status"`
	NextRunDate  string           `mapstructure:"nextRunDate"`
	LastRunDate  string           `mapstructure:"lastRunDate"`
	TemplateData map[string]any   `mapstructure:"templateData"`
}

// OrderBillingType maps the profile billing type onto generated orders:
// "monthly" is kept, anything else bills per service.
func (p RecurrenceProfile) OrderBillingType() BillingType {
	if p.BillingType == string(BillingTypeMonthly) {
		return BillingTypeMonthly
	}
	return BillingTypePerService
}

// OrderCollection is the per-account collection generated orders go to.
func (p RecurrenceProfile) OrderCollection() (string, error) {
	switch p.Type {
	case RecurrenceTypeRental:
		return RentalsCollection, nil
	case RecurrenceTypeOperation:
		return OperationsCollection, nil
	default:
		return "", fmt.Errorf("recurrence profile %s: unknown type %q", p.ID, p.Type)
	}
}

// NextRun picks the earliest configured weekday strictly after now's weekday,
// wrapping to the earliest weekday of next week, at the profile's time in loc.
func (p RecurrenceProfile) NextRun(now time.Time, loc *time.Location) (time.Time, error) {
	if len(p.DaysOfWeek) == 0 {
		return time.Time{}, errors.New("next run: profile has no days of week")
	}

	hour, minute, err := ParseClock(p.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("next run: %w", err)
	}

	days := slices.Clone(p.DaysOfWeek)
	slices.Sort(days)
	for _, d := range days {
		if d < 0 || d > 6 {
			return time.Time{}, fmt.Errorf("next run: invalid weekday %d", d)
		}
	}

	local := now.In(loc)
	today := int(local.Weekday())

	delta := days[0] + 7 - today
	for _, d := range days {
		if d > today {
			delta = d - today
			break
		}
	}

	return AtClock(local.AddDate(0, 0, delta), hour, minute, loc), nil
}

// EndsBefore reports whether the profile's end date is earlier than next.
// An unreadable end date never ends the profile.
func (p RecurrenceProfile) EndsBefore(next time.Time, loc *time.Location) bool {
	if p.EndDate == "" {
		return false
	}
	end, err := ParseISO(p.EndDate, loc)
	if err != nil {
		return false
	}
	return end.Before(next)
}

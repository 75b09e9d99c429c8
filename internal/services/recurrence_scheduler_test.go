package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-scheduler-service/internal/adapters/docstore"
	"logistics-scheduler-service/internal/adapters/events"
	"logistics-scheduler-service/internal/ports"
)

const profiles = "accounts/a1/recurrence_profiles"

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func recurrenceEnv(t *testing.T, now time.Time) JobEnv {
	t.Helper()
	n := 0
	return JobEnv{
		Location: saoPaulo(t),
		Now:      func() time.Time { return now },
		NewID: func() string {
			n++
			return fmt.Sprintf("order-%d", n)
		},
	}
}

// Thursday 2026-10-15 10:00 in São Paulo (13:00Z).
func thursdayMorning(t *testing.T) time.Time {
	return time.Date(2026, 10, 15, 10, 0, 0, 0, saoPaulo(t))
}

func rentalProfile() map[string]any {
	return map[string]any{
		"accountId":   "a1",
		"type":        "rental",
		"frequency":   "weekly",
		"daysOfWeek":  []any{1, 3, 5},
		"time":        "08:00",
		"billingType": "monthly",
		"status":      "active",
		"nextRunDate": "2026-10-15T11:00:00.000Z",
		"templateData": map[string]any{
			"clientId":   "c1",
			"value":      350.0,
			"returnDate": "2026-10-20",
			"items":      []any{map[string]any{"dumpsterId": "d1"}},
		},
	}
}

func newScheduler(t *testing.T, store ports.DocumentStore, pub ports.EventPublisher) *RecurrenceScheduler {
	t.Helper()
	return NewRecurrenceScheduler(store, pub, recurrenceEnv(t, thursdayMorning(t)), zerolog.Nop(), nil)
}

func TestRecurrenceScheduler_CreatesRentalAndAdvancesProfile(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(profiles, "p1", rentalProfile())
	pub := &events.RecordingPublisher{}

	report, err := newScheduler(t, store, pub).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecurrenceReport{Due: 1, Created: 1}, report)
	assert.Equal(t, 1, store.Commits())

	order, err := store.Get(context.Background(), "accounts/a1/rentals", "order-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15T11:00:00.000Z", order.Data["rentalDate"])
	assert.Equal(t, "2026-10-20", order.Data["returnDate"])
	assert.Equal(t, "p1", order.Data["recurrenceProfileId"])
	assert.Equal(t, "monthly", order.Data["billingType"])
	assert.Equal(t, "2026-10-15T13:00:00.000Z", order.Data["createdAt"])
	assert.Equal(t, "c1", order.Data["clientId"])

	profile, err := store.Get(context.Background(), profiles, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16T11:00:00.000Z", profile.Data["nextRunDate"])
	assert.Equal(t, "2026-10-15T13:00:00.000Z", profile.Data["lastRunDate"])
	assert.Equal(t, "active", profile.Data["status"])

	template := profile.Data["templateData"].(map[string]any)
	_, stamped := template["rentalDate"]
	assert.False(t, stamped, "template must not be mutated")

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, ports.EventServiceOrderCreated, published[0].Type)
	assert.Equal(t, "a1", published[0].AccountID)
	assert.Equal(t, "order-1", published[0].SubjectID)
}

func TestRecurrenceScheduler_OperationCarriesTemplateDuration(t *testing.T) {
	store := docstore.NewMemoryStore()
	p := rentalProfile()
	p["type"] = "operation"
	p["billingType"] = "whatever"
	p["templateData"] = map[string]any{
		"startDate": "2026-10-01T11:00:00.000Z",
		"endDate":   "2026-10-01T13:30:00.000Z",
		"truckId":   "t1",
	}
	store.Seed(profiles, "p1", p)

	_, err := newScheduler(t, store, events.NoopPublisher{}).Run(context.Background())
	require.NoError(t, err)

	order, err := store.Get(context.Background(), "accounts/a1/operations", "order-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15T11:00:00.000Z", order.Data["startDate"])
	assert.Equal(t, "2026-10-15T13:30:00.000Z", order.Data["endDate"])
	assert.Equal(t, "per_service", order.Data["billingType"])
}

func TestRecurrenceScheduler_OperationWithoutTemplateWindow(t *testing.T) {
	store := docstore.NewMemoryStore()
	p := rentalProfile()
	p["type"] = "operation"
	p["templateData"] = map[string]any{"truckId": "t1"}
	store.Seed(profiles, "p1", p)

	_, err := newScheduler(t, store, events.NoopPublisher{}).Run(context.Background())
	require.NoError(t, err)

	order, err := store.Get(context.Background(), "accounts/a1/operations", "order-1")
	require.NoError(t, err)
	assert.Equal(t, order.Data["startDate"], order.Data["endDate"])
}

func TestRecurrenceScheduler_CompletesProfilePastEndDate(t *testing.T) {
	store := docstore.NewMemoryStore()
	p := rentalProfile()
	p["endDate"] = "2026-10-15"
	store.Seed(profiles, "p1", p)

	sched := newScheduler(t, store, events.NoopPublisher{})
	report, err := sched.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Completed)

	profile, err := store.Get(context.Background(), profiles, "p1")
	require.NoError(t, err)
	assert.Equal(t, "completed", profile.Data["status"])

	later := NewRecurrenceScheduler(store, events.NoopPublisher{},
		recurrenceEnv(t, thursdayMorning(t).AddDate(0, 0, 7)), zerolog.Nop(), nil)
	report, err = later.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Due)
	assert.Equal(t, 1, store.Count("accounts/a1/rentals"))
}

func TestRecurrenceScheduler_SkipsMalformedProfiles(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(profiles, "p1", rentalProfile())

	orphan := rentalProfile()
	delete(orphan, "accountId")
	store.Seed(profiles, "p2", orphan)

	unknown := rentalProfile()
	unknown["type"] = "subscription"
	store.Seed(profiles, "p3", unknown)

	report, err := newScheduler(t, store, events.NoopPublisher{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecurrenceReport{Due: 3, Created: 1, Skipped: 1, Failed: 1}, report)
	assert.Equal(t, 1, store.Count("accounts/a1/rentals"))

	orphanDoc, err := store.Get(context.Background(), profiles, "p2")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15T11:00:00.000Z", orphanDoc.Data["nextRunDate"])
}

func TestRecurrenceScheduler_IgnoresProfilesNotDue(t *testing.T) {
	store := docstore.NewMemoryStore()

	future := rentalProfile()
	future["nextRunDate"] = "2026-10-16T11:00:00.000Z"
	store.Seed(profiles, "p1", future)

	cancelled := rentalProfile()
	cancelled["status"] = "cancelled"
	store.Seed(profiles, "p2", cancelled)

	report, err := newScheduler(t, store, events.NoopPublisher{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecurrenceReport{}, report)
	assert.Zero(t, store.Commits())
}

// staleStore replays a profile snapshot taken before another run advanced it.
type staleStore struct {
	*docstore.MemoryStore
	snapshot []ports.Document
}

func (s staleStore) QueryGroup(context.Context, string, ports.Query) ([]ports.Document, error) {
	return s.snapshot, nil
}

func TestRecurrenceScheduler_OverlappingRunSkipsAdvancedProfile(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(profiles, "p1", rentalProfile())

	snapshot, err := store.QueryGroup(context.Background(), "recurrence_profiles", ports.Query{})
	require.NoError(t, err)

	_, err = newScheduler(t, store, events.NoopPublisher{}).Run(context.Background())
	require.NoError(t, err)

	report, err := newScheduler(t, staleStore{store, snapshot}, events.NoopPublisher{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecurrenceReport{Due: 1, Skipped: 1}, report)
	assert.Equal(t, 1, store.Count("accounts/a1/rentals"))

	profile, err := store.Get(context.Background(), profiles, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16T11:00:00.000Z", profile.Data["nextRunDate"])
}

// cancelAfterQuery cancels one profile between the due query and the commit,
// as an admin acting during a run would.
type cancelAfterQuery struct {
	*docstore.MemoryStore
	profileID string
}

func (s cancelAfterQuery) QueryGroup(ctx context.Context, group string, q ports.Query) ([]ports.Document, error) {
	docs, err := s.MemoryStore.QueryGroup(ctx, group, q)
	if err != nil {
		return nil, err
	}
	cancel := ports.MergeWrite(profiles, s.profileID, map[string]any{"status": "cancelled"})
	return docs, s.MemoryStore.Commit(ctx, []ports.Write{cancel})
}

func TestRecurrenceScheduler_ProfileCancelledMidRunDoesNotBlockOthers(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(profiles, "p1", rentalProfile())
	store.Seed(profiles, "p2", rentalProfile())
	pub := &events.RecordingPublisher{}

	report, err := newScheduler(t, cancelAfterQuery{store, "p2"}, pub).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecurrenceReport{Due: 2, Created: 1, Skipped: 1}, report)

	assert.Equal(t, 1, store.Count("accounts/a1/rentals"))
	order, err := store.Get(context.Background(), "accounts/a1/rentals", "order-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", order.Data["recurrenceProfileId"])

	p1, err := store.Get(context.Background(), profiles, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16T11:00:00.000Z", p1.Data["nextRunDate"])

	p2, err := store.Get(context.Background(), profiles, "p2")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", p2.Data["status"])
	assert.Equal(t, "2026-10-15T11:00:00.000Z", p2.Data["nextRunDate"])
	_, ran := p2.Data["lastRunDate"]
	assert.False(t, ran)

	published := pub.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "order-1", published[0].SubjectID)
}

func TestRecurrenceScheduler_CommitFailureFailsRun(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(profiles, "p1", rentalProfile())
	store.CommitHook = func([]ports.Write) error { return errors.New("deadline exceeded") }

	_, err := newScheduler(t, store, events.NoopPublisher{}).Run(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrPreconditionFailed))
	assert.Zero(t, store.Count("accounts/a1/rentals"))
}

func TestRecurrenceScheduler_PublishFailureDoesNotFailRun(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Seed(profiles, "p1", rentalProfile())
	pub := &events.RecordingPublisher{Err: errors.New("broker down")}

	report, err := newScheduler(t, store, pub).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, store.Count("accounts/a1/rentals"))
}

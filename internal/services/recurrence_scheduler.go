package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

const jobRecurrence = "recurrence"

var errSkipProfile = errors.New("profile skipped")

// Clock and ID source shared by the scheduled jobs.
type JobEnv struct {
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

func (e JobEnv) withDefaults() JobEnv {
	if e.Location == nil {
		e.Location = time.UTC
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.NewID == nil {
		e.NewID = uuid.NewString
	}
	return e
}

type RecurrenceReport struct {
	Due       int `json:"due"`
	Created   int `json:"created"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// RecurrenceScheduler materializes service orders from due weekly profiles.
type RecurrenceScheduler struct {
	store   ports.DocumentStore
	events  ports.EventPublisher
	env     JobEnv
	logger  zerolog.Logger
	metrics obs.Metrics
}

func NewRecurrenceScheduler(
	store ports.DocumentStore,
	events ports.EventPublisher,
	env JobEnv,
	logger zerolog.Logger,
	metrics obs.Metrics,
) *RecurrenceScheduler {
	if metrics == nil {
		metrics = obs.NoopMetrics{}
	}
	return &RecurrenceScheduler{
		store:   store,
		events:  events,
		env:     env.withDefaults(),
		logger:  logger.With().Str("job", jobRecurrence).Logger(),
		metrics: metrics,
	}
}

// preparedRun holds the buffered writes for one profile.
type preparedRun struct {
	profile   ports.Document
	writes    []ports.Write
	event     ports.Event
	completes bool
}

// Run processes every active profile whose nextRunDate is not after now.
// Writes for all profiles go out in a single commit; a profile that cannot
// be prepared is logged and left out of it. A profile whose precondition
// fails at commit time (advanced by an overlapping run, cancelled or edited
// since the query) is dropped and the rest are committed again.
func (s *RecurrenceScheduler) Run(ctx context.Context) (report RecurrenceReport, err error) {
	defer obs.Time(ctx, "recurrence.Run")(&err)
	defer func() { s.metrics.IncJobRun(jobRecurrence, outcome(err)) }()

	now := s.env.Now()

	docs, err := s.store.QueryGroup(ctx, domain.RecurrenceProfilesCollection, ports.Query{
		Filters: []ports.Filter{
			{Field: "status", Op: ports.OpEqual, Value: string(domain.RecurrenceStatusActive)},
			{Field: "nextRunDate", Op: ports.OpLessThanOrEqual, Value: domain.FormatISO(now)},
		},
	})
	if err != nil {
		return report, fmt.Errorf("recurrence: query due profiles: %w", err)
	}

	var runs []preparedRun
	for _, doc := range docs {
		report.Due++

		run, err := s.prepare(doc, now)
		if errors.Is(err, errSkipProfile) {
			report.Skipped++
			s.metrics.IncJobUnit(jobRecurrence, "skipped")
			s.logger.Warn().Str("profile_id", doc.ID).Str("collection", doc.Collection).Msg("skipping recurrence profile without account")
			continue
		}
		if err != nil {
			report.Failed++
			s.metrics.IncJobUnit(jobRecurrence, "failed")
			s.logger.Error().Err(err).Str("profile_id", doc.ID).Msg("recurrence profile failed")
			continue
		}
		runs = append(runs, run)
	}

	runs, err = s.commitRuns(ctx, runs, &report)
	if err != nil {
		return report, err
	}

	events := make([]ports.Event, 0, len(runs))
	for _, run := range runs {
		events = append(events, run.event)
		if run.completes {
			report.Completed++
		}
		s.metrics.IncJobUnit(jobRecurrence, "created")
	}
	report.Created = len(runs)

	if len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn().Err(err).Int("events", len(events)).Msg("publishing service order events failed")
		}
	}

	s.logger.Info().
		Int("due", report.Due).
		Int("created", report.Created).
		Int("completed", report.Completed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("recurrence run finished")

	return report, nil
}

// commitRuns commits the runs atomically, dropping each run whose profile
// precondition is rejected until the remainder goes through. It returns the
// runs that were committed.
func (s *RecurrenceScheduler) commitRuns(ctx context.Context, runs []preparedRun, report *RecurrenceReport) ([]preparedRun, error) {
	for len(runs) > 0 {
		var writes []ports.Write
		for _, run := range runs {
			writes = append(writes, run.writes...)
		}

		err := s.store.Commit(ctx, writes)
		if err == nil {
			return runs, nil
		}

		var pe *ports.PreconditionError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("recurrence: commit %d writes: %w", len(writes), err)
		}
		i := slices.IndexFunc(runs, func(r preparedRun) bool {
			return r.profile.Collection == pe.Collection && r.profile.ID == pe.ID
		})
		if i < 0 {
			return nil, fmt.Errorf("recurrence: commit %d writes: %w", len(writes), err)
		}

		report.Skipped++
		s.metrics.IncJobUnit(jobRecurrence, "skipped")
		s.logger.Warn().
			Str("profile_id", pe.ID).
			Str("collection", pe.Collection).
			Msg("recurrence profile changed since it was read; skipping")

		runs = slices.Delete(runs, i, i+1)
	}
	return nil, nil
}

func (s *RecurrenceScheduler) prepare(doc ports.Document, now time.Time) (preparedRun, error) {
	var p domain.RecurrenceProfile
	if err := domain.DecodeDocument(doc.Data, &p); err != nil {
		return preparedRun{}, err
	}
	p.ID = doc.ID

	if p.AccountID == "" {
		return preparedRun{}, errSkipProfile
	}

	collection, err := p.OrderCollection()
	if err != nil {
		return preparedRun{}, err
	}

	order := domain.CloneData(p.TemplateData)
	if order == nil {
		order = map[string]any{}
	}
	order["createdAt"] = domain.FormatISO(now)
	order["recurrenceProfileId"] = p.ID
	order["billingType"] = string(p.OrderBillingType())

	switch p.Type {
	case domain.RecurrenceTypeRental:
		order["rentalDate"] = p.NextRunDate
	case domain.RecurrenceTypeOperation:
		order["startDate"] = p.NextRunDate
		order["endDate"] = carryEndDate(p.TemplateData, p.NextRunDate, s.env.Location)
	}

	next, err := p.NextRun(now, s.env.Location)
	if err != nil {
		return preparedRun{}, err
	}

	update := map[string]any{
		"lastRunDate": domain.FormatISO(now),
		"nextRunDate": domain.FormatISO(next),
	}
	completes := p.EndsBefore(next, s.env.Location)
	if completes {
		update["status"] = string(domain.RecurrenceStatusCompleted)
	}

	profileUpdate := ports.MergeWrite(doc.Collection, doc.ID, update)
	profileUpdate.Precondition = map[string]any{
		"nextRunDate": p.NextRunDate,
		"status":      string(domain.RecurrenceStatusActive),
	}

	orderID := s.env.NewID()

	return preparedRun{
		writes: []ports.Write{
			ports.SetWrite(domain.AccountCollection(p.AccountID, collection), orderID, order),
			profileUpdate,
		},
		event: ports.Event{
			Type:      ports.EventServiceOrderCreated,
			AccountID: p.AccountID,
			SubjectID: orderID,
			Payload: map[string]any{
				"collection":          collection,
				"recurrenceProfileId": p.ID,
			},
		},
		completes: completes,
		profile:   doc,
	}, nil
}

// carryEndDate applies the template's start->end duration to newStart. An
// unreadable or negative duration yields newStart itself.
func carryEndDate(template map[string]any, newStart string, loc *time.Location) string {
	startRaw, _ := template["startDate"].(string)
	endRaw, _ := template["endDate"].(string)

	start, err := domain.ParseISO(startRaw, loc)
	if err != nil {
		return newStart
	}
	end, err := domain.ParseISO(endRaw, loc)
	if err != nil {
		return newStart
	}
	duration := end.Sub(start)
	if duration < 0 {
		return newStart
	}

	base, err := domain.ParseISO(newStart, loc)
	if err != nil {
		return newStart
	}
	return domain.FormatISO(base.Add(duration))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Package scheduler periodically evaluates time-based automation rules
// against entity snapshots.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/dukex/leadflow/pkg/workflow"
	"github.com/robfig/cron/v3"
)

// SweepReport summarizes one sweep.
type SweepReport struct {
	Entities   int
	Skipped    int
	FiredRules int
	Actions    int
}

// Sweeper runs a time-based rule sweep on a cron schedule.
type Sweeper struct {
	persistence persistence.Persistence
	source      EntitySource
	automation  *services.Automation
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu       sync.Mutex
	schedule *models.SweepSchedule
	cron     *cron.Cron
	started  bool
}

func NewSweeper(
	p persistence.Persistence,
	source EntitySource,
	automation *services.Automation,
	expression string,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Sweeper, error) {
	schedule, err := models.NewSweepSchedule(expression, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		persistence: p,
		source:      source,
		automation:  automation,
		metrics:     m,
		logger:      logger.With("module", "sweeper", "schedule", expression),
		schedule:    schedule,
	}, nil
}

// Start registers the sweep job and starts the cron runner. Runs never overlap.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	schedule, err := models.ParseSweepExpression(s.schedule.Expression)
	if err != nil {
		return err
	}

	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug))

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Sweep failed", "error", err)
		}
	}))
	s.cron.Start()
	s.started = true

	s.logger.InfoContext(ctx, "Sweeper started", "next_due_at", s.schedule.NextDueAt)

	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()

		return nil
	}

	runner := s.cron
	s.started = false
	s.mu.Unlock()

	// A running sweep takes mu when it finishes, so wait unlocked.
	select {
	case <-runner.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Sweeper stopped")

	return nil
}

// Schedule returns a copy of the sweep schedule state.
func (s *Sweeper) Schedule() models.SweepSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.schedule
}

// Sweep evaluates the time_based rules of every record's current status once.
// Entity types without time_based rules are not read.
func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	started := time.Now()

	statuses, err := s.persistence.StatusRepository().GetAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list statuses: %w", err)
	}

	for _, entityType := range entityTypesWithTimedRules(statuses) {
		records, err := s.source.Records(ctx, entityType)
		if err != nil {
			return report, fmt.Errorf("failed to read %s records: %w", entityType, err)
		}

		for _, record := range records {
			report.Entities++

			statusID := record.StatusID
			if statusID == "" {
				statusID, err = s.automation.CurrentStatus(ctx, entityType, record.ID)
				if err != nil {
					s.logger.DebugContext(ctx, "Skipping record without status", "entity_type", entityType, "entity_id", record.ID, "error", err)
					report.Skipped++

					continue
				}
			}

			status, ok := workflow.StatusByID(statusID, statuses)
			if !ok {
				report.Skipped++

				continue
			}

			resolution := s.automation.Fire(ctx, status, models.TriggerTimeBased, services.EntityEvent{
				EntityType: entityType,
				EntityID:   record.ID,
				StatusID:   statusID,
				Entity:     record.Fields,
			})

			report.FiredRules += len(resolution.FiredRules)
			report.Actions += len(resolution.Actions)
		}
	}

	s.metrics.SweepFinished(time.Since(started), report.Entities)

	s.mu.Lock()
	err = s.schedule.Advance(time.Now().UTC())
	next := s.schedule.NextDueAt
	s.mu.Unlock()

	if err != nil {
		return report, err
	}

	s.logger.InfoContext(ctx, "Sweep finished",
		"entities", report.Entities,
		"skipped", report.Skipped,
		"fired_rules", report.FiredRules,
		"actions", report.Actions,
		"next_due_at", next,
	)

	return report, nil
}

func entityTypesWithTimedRules(statuses []models.WorkflowStatus) []models.EntityType {
	var types []models.EntityType

	seen := make(map[models.EntityType]bool)

	for _, status := range statuses {
		if seen[status.EntityType] {
			continue
		}

		for _, rule := range status.AutomationRules {
			if rule.IsActive && rule.Trigger == models.TriggerTimeBased {
				seen[status.EntityType] = true
				types = append(types, status.EntityType)

				break
			}
		}
	}

	return types
}

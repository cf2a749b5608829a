package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when a sweep expression cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

var sweepParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// SweepSchedule tracks when time-based rules are next evaluated.
// Expression is a 5-field cron expression or a descriptor such as "@every 15m".
type SweepSchedule struct {
	Expression string    `json:"expression" validate:"required"`
	NextDueAt  time.Time `json:"nextDueAt"`
	LastRunAt  time.Time `json:"lastRunAt,omitzero"`
}

// ParseSweepExpression parses expression with the parser used by the sweeper.
// nolint:ireturn
func ParseSweepExpression(expression string) (cron.Schedule, error) {
	if expression == "" {
		return nil, ErrInvalidSchedule
	}

	schedule, err := sweepParser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, expression, err)
	}

	return schedule, nil
}

func NewSweepSchedule(expression string, now time.Time) (*SweepSchedule, error) {
	s := &SweepSchedule{Expression: expression}
	if err := s.calculateNextDueAt(now); err != nil {
		return nil, err
	}

	return s, nil
}

// Advance records a run at now and computes the following due time.
func (s *SweepSchedule) Advance(now time.Time) error {
	s.LastRunAt = now

	return s.calculateNextDueAt(now)
}

func (s *SweepSchedule) calculateNextDueAt(referenceTime time.Time) error {
	schedule, err := ParseSweepExpression(s.Expression)
	if err != nil {
		return err
	}

	s.NextDueAt = schedule.Next(referenceTime)

	return nil
}

// IsDue checks if the sweep is due at the given time.
func (s *SweepSchedule) IsDue(now time.Time) bool {
	return !s.NextDueAt.After(now)
}

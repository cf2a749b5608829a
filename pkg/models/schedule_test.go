package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepSchedule(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 7, 0, 0, time.UTC)

	s, err := NewSweepSchedule("*/15 * * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC), s.NextDueAt)
	assert.False(t, s.IsDue(now))
	assert.True(t, s.IsDue(s.NextDueAt))

	require.NoError(t, s.Advance(s.NextDueAt))
	assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), s.NextDueAt)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC), s.LastRunAt)
}

func TestSweepSchedule_Descriptor(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s, err := NewSweepSchedule("@every 1h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), s.NextDueAt)
}

func TestParseSweepExpression_Invalid(t *testing.T) {
	for _, expr := range []string{"", "every day", "61 * * * *"} {
		_, err := ParseSweepExpression(expr)
		assert.ErrorIs(t, err, ErrInvalidSchedule, expr)
	}
}

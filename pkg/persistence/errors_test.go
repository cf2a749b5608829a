package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		statusErr := persistence.NewStatusError("GetByID", "lead-new", persistence.ErrStatusNotFound)
		ruleErr := persistence.NewAssignmentRuleError("Delete", "assign-cce", persistence.ErrAssignmentRuleNotFound)

		assert.True(t, persistence.IsStatusNotFound(statusErr))
		assert.False(t, persistence.IsAssignmentRuleNotFound(statusErr))
		assert.True(t, persistence.IsAssignmentRuleNotFound(ruleErr))
		assert.True(t, persistence.IsHistoryNotFound(fmt.Errorf("lookup: %w", persistence.ErrHistoryNotFound)))

		assert.True(t, errors.Is(statusErr, persistence.ErrStatusNotFound))
	})

	t.Run("status error contains context", func(t *testing.T) {
		err := persistence.NewStatusError("Delete", "lead-new", persistence.ErrStatusNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "lead-new")
		assert.Contains(t, err.Error(), "workflow status not found")
	})

	t.Run("wrapped errors survive further wrapping", func(t *testing.T) {
		err := fmt.Errorf("service: %w", persistence.NewAssignmentRuleError("GetByID", "r1", persistence.ErrAssignmentRuleNotFound))

		var ruleErr *persistence.AssignmentRuleError
		assert.True(t, errors.As(err, &ruleErr))
		assert.Equal(t, "r1", ruleErr.RuleID)
	})
}

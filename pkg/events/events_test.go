package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	base := NewBaseEvent(StatusChangedEvent, models.EntityTypeLead, "L1")

	assert.NotEmpty(t, base.ID)
	assert.Equal(t, StatusChangedEvent, base.Type)
	assert.False(t, base.Timestamp.IsZero())
	assert.Equal(t, "Lead:L1", base.Key())
}

func TestActionsResolved_JSON(t *testing.T) {
	event := ActionsResolved{
		BaseEvent: NewBaseEvent(ActionsResolvedEvent, models.EntityTypeLead, "L1"),
		StatusID:  "lead-new",
		Trigger:   models.TriggerStatusChange,
		RuleIDs:   []string{"auto-assign-cce"},
		Actions:   []models.RuleAction{models.NewAssignTo("Customer Care Executive", "round_robin")},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded ActionsResolved
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, ActionsResolvedEvent, decoded.GetType())
	require.Len(t, decoded.Actions, 1)
	assert.Equal(t, models.AssignTo{Role: "Customer Care Executive", Method: "round_robin"}, decoded.Actions[0].Params)
}

package workflow_test

import (
	"testing"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStatus(t *testing.T, id string) *models.WorkflowStatus {
	t.Helper()

	status, ok := workflow.StatusByID(id, workflow.DefaultLeadStatuses())
	require.True(t, ok, "status %s not found", id)

	return status
}

func TestResolveActions_NewLeadOnStatusChange(t *testing.T) {
	actions := workflow.ResolveActions(mustStatus(t, "lead-new"), models.Entity{}, models.TriggerStatusChange)

	require.Len(t, actions, 2)

	assert.Equal(t, models.ActionAssignTo, actions[0].Type)
	assign, ok := actions[0].Params.(models.AssignTo)
	require.True(t, ok)
	assert.Equal(t, "Customer Care Executive", assign.Role)

	assert.Equal(t, models.ActionCreateTask, actions[1].Type)
	task, ok := actions[1].Params.(models.CreateTask)
	require.True(t, ok)
	assert.Equal(t, "Contact New Lead", task.Title)
}

func TestResolveActions_NotRespondingIsTimeGated(t *testing.T) {
	status := mustStatus(t, "lead-not-responding")

	actions := workflow.ResolveActions(status, models.Entity{"days_since_last_contact": 1}, models.TriggerTimeBased)
	assert.NotNil(t, actions)
	assert.Empty(t, actions)

	actions = workflow.ResolveActions(status, models.Entity{"days_since_last_contact": 5}, models.TriggerTimeBased)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionSendNotification, actions[0].Type)
	assert.Equal(t, "Follow-up required for non-responding lead", actions[0].Params.(models.SendNotification).Message)
}

func TestResolveActions(t *testing.T) {
	notify := models.NewSendNotification("ping")
	task := models.NewCreateTask(models.CreateTask{Title: "Call"})

	status := &models.WorkflowStatus{
		ID:         "lead-x",
		EntityType: models.EntityTypeLead,
		AutomationRules: []models.AutomationRule{
			{ID: "r1", Trigger: models.TriggerStatusChange, IsActive: true, Actions: []models.RuleAction{notify}},
			{ID: "r2", Trigger: models.TriggerStatusChange, IsActive: false, Actions: []models.RuleAction{task}},
			{ID: "r3", Trigger: models.TriggerFieldUpdate, IsActive: true, Actions: []models.RuleAction{task}},
			{
				ID: "r4", Trigger: models.TriggerStatusChange, IsActive: true,
				Conditions: []models.RuleCondition{
					cond("source", models.OperatorEquals, "Web"),
					cond("leadScore", models.OperatorGreaterThan, 50),
				},
				Actions: []models.RuleAction{task, notify},
			},
		},
	}

	tests := []struct {
		name     string
		status   *models.WorkflowStatus
		entity   models.Entity
		trigger  models.TriggerKind
		expected []models.RuleAction
	}{
		{
			name:     "inactive rule and failing conditions are skipped",
			status:   status,
			entity:   models.Entity{"source": "Web", "leadScore": 10},
			trigger:  models.TriggerStatusChange,
			expected: []models.RuleAction{notify},
		},
		{
			name:     "all conditions pass keeps duplicates in rule order",
			status:   status,
			entity:   models.Entity{"source": "Web", "leadScore": 80},
			trigger:  models.TriggerStatusChange,
			expected: []models.RuleAction{notify, task, notify},
		},
		{
			name:     "trigger mismatch",
			status:   status,
			entity:   models.Entity{},
			trigger:  models.TriggerTimeBased,
			expected: []models.RuleAction{},
		},
		{
			name:     "field update trigger",
			status:   status,
			entity:   models.Entity{},
			trigger:  models.TriggerFieldUpdate,
			expected: []models.RuleAction{task},
		},
		{
			name:     "nil status",
			status:   nil,
			entity:   models.Entity{},
			trigger:  models.TriggerStatusChange,
			expected: []models.RuleAction{},
		},
		{
			name:     "unknown trigger never matches",
			status:   status,
			entity:   models.Entity{},
			trigger:  "on_create",
			expected: []models.RuleAction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, workflow.ResolveActions(tt.status, tt.entity, tt.trigger))
		})
	}
}

func TestFireRules_ReportsRuleIdentity(t *testing.T) {
	fired := workflow.FireRules(mustStatus(t, "lead-quotation-sent"), models.Entity{"days_since_quote": 3}, models.TriggerTimeBased)

	require.Len(t, fired, 1)
	assert.Equal(t, "quotation-follow-up", fired[0].RuleID)
	assert.Equal(t, "Quotation Follow-up", fired[0].RuleName)
	assert.Len(t, fired[0].Actions, 2)
}

func TestResolveActions_DoesNotAliasStoredActions(t *testing.T) {
	status := mustStatus(t, "lead-new")

	actions := workflow.ResolveActions(status, models.Entity{}, models.TriggerStatusChange)
	actions[0] = models.NewUpdateField("x", 1)

	assert.Equal(t, models.ActionAssignTo, status.AutomationRules[0].Actions[0].Type)
}

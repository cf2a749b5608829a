// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/leadflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestStatus creates an active Lead status with default values that can be overridden.
func CreateTestStatus(id string, overrides ...func(*models.WorkflowStatus)) *models.WorkflowStatus {
	status := &models.WorkflowStatus{
		ID:                 id,
		Name:               "Status " + id,
		EntityType:         models.EntityTypeLead,
		Color:              "bg-blue-100 text-blue-800",
		Order:              1,
		IsActive:           true,
		AllowedTransitions: []string{},
		AutomationRules:    []models.AutomationRule{},
	}

	for _, override := range overrides {
		override(status)
	}

	return status
}

// WithTransitions sets the allowed targets of the status.
func WithTransitions(targets ...string) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.AllowedTransitions = targets
	}
}

// WithRules appends automation rules to the status.
func WithRules(rules ...models.AutomationRule) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.AutomationRules = append(s.AutomationRules, rules...)
	}
}

func WithEntityType(entityType models.EntityType) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.EntityType = entityType
	}
}

func WithOrder(order int) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.Order = order
	}
}

// CreateTestRule creates an active rule without conditions or actions.
func CreateTestRule(trigger models.TriggerKind, overrides ...func(*models.AutomationRule)) models.AutomationRule {
	rule := models.AutomationRule{
		ID:         "rule-" + uuid.NewString(),
		Name:       "Test Rule",
		Trigger:    trigger,
		Conditions: []models.RuleCondition{},
		Actions:    []models.RuleAction{},
		IsActive:   true,
	}

	for _, override := range overrides {
		override(&rule)
	}

	return rule
}

func WithRuleID(id string) func(*models.AutomationRule) {
	return func(r *models.AutomationRule) {
		r.ID = id
	}
}

func WithConditions(conditions ...models.RuleCondition) func(*models.AutomationRule) {
	return func(r *models.AutomationRule) {
		r.Conditions = conditions
	}
}

func WithActions(actions ...models.RuleAction) func(*models.AutomationRule) {
	return func(r *models.AutomationRule) {
		r.Actions = actions
	}
}

// Inactive disables the rule.
func Inactive() func(*models.AutomationRule) {
	return func(r *models.AutomationRule) {
		r.IsActive = false
	}
}

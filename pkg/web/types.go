package web

import "github.com/dukex/leadflow/pkg/models"

// StatusRequest is the body of status create and update calls.
// A nil AutomationRules on update keeps the stored rules.
type StatusRequest struct {
	ID                 string                  `json:"id,omitempty"`
	Name               string                  `json:"name"                      validate:"required"`
	EntityType         models.EntityType       `json:"entityType"                validate:"required"`
	Color              string                  `json:"color"                     validate:"required"`
	Order              int                     `json:"order"                     validate:"gte=0"`
	IsActive           bool                    `json:"isActive"`
	AllowedTransitions []string                `json:"allowedTransitions"`
	AutomationRules    []models.AutomationRule `json:"automationRules,omitempty"`
}

func (r StatusRequest) Model() *models.WorkflowStatus {
	return &models.WorkflowStatus{
		ID:                 r.ID,
		Name:               r.Name,
		EntityType:         r.EntityType,
		Color:              r.Color,
		Order:              r.Order,
		IsActive:           r.IsActive,
		AllowedTransitions: r.AllowedTransitions,
		AutomationRules:    r.AutomationRules,
	}
}

type RuleRequest struct {
	ID         string                 `json:"id,omitempty"`
	Name       string                 `json:"name"       validate:"required"`
	Trigger    models.TriggerKind     `json:"trigger"    validate:"required"`
	Conditions []models.RuleCondition `json:"conditions" validate:"dive"`
	Actions    []models.RuleAction    `json:"actions"`
	IsActive   bool                   `json:"isActive"`
}

func (r RuleRequest) Model() *models.AutomationRule {
	return &models.AutomationRule{
		ID:         r.ID,
		Name:       r.Name,
		Trigger:    r.Trigger,
		Conditions: r.Conditions,
		Actions:    r.Actions,
		IsActive:   r.IsActive,
	}
}

// ResolveRequest evaluates a trigger against an entity snapshot without side effects.
type ResolveRequest struct {
	Trigger models.TriggerKind `json:"trigger" validate:"required"`
	Entity  models.Entity      `json:"entity"`
}

type ChangeStatusRequest struct {
	FromStatusID string        `json:"fromStatusId"`
	ToStatusID   string        `json:"toStatusId"   validate:"required"`
	Entity       models.Entity `json:"entity"`
	ChangedBy    string        `json:"changedBy"`
	Notes        string        `json:"notes"`
}

// FieldUpdateRequest reports changed fields. StatusID empty uses the
// status recorded in history.
type FieldUpdateRequest struct {
	StatusID string        `json:"statusId"`
	Entity   models.Entity `json:"entity"`
}

type AssignmentRuleRequest struct {
	ID            string                  `json:"id,omitempty"`
	Name          string                  `json:"name"                    validate:"required"`
	EntityType    models.EntityType       `json:"entityType"              validate:"required"`
	Method        models.AssignmentMethod `json:"method"                  validate:"required"`
	IsActive      bool                    `json:"isActive"`
	Criteria      []models.RuleCondition  `json:"criteria"                validate:"dive"`
	AssignToRole  string                  `json:"assignToRole"            validate:"required"`
	SpecificUsers []string                `json:"specificUsers,omitempty"`
}

func (r AssignmentRuleRequest) Model() *models.AssignmentRule {
	return &models.AssignmentRule{
		ID:            r.ID,
		Name:          r.Name,
		EntityType:    r.EntityType,
		Method:        r.Method,
		IsActive:      r.IsActive,
		Criteria:      r.Criteria,
		AssignToRole:  r.AssignToRole,
		SpecificUsers: r.SpecificUsers,
	}
}

type MatchRequest struct {
	EntityType models.EntityType `json:"entityType" validate:"required"`
	Entity     models.Entity     `json:"entity"`
}

type MatchResponse struct {
	Matched bool                   `json:"matched"`
	Rule    *models.AssignmentRule `json:"rule,omitempty"`
}

type TransitionCheckResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Allowed bool   `json:"allowed"`
}

package models

// TriggerKind is the event class that causes automation rules to be considered.
type TriggerKind string

const (
	TriggerStatusChange TriggerKind = "status_change"
	TriggerTimeBased    TriggerKind = "time_based"
	TriggerFieldUpdate  TriggerKind = "field_update"
)

// IsValid reports whether the trigger is one of the known kinds.
func (t TriggerKind) IsValid() bool {
	switch t {
	case TriggerStatusChange, TriggerTimeBased, TriggerFieldUpdate:
		return true
	default:
		return false
	}
}

// ConditionOperator names the predicate applied by a RuleCondition.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorIsEmpty     ConditionOperator = "is_empty"
	OperatorIsNotEmpty  ConditionOperator = "is_not_empty"
)

// IsValid reports whether the operator is understood by the evaluator.
func (o ConditionOperator) IsValid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorContains,
		OperatorGreaterThan, OperatorLessThan, OperatorIsEmpty, OperatorIsNotEmpty:
		return true
	default:
		return false
	}
}

// WorkflowStatus is a named stage in an entity lifecycle.
// AllowedTransitions is a directed edge list: no symmetry, no transitivity.
type WorkflowStatus struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"               validate:"required"`
	EntityType         EntityType       `json:"entityType"         validate:"required"`
	Color              string           `json:"color"              validate:"required"`
	Order              int              `json:"order"`
	IsActive           bool             `json:"isActive"`
	AllowedTransitions []string         `json:"allowedTransitions"`
	AutomationRules    []AutomationRule `json:"automationRules"`
}

// IsTerminal reports whether no transition leaves this status.
func (s *WorkflowStatus) IsTerminal() bool {
	return len(s.AllowedTransitions) == 0
}

// RuleByID returns the index of the rule with the given id, or -1.
func (s *WorkflowStatus) RuleByID(id string) int {
	for i := range s.AutomationRules {
		if s.AutomationRules[i].ID == id {
			return i
		}
	}

	return -1
}

// Clone returns a deep copy so callers can mutate a snapshot freely.
func (s *WorkflowStatus) Clone() *WorkflowStatus {
	if s == nil {
		return nil
	}

	clone := *s
	clone.AllowedTransitions = append([]string(nil), s.AllowedTransitions...)

	if s.AutomationRules != nil {
		clone.AutomationRules = make([]AutomationRule, len(s.AutomationRules))
		for i, rule := range s.AutomationRules {
			clone.AutomationRules[i] = rule.Clone()
		}
	}

	return &clone
}

// Normalize replaces nil collections with empty ones so snapshots
// serialize as arrays instead of null.
func (s *WorkflowStatus) Normalize() {
	if s.AllowedTransitions == nil {
		s.AllowedTransitions = []string{}
	}

	if s.AutomationRules == nil {
		s.AutomationRules = []AutomationRule{}
	}

	for i := range s.AutomationRules {
		if s.AutomationRules[i].Conditions == nil {
			s.AutomationRules[i].Conditions = []RuleCondition{}
		}

		if s.AutomationRules[i].Actions == nil {
			s.AutomationRules[i].Actions = []RuleAction{}
		}
	}
}

// AutomationRule reacts to a trigger on the status that owns it.
// Conditions are AND-combined.
type AutomationRule struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"       validate:"required"`
	Trigger    TriggerKind     `json:"trigger"    validate:"required"`
	Conditions []RuleCondition `json:"conditions"`
	Actions    []RuleAction    `json:"actions"`
	IsActive   bool            `json:"isActive"`
}

func (r AutomationRule) Clone() AutomationRule {
	clone := r
	clone.Conditions = append([]RuleCondition(nil), r.Conditions...)
	clone.Actions = append([]RuleAction(nil), r.Actions...)

	return clone
}

// RuleCondition is a single predicate over a flat entity field.
type RuleCondition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    any               `json:"value"`
}

package models

// AssignmentMethod selects how an assignee is picked among role holders.
type AssignmentMethod string

const (
	AssignmentRoundRobin AssignmentMethod = "round_robin"
	AssignmentTerritory  AssignmentMethod = "territory"
	AssignmentSource     AssignmentMethod = "source"
	AssignmentWorkload   AssignmentMethod = "workload"
	AssignmentManual     AssignmentMethod = "manual"
	AssignmentSpecific   AssignmentMethod = "specific"
)

// AssignmentRule routes new records of an entity type to a role.
// Criteria use the same predicates as automation rule conditions.
type AssignmentRule struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"                    validate:"required"`
	EntityType    EntityType       `json:"entityType"              validate:"required"`
	Method        AssignmentMethod `json:"method"                  validate:"required,oneof=round_robin territory source workload manual specific"`
	IsActive      bool             `json:"isActive"`
	Criteria      []RuleCondition  `json:"criteria"                validate:"dive"`
	AssignToRole  string           `json:"assignToRole"            validate:"required"`
	SpecificUsers []string         `json:"specificUsers,omitempty"`
}

// Target is the assign_to action the rule stands for.
func (r AssignmentRule) Target() AssignTo {
	return AssignTo{Role: r.AssignToRole, Method: string(r.Method), Users: r.SpecificUsers}
}

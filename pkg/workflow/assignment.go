package workflow

import "github.com/dukex/leadflow/pkg/models"

// MatchAssignmentRule returns the first active rule of entityType whose
// criteria all pass against entity. Rules with no criteria always match.
func MatchAssignmentRule(rules []models.AssignmentRule, entityType models.EntityType, entity models.Entity) (*models.AssignmentRule, bool) {
	for i := range rules {
		r := &rules[i]
		if !r.IsActive || r.EntityType != entityType {
			continue
		}

		if EvaluateAll(r.Criteria, entity) {
			return r, true
		}
	}

	return nil, false
}

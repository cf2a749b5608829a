package file

import (
	"context"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
)

type AssignmentRuleRepository struct {
	rules *collection[models.AssignmentRule]
}

func NewAssignmentRuleRepository(root string) *AssignmentRuleRepository {
	return &AssignmentRuleRepository{
		rules: newCollection(root, assignmentRulesFile, func(r *models.AssignmentRule) string { return r.ID }),
	}
}

func (r *AssignmentRuleRepository) GetAll(_ context.Context) ([]models.AssignmentRule, error) {
	return r.rules.all()
}

func (r *AssignmentRuleRepository) GetByID(_ context.Context, id string) (*models.AssignmentRule, error) {
	rule, found, err := r.rules.find(id)
	if err != nil {
		return nil, persistence.NewAssignmentRuleError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewAssignmentRuleError("GetByID", id, persistence.ErrAssignmentRuleNotFound)
	}

	return rule, nil
}

func (r *AssignmentRuleRepository) Save(_ context.Context, rule *models.AssignmentRule) error {
	if err := r.rules.upsert(*rule); err != nil {
		return persistence.NewAssignmentRuleError("Save", rule.ID, err)
	}

	return nil
}

func (r *AssignmentRuleRepository) Delete(_ context.Context, id string) error {
	removed, err := r.rules.remove(id)
	if err != nil {
		return persistence.NewAssignmentRuleError("Delete", id, err)
	}

	if !removed {
		return persistence.NewAssignmentRuleError("Delete", id, persistence.ErrAssignmentRuleNotFound)
	}

	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/workflow"
)

// AssignmentRules manages the rules routing new records to a role.
type AssignmentRules struct {
	persistence persistence.Persistence
	opts        options
}

func NewAssignmentRules(persistence persistence.Persistence, opts ...Option) *AssignmentRules {
	return &AssignmentRules{
		persistence: persistence,
		opts:        newOptions(opts),
	}
}

func (s *AssignmentRules) List(ctx context.Context) ([]models.AssignmentRule, error) {
	rules, err := s.persistence.AssignmentRuleRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment rules: %w", err)
	}

	return rules, nil
}

func (s *AssignmentRules) Get(ctx context.Context, id string) (*models.AssignmentRule, error) {
	rule, err := s.persistence.AssignmentRuleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment rule: %w", err)
	}

	return rule, nil
}

func (s *AssignmentRules) Create(ctx context.Context, rule *models.AssignmentRule) (*models.AssignmentRule, error) {
	if rule.ID == "" {
		rule.ID = "assign-" + strings.Join(strings.Fields(strings.ToLower(rule.Name)), "-")
	}

	if err := validateAssignmentRule("Create", rule); err != nil {
		return nil, err
	}

	_, err := s.persistence.AssignmentRuleRepository().GetByID(ctx, rule.ID)

	switch {
	case err == nil:
		return nil, &ServiceError{Op: "Create", Code: "ASSIGNMENT_RULE_EXISTS", Message: "assignment rule " + rule.ID + " already exists", Err: ErrAssignmentRuleAlreadyExists}
	case !persistence.IsAssignmentRuleNotFound(err):
		return nil, fmt.Errorf("failed to check assignment rule: %w", err)
	}

	if err := s.persistence.AssignmentRuleRepository().Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save assignment rule: %w", err)
	}

	s.opts.logger.InfoContext(ctx, "Created assignment rule", "rule_id", rule.ID, "entity_type", rule.EntityType)

	return rule, nil
}

func (s *AssignmentRules) Update(ctx context.Context, id string, rule *models.AssignmentRule) (*models.AssignmentRule, error) {
	if _, err := s.persistence.AssignmentRuleRepository().GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get assignment rule: %w", err)
	}

	rule.ID = id
	if err := validateAssignmentRule("Update", rule); err != nil {
		return nil, err
	}

	if err := s.persistence.AssignmentRuleRepository().Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save assignment rule: %w", err)
	}

	return rule, nil
}

func (s *AssignmentRules) Delete(ctx context.Context, id string) error {
	if err := s.persistence.AssignmentRuleRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment rule: %w", err)
	}

	s.opts.logger.InfoContext(ctx, "Deleted assignment rule", "rule_id", id)

	return nil
}

// Match returns the first active rule of entityType whose criteria pass.
func (s *AssignmentRules) Match(ctx context.Context, entityType models.EntityType, entity models.Entity) (*models.AssignmentRule, bool, error) {
	if !entityType.IsValid() {
		return nil, false, NewValidationError("Match", "INVALID_ENTITY_TYPE", "unknown entity type "+string(entityType), ErrInvalidEntityType)
	}

	rules, err := s.persistence.AssignmentRuleRepository().GetAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list assignment rules: %w", err)
	}

	rule, ok := workflow.MatchAssignmentRule(rules, entityType, entity)

	return rule, ok, nil
}

func validateAssignmentRule(op string, rule *models.AssignmentRule) error {
	if err := validate.Struct(rule); err != nil {
		return NewValidationError(op, "INVALID_ASSIGNMENT_RULE", err.Error(), ErrInvalidRequest)
	}

	if !rule.EntityType.IsValid() {
		return NewValidationError(op, "INVALID_ENTITY_TYPE", "unknown entity type "+string(rule.EntityType), ErrInvalidEntityType)
	}

	return validateConditions(op, rule.Criteria)
}

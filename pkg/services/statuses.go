package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/workflow"
	"github.com/google/uuid"
)

// Statuses manages the status registry and the automation rules nested in it.
type Statuses struct {
	persistence persistence.Persistence
	opts        options
}

func NewStatuses(persistence persistence.Persistence, opts ...Option) *Statuses {
	return &Statuses{
		persistence: persistence,
		opts:        newOptions(opts),
	}
}

// StatusID derives the identifier the editor assigns to a new status.
func StatusID(entityType models.EntityType, name string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "-")

	return strings.ToLower(string(entityType)) + "-" + slug
}

// List returns the statuses of entityType sorted by display order.
// An empty entityType lists every status.
func (s *Statuses) List(ctx context.Context, entityType models.EntityType) ([]models.WorkflowStatus, error) {
	if entityType != "" && !entityType.IsValid() {
		return nil, NewValidationError("List", "INVALID_ENTITY_TYPE", "unknown entity type "+string(entityType), ErrInvalidEntityType)
	}

	statuses, err := s.persistence.StatusRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	if entityType != "" {
		statuses = workflow.StatusesFor(entityType, statuses)
	}

	workflow.SortByOrder(statuses)

	return statuses, nil
}

func (s *Statuses) Get(ctx context.Context, id string) (*models.WorkflowStatus, error) {
	status, err := s.persistence.StatusRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return status, nil
}

func (s *Statuses) Create(ctx context.Context, status *models.WorkflowStatus) (*models.WorkflowStatus, error) {
	if status.ID == "" {
		status.ID = StatusID(status.EntityType, status.Name)
	}

	if err := validateStatus("Create", status); err != nil {
		return nil, err
	}

	_, err := s.persistence.StatusRepository().GetByID(ctx, status.ID)

	switch {
	case err == nil:
		return nil, &ServiceError{Op: "Create", Code: "STATUS_EXISTS", Message: "status " + status.ID + " already exists", Err: ErrStatusAlreadyExists}
	case !persistence.IsStatusNotFound(err):
		return nil, fmt.Errorf("failed to check status: %w", err)
	}

	for i := range status.AutomationRules {
		if status.AutomationRules[i].ID == "" {
			status.AutomationRules[i].ID = newRuleID()
		}
	}

	status.Normalize()

	if err := s.persistence.StatusRepository().Save(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to save status: %w", err)
	}

	s.opts.logger.InfoContext(ctx, "Created status", "status_id", status.ID, "entity_type", status.EntityType)
	s.lintRegistry(ctx)

	return status, nil
}

// Update replaces the editable fields of a status. The id never changes and
// a nil rule list keeps the stored rules, since rules have their own endpoints.
func (s *Statuses) Update(ctx context.Context, id string, status *models.WorkflowStatus) (*models.WorkflowStatus, error) {
	existing, err := s.persistence.StatusRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	status.ID = existing.ID
	if status.AutomationRules == nil {
		status.AutomationRules = existing.AutomationRules
	}

	if err := validateStatus("Update", status); err != nil {
		return nil, err
	}

	status.Normalize()

	if err := s.persistence.StatusRepository().Save(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to save status: %w", err)
	}

	s.opts.logger.InfoContext(ctx, "Updated status", "status_id", status.ID)
	s.lintRegistry(ctx)

	return status, nil
}

// Delete removes a status. Transitions pointing at it are left dangling and
// reported by Lint.
func (s *Statuses) Delete(ctx context.Context, id string) error {
	if err := s.persistence.StatusRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}

	s.opts.logger.InfoContext(ctx, "Deleted status", "status_id", id)
	s.lintRegistry(ctx)

	return nil
}

// Transitions lists the statuses reachable in one hop from id.
func (s *Statuses) Transitions(ctx context.Context, id string) ([]models.WorkflowStatus, error) {
	statuses, err := s.persistence.StatusRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	return workflow.AvailableTransitions(id, statuses), nil
}

func (s *Statuses) CanTransition(ctx context.Context, fromID, toID string) (bool, error) {
	statuses, err := s.persistence.StatusRepository().GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list statuses: %w", err)
	}

	return workflow.CanTransitionTo(fromID, toID, statuses), nil
}

func (s *Statuses) Lint(ctx context.Context) ([]workflow.Issue, error) {
	statuses, err := s.persistence.StatusRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	issues := workflow.Lint(statuses)
	s.opts.metrics.LintIssues(len(issues))

	return issues, nil
}

// Import upserts statuses as given, keeping ids. Missing ids are derived
// from the name like Create does.
func (s *Statuses) Import(ctx context.Context, statuses []models.WorkflowStatus) (int, error) {
	for i := range statuses {
		status := &statuses[i]
		if status.ID == "" {
			status.ID = StatusID(status.EntityType, status.Name)
		}

		if err := validateStatus("Import", status); err != nil {
			return i, err
		}
	}

	for i := range statuses {
		statuses[i].Normalize()

		if err := s.persistence.StatusRepository().Save(ctx, &statuses[i]); err != nil {
			return i, fmt.Errorf("failed to save status %s: %w", statuses[i].ID, err)
		}
	}

	s.opts.logger.InfoContext(ctx, "Imported statuses", "count", len(statuses))
	s.lintRegistry(ctx)

	return len(statuses), nil
}

func (s *Statuses) AddRule(ctx context.Context, statusID string, rule *models.AutomationRule) (*models.AutomationRule, error) {
	status, err := s.persistence.StatusRepository().GetByID(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	if rule.ID == "" {
		rule.ID = newRuleID()
	}

	if status.RuleByID(rule.ID) >= 0 {
		return nil, &ServiceError{Op: "AddRule", Code: "RULE_EXISTS", Message: "rule " + rule.ID + " already exists", Err: ErrRuleAlreadyExists}
	}

	if err := validateRule("AddRule", rule); err != nil {
		return nil, err
	}

	status.AutomationRules = append(status.AutomationRules, *rule)
	if err := s.saveRules(ctx, status); err != nil {
		return nil, err
	}

	s.opts.logger.InfoContext(ctx, "Added automation rule", "status_id", statusID, "rule_id", rule.ID)

	return rule, nil
}

func (s *Statuses) UpdateRule(ctx context.Context, statusID, ruleID string, rule *models.AutomationRule) (*models.AutomationRule, error) {
	status, err := s.persistence.StatusRepository().GetByID(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	idx := status.RuleByID(ruleID)
	if idx < 0 {
		return nil, fmt.Errorf("rule %s on status %s: %w", ruleID, statusID, ErrRuleNotFound)
	}

	rule.ID = ruleID
	if err := validateRule("UpdateRule", rule); err != nil {
		return nil, err
	}

	status.AutomationRules[idx] = *rule
	if err := s.saveRules(ctx, status); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Statuses) DeleteRule(ctx context.Context, statusID, ruleID string) error {
	status, err := s.persistence.StatusRepository().GetByID(ctx, statusID)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	idx := status.RuleByID(ruleID)
	if idx < 0 {
		return fmt.Errorf("rule %s on status %s: %w", ruleID, statusID, ErrRuleNotFound)
	}

	status.AutomationRules = append(status.AutomationRules[:idx], status.AutomationRules[idx+1:]...)

	return s.saveRules(ctx, status)
}

func (s *Statuses) saveRules(ctx context.Context, status *models.WorkflowStatus) error {
	status.Normalize()

	if err := s.persistence.StatusRepository().Save(ctx, status); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}

	return nil
}

// lintRegistry logs reference problems after a write. It never fails the write.
func (s *Statuses) lintRegistry(ctx context.Context) {
	issues, err := s.Lint(ctx)
	if err != nil {
		s.opts.logger.ErrorContext(ctx, "Failed to lint status registry", "error", err)

		return
	}

	for _, issue := range issues {
		s.opts.logger.WarnContext(ctx, "Status registry issue",
			"kind", issue.Kind,
			"status_id", issue.StatusID,
			"rule_id", issue.RuleID,
			"message", issue.Message,
		)
	}
}

func newRuleID() string {
	return "rule-" + uuid.NewString()
}

func validateStatus(op string, status *models.WorkflowStatus) error {
	if err := validate.Struct(status); err != nil {
		return NewValidationError(op, "INVALID_STATUS", err.Error(), ErrInvalidRequest)
	}

	if !status.EntityType.IsValid() {
		return NewValidationError(op, "INVALID_ENTITY_TYPE", "unknown entity type "+string(status.EntityType), ErrInvalidEntityType)
	}

	for i := range status.AutomationRules {
		if err := validateRule(op, &status.AutomationRules[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateRule(op string, rule *models.AutomationRule) error {
	if err := validate.Struct(rule); err != nil {
		return NewValidationError(op, "INVALID_RULE", err.Error(), ErrInvalidRequest)
	}

	if !rule.Trigger.IsValid() {
		return NewValidationError(op, "INVALID_TRIGGER", "unknown trigger "+string(rule.Trigger), ErrInvalidTrigger)
	}

	if err := validateConditions(op, rule.Conditions); err != nil {
		return err
	}

	for _, action := range rule.Actions {
		if err := models.ValidateActionParams(action); err != nil {
			return NewValidationError(op, "INVALID_ACTION_PARAMS", err.Error(), err)
		}
	}

	return nil
}

func validateConditions(op string, conditions []models.RuleCondition) error {
	for _, condition := range conditions {
		if err := validate.Struct(condition); err != nil {
			return NewValidationError(op, "INVALID_CONDITION", err.Error(), ErrInvalidRequest)
		}

		if !condition.Operator.IsValid() {
			return NewValidationError(op, "INVALID_OPERATOR", "unknown operator "+string(condition.Operator), ErrInvalidOperator)
		}
	}

	return nil
}

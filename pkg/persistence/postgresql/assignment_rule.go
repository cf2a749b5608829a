package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
)

type AssignmentRuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAssignmentRuleRepository(db *sql.DB, logger *slog.Logger) *AssignmentRuleRepository {
	return &AssignmentRuleRepository{db: db, logger: logger}
}

const selectAssignmentRule = `
	SELECT
		id
	  , name
	  , entity_type
	  , method
	  , is_active
	  , criteria
	  , assign_to_role
	  , specific_users
	FROM assignment_rules
`

func scanAssignmentRule(row rowScanner) (*models.AssignmentRule, error) {
	var (
		rule         models.AssignmentRule
		criteriaJSON []byte
		usersJSON    []byte
	)

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.EntityType,
		&rule.Method,
		&rule.IsActive,
		&criteriaJSON,
		&rule.AssignToRole,
		&usersJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(criteriaJSON, &rule.Criteria); err != nil {
		return nil, fmt.Errorf("failed to decode criteria of %s: %w", rule.ID, err)
	}

	if err := json.Unmarshal(usersJSON, &rule.SpecificUsers); err != nil {
		return nil, fmt.Errorf("failed to decode specific users of %s: %w", rule.ID, err)
	}

	if len(rule.SpecificUsers) == 0 {
		rule.SpecificUsers = nil
	}

	return &rule, nil
}

func (r *AssignmentRuleRepository) GetAll(ctx context.Context) ([]models.AssignmentRule, error) {
	rows, err := r.db.QueryContext(ctx, selectAssignmentRule+" ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment rules: %w", err)
	}
	defer closeRows(ctx, r.logger, rows)

	rules := make([]models.AssignmentRule, 0)

	for rows.Next() {
		rule, err := scanAssignmentRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment rule: %w", err)
		}

		rules = append(rules, *rule)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating assignment rules: %w", err)
	}

	return rules, nil
}

func (r *AssignmentRuleRepository) GetByID(ctx context.Context, id string) (*models.AssignmentRule, error) {
	rule, err := scanAssignmentRule(r.db.QueryRowContext(ctx, selectAssignmentRule+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewAssignmentRuleError("GetByID", id, persistence.ErrAssignmentRuleNotFound)
		}

		return nil, persistence.NewAssignmentRuleError("GetByID", id, err)
	}

	return rule, nil
}

func (r *AssignmentRuleRepository) Save(ctx context.Context, rule *models.AssignmentRule) error {
	criteria := rule.Criteria
	if criteria == nil {
		criteria = []models.RuleCondition{}
	}

	users := rule.SpecificUsers
	if users == nil {
		users = []string{}
	}

	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return persistence.NewAssignmentRuleError("Save", rule.ID, err)
	}

	usersJSON, err := json.Marshal(users)
	if err != nil {
		return persistence.NewAssignmentRuleError("Save", rule.ID, err)
	}

	query := `
		INSERT INTO assignment_rules (
			id, name, entity_type, method, is_active, criteria, assign_to_role, specific_users
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , entity_type = EXCLUDED.entity_type
		  , method = EXCLUDED.method
		  , is_active = EXCLUDED.is_active
		  , criteria = EXCLUDED.criteria
		  , assign_to_role = EXCLUDED.assign_to_role
		  , specific_users = EXCLUDED.specific_users
		  , updated_at = NOW()
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.EntityType,
		rule.Method,
		rule.IsActive,
		string(criteriaJSON),
		rule.AssignToRole,
		string(usersJSON),
	)
	if err != nil {
		return persistence.NewAssignmentRuleError("Save", rule.ID, err)
	}

	return nil
}

func (r *AssignmentRuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM assignment_rules WHERE id = $1", id)
	if err != nil {
		return persistence.NewAssignmentRuleError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewAssignmentRuleError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewAssignmentRuleError("Delete", id, persistence.ErrAssignmentRuleNotFound)
	}

	return nil
}

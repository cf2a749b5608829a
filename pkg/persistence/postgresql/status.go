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

// StatusRepository handles workflow status database operations.
// Transitions and rules are stored as JSONB on the status row.
type StatusRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStatusRepository(db *sql.DB, logger *slog.Logger) *StatusRepository {
	return &StatusRepository{db: db, logger: logger}
}

const selectStatus = `
	SELECT
		id
	  , name
	  , entity_type
	  , color
	  , sort_order
	  , is_active
	  , allowed_transitions
	  , automation_rules
	FROM workflow_statuses
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*models.WorkflowStatus, error) {
	var (
		status          models.WorkflowStatus
		transitionsJSON []byte
		automationsJSON []byte
	)

	err := row.Scan(
		&status.ID,
		&status.Name,
		&status.EntityType,
		&status.Color,
		&status.Order,
		&status.IsActive,
		&transitionsJSON,
		&automationsJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(transitionsJSON, &status.AllowedTransitions); err != nil {
		return nil, fmt.Errorf("failed to decode transitions of %s: %w", status.ID, err)
	}

	if err := json.Unmarshal(automationsJSON, &status.AutomationRules); err != nil {
		return nil, fmt.Errorf("failed to decode automation rules of %s: %w", status.ID, err)
	}

	status.Normalize()

	return &status, nil
}

// GetAll returns all statuses in insertion order.
func (r *StatusRepository) GetAll(ctx context.Context) ([]models.WorkflowStatus, error) {
	rows, err := r.db.QueryContext(ctx, selectStatus+" ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer closeRows(ctx, r.logger, rows)

	statuses := make([]models.WorkflowStatus, 0)

	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}

		statuses = append(statuses, *status)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating statuses: %w", err)
	}

	return statuses, nil
}

func (r *StatusRepository) GetByID(ctx context.Context, id string) (*models.WorkflowStatus, error) {
	status, err := scanStatus(r.db.QueryRowContext(ctx, selectStatus+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStatusError("GetByID", id, persistence.ErrStatusNotFound)
		}

		return nil, persistence.NewStatusError("GetByID", id, err)
	}

	return status, nil
}

// Save upserts the status. position is only assigned on insert.
func (r *StatusRepository) Save(ctx context.Context, status *models.WorkflowStatus) error {
	stored := status.Clone()
	stored.Normalize()

	transitionsJSON, err := json.Marshal(stored.AllowedTransitions)
	if err != nil {
		return persistence.NewStatusError("Save", status.ID, err)
	}

	automationsJSON, err := json.Marshal(stored.AutomationRules)
	if err != nil {
		return persistence.NewStatusError("Save", status.ID, err)
	}

	query := `
		INSERT INTO workflow_statuses (
			id, name, entity_type, color, sort_order, is_active, allowed_transitions, automation_rules
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , entity_type = EXCLUDED.entity_type
		  , color = EXCLUDED.color
		  , sort_order = EXCLUDED.sort_order
		  , is_active = EXCLUDED.is_active
		  , allowed_transitions = EXCLUDED.allowed_transitions
		  , automation_rules = EXCLUDED.automation_rules
		  , updated_at = NOW()
	`

	_, err = r.db.ExecContext(ctx, query,
		stored.ID,
		stored.Name,
		stored.EntityType,
		stored.Color,
		stored.Order,
		stored.IsActive,
		string(transitionsJSON),
		string(automationsJSON),
	)
	if err != nil {
		return persistence.NewStatusError("Save", status.ID, err)
	}

	return nil
}

func (r *StatusRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflow_statuses WHERE id = $1", id)
	if err != nil {
		return persistence.NewStatusError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStatusError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewStatusError("Delete", id, persistence.ErrStatusNotFound)
	}

	return nil
}

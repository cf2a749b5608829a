package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
)

type HistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewHistoryRepository(db *sql.DB, logger *slog.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

const selectHistory = `
	SELECT
		id
	  , entity_type
	  , entity_id
	  , from_status
	  , to_status
	  , changed_by
	  , changed_at
	  , notes
	  , duration_days
	FROM status_history
	WHERE entity_type = $1 AND entity_id = $2
`

func scanHistoryEntry(row rowScanner) (*models.StatusHistoryEntry, error) {
	var (
		entry    models.StatusHistoryEntry
		duration sql.NullFloat64
	)

	err := row.Scan(
		&entry.ID,
		&entry.EntityType,
		&entry.EntityID,
		&entry.FromStatus,
		&entry.ToStatus,
		&entry.ChangedBy,
		&entry.Timestamp,
		&entry.Notes,
		&duration,
	)
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		entry.Duration = &duration.Float64
	}

	entry.Timestamp = entry.Timestamp.UTC()

	return &entry, nil
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.StatusHistoryEntry) error {
	query := `
		INSERT INTO status_history (
			id, entity_type, entity_id, from_status, to_status, changed_by, changed_at, notes, duration_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var duration sql.NullFloat64
	if entry.Duration != nil {
		duration = sql.NullFloat64{Float64: *entry.Duration, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ChangedBy,
		entry.Timestamp,
		entry.Notes,
		duration,
	)
	if err != nil {
		return fmt.Errorf("failed to append history for %s %s: %w", entry.EntityType, entry.EntityID, err)
	}

	return nil
}

func (r *HistoryRepository) GetByEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]models.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectHistory+" ORDER BY changed_at ASC, seq ASC", entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer closeRows(ctx, r.logger, rows)

	entries := make([]models.StatusHistoryEntry, 0)

	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entries = append(entries, *entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepository) Latest(ctx context.Context, entityType models.EntityType, entityID string) (*models.StatusHistoryEntry, error) {
	entry, err := scanHistoryEntry(r.db.QueryRowContext(ctx, selectHistory+" ORDER BY changed_at DESC, seq DESC LIMIT 1", entityType, entityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", entityType, entityID, persistence.ErrHistoryNotFound)
		}

		return nil, fmt.Errorf("failed to query latest history entry: %w", err)
	}

	return entry, nil
}

package file

import (
	"context"
	"fmt"
	"sort"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
)

// HistoryRepository appends status changes to status_history.json.
type HistoryRepository struct {
	entries *collection[models.StatusHistoryEntry]
}

func NewHistoryRepository(root string) *HistoryRepository {
	return &HistoryRepository{
		entries: newCollection(root, historyFile, func(e *models.StatusHistoryEntry) string { return e.ID }),
	}
}

func (r *HistoryRepository) Append(_ context.Context, entry *models.StatusHistoryEntry) error {
	if err := r.entries.add(*entry); err != nil {
		return fmt.Errorf("failed to append history for %s %s: %w", entry.EntityType, entry.EntityID, err)
	}

	return nil
}

func (r *HistoryRepository) GetByEntity(_ context.Context, entityType models.EntityType, entityID string) ([]models.StatusHistoryEntry, error) {
	all, err := r.entries.all()
	if err != nil {
		return nil, err
	}

	entries := []models.StatusHistoryEntry{}

	for _, e := range all {
		if e.EntityType == entityType && e.EntityID == entityID {
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries, nil
}

func (r *HistoryRepository) Latest(ctx context.Context, entityType models.EntityType, entityID string) (*models.StatusHistoryEntry, error) {
	entries, err := r.GetByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%s %s: %w", entityType, entityID, persistence.ErrHistoryNotFound)
	}

	return &entries[len(entries)-1], nil
}

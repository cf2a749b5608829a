// Package persistence provides the storage abstraction for workflow statuses, assignment rules and status history.
package persistence

import (
	"context"

	"github.com/dukex/leadflow/pkg/models"
)

type Persistence interface {
	StatusRepository() StatusRepository
	AssignmentRuleRepository() AssignmentRuleRepository
	HistoryRepository() HistoryRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// StatusRepository stores the status registry. GetAll returns statuses in
// insertion order; transition lookups depend on that order.
type StatusRepository interface {
	GetAll(ctx context.Context) ([]models.WorkflowStatus, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowStatus, error)
	// Save inserts or replaces a status. A replaced status keeps its position.
	Save(ctx context.Context, status *models.WorkflowStatus) error
	Delete(ctx context.Context, id string) error
}

type AssignmentRuleRepository interface {
	GetAll(ctx context.Context) ([]models.AssignmentRule, error)
	GetByID(ctx context.Context, id string) (*models.AssignmentRule, error)
	Save(ctx context.Context, rule *models.AssignmentRule) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository is an append-only log of status changes.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.StatusHistoryEntry) error
	// GetByEntity returns the entries of one entity, oldest first.
	GetByEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]models.StatusHistoryEntry, error)
	// Latest returns the most recent entry or ErrHistoryNotFound.
	Latest(ctx context.Context, entityType models.EntityType, entityID string) (*models.StatusHistoryEntry, error)
}

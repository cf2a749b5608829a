package file

import (
	"context"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
)

// StatusRepository keeps the status registry in statuses.json.
type StatusRepository struct {
	statuses *collection[models.WorkflowStatus]
}

func NewStatusRepository(root string) *StatusRepository {
	return &StatusRepository{
		statuses: newCollection(root, statusesFile, func(s *models.WorkflowStatus) string { return s.ID }),
	}
}

func (r *StatusRepository) GetAll(_ context.Context) ([]models.WorkflowStatus, error) {
	statuses, err := r.statuses.all()
	if err != nil {
		return nil, err
	}

	for i := range statuses {
		statuses[i].Normalize()
	}

	return statuses, nil
}

func (r *StatusRepository) GetByID(_ context.Context, id string) (*models.WorkflowStatus, error) {
	status, found, err := r.statuses.find(id)
	if err != nil {
		return nil, persistence.NewStatusError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewStatusError("GetByID", id, persistence.ErrStatusNotFound)
	}

	status.Normalize()

	return status, nil
}

func (r *StatusRepository) Save(_ context.Context, status *models.WorkflowStatus) error {
	stored := status.Clone()
	stored.Normalize()

	if err := r.statuses.upsert(*stored); err != nil {
		return persistence.NewStatusError("Save", status.ID, err)
	}

	return nil
}

func (r *StatusRepository) Delete(_ context.Context, id string) error {
	removed, err := r.statuses.remove(id)
	if err != nil {
		return persistence.NewStatusError("Delete", id, err)
	}

	if !removed {
		return persistence.NewStatusError("Delete", id, persistence.ErrStatusNotFound)
	}

	return nil
}

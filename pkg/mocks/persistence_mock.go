package mocks

import (
	"context"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockStatusRepository is a mock implementation of persistence.StatusRepository interface.
type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) GetAll(ctx context.Context) ([]models.WorkflowStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.WorkflowStatus), args.Error(1)
}

func (m *MockStatusRepository) GetByID(ctx context.Context, id string) (*models.WorkflowStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowStatus), args.Error(1)
}

func (m *MockStatusRepository) Save(ctx context.Context, status *models.WorkflowStatus) error {
	args := m.Called(ctx, status)

	return args.Error(0)
}

func (m *MockStatusRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockAssignmentRuleRepository is a mock implementation of persistence.AssignmentRuleRepository interface.
type MockAssignmentRuleRepository struct {
	mock.Mock
}

func (m *MockAssignmentRuleRepository) GetAll(ctx context.Context) ([]models.AssignmentRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.AssignmentRule), args.Error(1)
}

func (m *MockAssignmentRuleRepository) GetByID(ctx context.Context, id string) (*models.AssignmentRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AssignmentRule), args.Error(1)
}

func (m *MockAssignmentRuleRepository) Save(ctx context.Context, rule *models.AssignmentRule) error {
	args := m.Called(ctx, rule)

	return args.Error(0)
}

func (m *MockAssignmentRuleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of persistence.HistoryRepository interface.
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *models.StatusHistoryEntry) error {
	args := m.Called(ctx, entry)

	return args.Error(0)
}

func (m *MockHistoryRepository) GetByEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]models.StatusHistoryEntry, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.StatusHistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Latest(ctx context.Context, entityType models.EntityType, entityID string) (*models.StatusHistoryEntry, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.StatusHistoryEntry), args.Error(1)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
// Repository getters return the embedded repository mocks.
type MockPersistence struct {
	mock.Mock

	Statuses        *MockStatusRepository
	AssignmentRules *MockAssignmentRuleRepository
	History         *MockHistoryRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Statuses:        &MockStatusRepository{},
		AssignmentRules: &MockAssignmentRuleRepository{},
		History:         &MockHistoryRepository{},
	}
}

//nolint:ireturn
func (m *MockPersistence) StatusRepository() persistence.StatusRepository {
	return m.Statuses
}

//nolint:ireturn
func (m *MockPersistence) AssignmentRuleRepository() persistence.AssignmentRuleRepository {
	return m.AssignmentRules
}

//nolint:ireturn
func (m *MockPersistence) HistoryRepository() persistence.HistoryRepository {
	return m.History
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

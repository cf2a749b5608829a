package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	p := NewPersistence("/tmp/test")
	fp := p.(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)

	p = NewPersistence("file:///tmp/test")
	fp = p.(*Persistence)
	assert.Equal(t, "/tmp/test", fp.root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	assert.NoError(t, NewPersistence(t.TempDir()).HealthCheck(t.Context()))
	assert.Error(t, NewPersistence(filepath.Join(t.TempDir(), "missing")).HealthCheck(t.Context()))
	assert.NoError(t, NewPersistence(t.TempDir()).Close(t.Context()))
}

func TestStatusRepository_RoundTrip(t *testing.T) {
	testDir := t.TempDir()
	repo := NewPersistence(testDir).StatusRepository()

	for _, s := range workflow.DefaultLeadStatuses() {
		require.NoError(t, repo.Save(t.Context(), &s))
	}

	_, err := os.Stat(filepath.Join(testDir, statusesFile))
	require.NoError(t, err)

	statuses, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, statuses, 21)
	assert.Equal(t, "lead-new", statuses[0].ID)
	assert.Equal(t, "lead-lost-fake", statuses[20].ID)

	actions := workflow.ResolveActions(&statuses[0], models.Entity{}, models.TriggerStatusChange)
	require.Len(t, actions, 2)
	assert.Equal(t, "Customer Care Executive", actions[0].Params.(models.AssignTo).Role)

	notResponding, err := repo.GetByID(t.Context(), "lead-not-responding")
	require.NoError(t, err)
	assert.Empty(t, workflow.ResolveActions(notResponding, models.Entity{"days_since_last_contact": 1}, models.TriggerTimeBased))
	assert.Len(t, workflow.ResolveActions(notResponding, models.Entity{"days_since_last_contact": 5}, models.TriggerTimeBased), 1)
}

func TestStatusRepository_SaveKeepsPosition(t *testing.T) {
	repo := NewStatusRepository(t.TempDir())

	for _, id := range []string{"lead-a", "lead-b", "lead-c"} {
		require.NoError(t, repo.Save(t.Context(), &models.WorkflowStatus{ID: id, Name: id, EntityType: models.EntityTypeLead}))
	}

	require.NoError(t, repo.Save(t.Context(), &models.WorkflowStatus{ID: "lead-a", Name: "Renamed", EntityType: models.EntityTypeLead}))

	statuses, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, "Renamed", statuses[0].Name)
	assert.Equal(t, []string{}, statuses[0].AllowedTransitions)
}

func TestStatusRepository_NotFound(t *testing.T) {
	repo := NewStatusRepository(t.TempDir())

	statuses, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, statuses)

	_, err = repo.GetByID(t.Context(), "lead-new")
	assert.True(t, persistence.IsStatusNotFound(err))

	err = repo.Delete(t.Context(), "lead-new")
	assert.True(t, persistence.IsStatusNotFound(err))
}

func TestStatusRepository_Delete(t *testing.T) {
	repo := NewStatusRepository(t.TempDir())
	require.NoError(t, repo.Save(t.Context(), &models.WorkflowStatus{ID: "lead-a"}))
	require.NoError(t, repo.Save(t.Context(), &models.WorkflowStatus{ID: "lead-b"}))

	require.NoError(t, repo.Delete(t.Context(), "lead-a"))

	statuses, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "lead-b", statuses[0].ID)
}

func TestStatusRepository_CorruptSnapshot(t *testing.T) {
	testDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(testDir, statusesFile), []byte("{not json"), 0o600))

	_, err := NewStatusRepository(testDir).GetAll(t.Context())
	assert.Error(t, err)
}

func TestAssignmentRuleRepository(t *testing.T) {
	repo := NewAssignmentRuleRepository(t.TempDir())

	for _, r := range workflow.DefaultAssignmentRules() {
		require.NoError(t, repo.Save(t.Context(), &r))
	}

	rules, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, rules, 2)

	rule, ok := workflow.MatchAssignmentRule(rules, models.EntityTypeLead, models.Entity{"status": "New"})
	require.True(t, ok)
	assert.Equal(t, "assign-cce-round-robin", rule.ID)

	require.NoError(t, repo.Delete(t.Context(), "assign-fe-territory"))

	_, err = repo.GetByID(t.Context(), "assign-fe-territory")
	assert.True(t, persistence.IsAssignmentRuleNotFound(err))
}

func TestHistoryRepository(t *testing.T) {
	repo := NewHistoryRepository(t.TempDir())
	now := time.Now().UTC().Truncate(time.Second)

	entries := []models.StatusHistoryEntry{
		{ID: "h2", EntityType: models.EntityTypeLead, EntityID: "L1", FromStatus: "lead-new", ToStatus: "lead-contacted", Timestamp: now.Add(time.Hour)},
		{ID: "h1", EntityType: models.EntityTypeLead, EntityID: "L1", ToStatus: "lead-new", Timestamp: now},
		{ID: "h3", EntityType: models.EntityTypeLead, EntityID: "L2", ToStatus: "lead-new", Timestamp: now},
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(t.Context(), &e))
	}

	history, err := repo.GetByEntity(t.Context(), models.EntityTypeLead, "L1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "h1", history[0].ID)
	assert.Equal(t, "h2", history[1].ID)

	latest, err := repo.Latest(t.Context(), models.EntityTypeLead, "L1")
	require.NoError(t, err)
	assert.Equal(t, "lead-contacted", latest.ToStatus)

	_, err = repo.Latest(t.Context(), models.EntityTypeVisit, "L1")
	assert.True(t, persistence.IsHistoryNotFound(err))
}

package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/persistence/postgresql"
	"github.com/dukex/leadflow/pkg/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"status_history", "assignment_rules", "workflow_statuses", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL tests in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("leadflow_test"),
			postgres.WithUsername("leadflow"),
			postgres.WithPassword("leadflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	for _, table := range []string{"workflow_statuses", "assignment_rules", "status_history"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestStatusRepository_DefaultWorkflowRoundTrip(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.StatusRepository()

	for _, s := range workflow.DefaultLeadStatuses() {
		require.NoError(t, repo.Save(ctx, &s))
	}

	statuses, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 21)
	assert.Equal(t, "lead-new", statuses[0].ID)

	assert.True(t, workflow.CanTransitionTo("lead-new", "lead-contacted", statuses))
	assert.False(t, workflow.CanTransitionTo("lead-contacted", "lead-new", statuses))

	quotation, err := repo.GetByID(ctx, "lead-quotation-sent")
	require.NoError(t, err)
	fired := workflow.FireRules(quotation, models.Entity{"days_since_quote": 3}, models.TriggerTimeBased)
	require.Len(t, fired, 1)
	assert.Equal(t, "quotation-follow-up", fired[0].RuleID)
}

func TestStatusRepository_UpsertAndDelete(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.StatusRepository()

	status := &models.WorkflowStatus{ID: "visit-planned", Name: "Planned", EntityType: models.EntityTypeVisit, Color: "#000000"}
	require.NoError(t, repo.Save(ctx, status))
	require.NoError(t, repo.Save(ctx, &models.WorkflowStatus{ID: "visit-done", Name: "Done", EntityType: models.EntityTypeVisit, Color: "#111111"}))

	status.Name = "Scheduled"
	status.AllowedTransitions = []string{"visit-done"}
	require.NoError(t, repo.Save(ctx, status))

	statuses, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Scheduled", statuses[0].Name)
	assert.Equal(t, []string{"visit-done"}, statuses[0].AllowedTransitions)
	assert.Equal(t, []models.AutomationRule{}, statuses[0].AutomationRules)

	require.NoError(t, repo.Delete(ctx, "visit-planned"))

	_, err = repo.GetByID(ctx, "visit-planned")
	assert.True(t, persistence.IsStatusNotFound(err))
	assert.True(t, persistence.IsStatusNotFound(repo.Delete(ctx, "visit-planned")))
}

func TestAssignmentRuleRepository(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AssignmentRuleRepository()

	for _, r := range workflow.DefaultAssignmentRules() {
		require.NoError(t, repo.Save(ctx, &r))
	}

	rule, err := repo.GetByID(ctx, "assign-cce-round-robin")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentRoundRobin, rule.Method)
	require.Len(t, rule.Criteria, 1)
	assert.Equal(t, "New", rule.Criteria[0].Value)

	rules, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	require.NoError(t, repo.Delete(ctx, "assign-cce-round-robin"))
	assert.True(t, persistence.IsAssignmentRuleNotFound(repo.Delete(ctx, "assign-cce-round-robin")))
}

func TestHistoryRepository(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.HistoryRepository()

	now := time.Now().UTC().Truncate(time.Millisecond)
	days := 1.5

	require.NoError(t, repo.Append(ctx, &models.StatusHistoryEntry{
		ID: uuid.NewString(), EntityType: models.EntityTypeLead, EntityID: "L1", ToStatus: "lead-new", ChangedBy: "system", Timestamp: now,
	}))
	require.NoError(t, repo.Append(ctx, &models.StatusHistoryEntry{
		ID: uuid.NewString(), EntityType: models.EntityTypeLead, EntityID: "L1", FromStatus: "lead-new", ToStatus: "lead-contacted",
		ChangedBy: "cce-1", Timestamp: now.Add(36 * time.Hour), Duration: &days,
	}))

	entries, err := repo.GetByEntity(ctx, models.EntityTypeLead, "L1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].Duration)
	assert.True(t, now.Equal(entries[0].Timestamp))

	latest, err := repo.Latest(ctx, models.EntityTypeLead, "L1")
	require.NoError(t, err)
	assert.Equal(t, "lead-contacted", latest.ToStatus)
	require.NotNil(t, latest.Duration)
	assert.InDelta(t, 1.5, *latest.Duration, 1e-9)

	_, err = repo.Latest(ctx, models.EntityTypeLead, "L2")
	assert.True(t, persistence.IsHistoryNotFound(err))
}

func TestHistoryRepository_SameTimestampKeepsAppendOrder(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.HistoryRepository()

	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, step := range [][2]string{{"", "lead-new"}, {"lead-new", "lead-contacted"}, {"lead-contacted", "lead-qualified"}} {
		require.NoError(t, repo.Append(ctx, &models.StatusHistoryEntry{
			ID: uuid.NewString(), EntityType: models.EntityTypeLead, EntityID: "L1", FromStatus: step[0], ToStatus: step[1], Timestamp: now,
		}))
	}

	entries, err := repo.GetByEntity(ctx, models.EntityTypeLead, "L1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "lead-new", entries[0].ToStatus)
	assert.Equal(t, "lead-qualified", entries[2].ToStatus)

	latest, err := repo.Latest(ctx, models.EntityTypeLead, "L1")
	require.NoError(t, err)
	assert.Equal(t, "lead-qualified", latest.ToStatus)
}

package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence/file"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/dukex/leadflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweeper(t *testing.T, source EntitySource) (*Sweeper, *services.Automation, *testutil.RecordingPublisher) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	_, err := services.SeedDefaults(context.Background(), p)
	require.NoError(t, err)

	publisher := &testutil.RecordingPublisher{}
	automation := services.NewAutomation(p, services.WithPublisher(publisher))

	sweeper, err := NewSweeper(p, source, automation, "@every 1m", metrics.New(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return sweeper, automation, publisher
}

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	source := NewMemorySource()
	sweeper, automation, publisher := newTestSweeper(t, source)

	_, err := automation.ChangeStatus(ctx, services.ChangeStatusRequest{
		EntityType: models.EntityTypeLead,
		EntityID:   "L3",
		ToStatusID: "lead-not-responding",
	})
	require.NoError(t, err)

	before := len(publisher.Published())

	source.Put(models.EntityTypeLead,
		Record{ID: "L1", StatusID: "lead-not-responding", Fields: models.Entity{"days_since_last_contact": 5}},
		Record{ID: "L2", StatusID: "lead-not-responding", Fields: models.Entity{"days_since_last_contact": 1}},
		Record{ID: "L3", Fields: models.Entity{"days_since_last_contact": "7"}},
		Record{ID: "L4", Fields: models.Entity{"days_since_last_contact": 9}},
		Record{ID: "L5", StatusID: "lead-ghost"},
	)

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, SweepReport{Entities: 5, Skipped: 2, FiredRules: 2, Actions: 2}, report)

	published := publisher.Published()[before:]
	require.Len(t, published, 2)

	var entityIDs []string
	for _, event := range published {
		resolved, ok := event.(events.ActionsResolved)
		require.True(t, ok)
		assert.Equal(t, models.TriggerTimeBased, resolved.Trigger)
		assert.Equal(t, "lead-not-responding", resolved.StatusID)
		entityIDs = append(entityIDs, resolved.EntityID)
	}

	assert.Equal(t, []string{"L1", "L3"}, entityIDs)
	assert.False(t, sweeper.Schedule().LastRunAt.IsZero())
}

func TestSweeper_StartStop(t *testing.T) {
	sweeper, _, _ := newTestSweeper(t, NewMemorySource())

	require.NoError(t, sweeper.Start(context.Background()))
	require.NoError(t, sweeper.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, sweeper.Stop(ctx))
	require.NoError(t, sweeper.Stop(ctx))
}

func TestNewSweeper_InvalidExpression(t *testing.T) {
	_, err := NewSweeper(nil, NewMemorySource(), nil, "every tuesday", nil, slog.New(slog.DiscardHandler))
	assert.ErrorIs(t, err, models.ErrInvalidSchedule)
}

func TestFileSource(t *testing.T) {
	root := t.TempDir()
	data := `[{"id":"L1","statusId":"lead-new","fields":{"source":"web"}}]`
	require.NoError(t, os.WriteFile(filepath.Join(root, "Lead.json"), []byte(data), 0o600))

	source := NewFileSource("file://" + root)

	records, err := source.Records(context.Background(), models.EntityTypeLead)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "lead-new", records[0].StatusID)
	assert.Equal(t, "web", records[0].Fields["source"])

	records, err = source.Records(context.Background(), models.EntityTypeVisit)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, os.WriteFile(filepath.Join(root, "Visit.json"), []byte("{"), 0o600))
	_, err = source.Records(context.Background(), models.EntityTypeVisit)
	assert.Error(t, err)
}

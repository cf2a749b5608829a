package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const rosterYAML = `
roles:
  Customer Care Executive: [alice, bob, carol]
  Field Executive: [dan, erin]
territories:
  north:
    Field Executive: [frank]
sources:
  web:
    Customer Care Executive: [carol]
`

func testRoster(t *testing.T) *Roster {
	t.Helper()

	roster, err := ParseRoster([]byte(rosterYAML))
	require.NoError(t, err)

	return roster
}

func TestRoster(t *testing.T) {
	roster := testRoster(t)

	assert.Equal(t, []string{"alice", "bob", "carol"}, roster.Members("Customer Care Executive"))
	assert.Equal(t, []string{"frank"}, roster.TerritoryMembers("north", "Field Executive"))
	assert.Equal(t, []string{"dan", "erin"}, roster.TerritoryMembers("south", "Field Executive"))
	assert.Equal(t, []string{"carol"}, roster.SourceMembers("web", "Customer Care Executive"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, roster.SourceMembers("referral", "Customer Care Executive"))
	assert.Empty(t, roster.Members("Accounts"))

	var missing *Roster
	assert.Empty(t, missing.Members("x"))

	_, err := ParseRoster([]byte("roles: [unclosed"))
	assert.Error(t, err)
}

func TestPicker(t *testing.T) {
	ctx := context.Background()
	cce := "Customer Care Executive"

	tests := []struct {
		name   string
		target models.AssignTo
		entity models.Entity
		want   []string
		err    error
	}{
		{name: "round robin cycles", target: models.AssignTo{Role: cce, Method: "round_robin"}, want: []string{"alice", "bob", "carol", "alice"}},
		{name: "empty method is round robin", target: models.AssignTo{Role: cce}, want: []string{"alice", "bob"}},
		{name: "territory", target: models.AssignTo{Role: "Field Executive", Method: "territory"}, entity: models.Entity{"territory": "north"}, want: []string{"frank", "frank"}},
		{name: "territory fallback", target: models.AssignTo{Role: "Field Executive", Method: "territory"}, want: []string{"dan", "erin"}},
		{name: "source", target: models.AssignTo{Role: cce, Method: "source"}, entity: models.Entity{"source": "web"}, want: []string{"carol", "carol"}},
		{name: "unknown source falls back to role", target: models.AssignTo{Role: cce, Method: "source"}, entity: models.Entity{"source": "referral"}, want: []string{"alice", "bob"}},
		{name: "workload spreads evenly", target: models.AssignTo{Role: cce, Method: "workload"}, want: []string{"alice", "bob", "carol", "alice"}},
		{name: "specific cycles listed users", target: models.AssignTo{Role: cce, Method: "specific", Users: []string{"carol", "alice"}}, want: []string{"carol", "alice", "carol"}},
		{name: "users narrow round robin", target: models.AssignTo{Role: cce, Method: "round_robin", Users: []string{"bob", "zoe"}}, want: []string{"bob", "bob"}},
		{name: "specific without users", target: models.AssignTo{Role: cce, Method: "specific"}, err: ErrNoSpecificUsers},
		{name: "specific users outside role", target: models.AssignTo{Role: cce, Method: "specific", Users: []string{"zoe"}}, err: ErrEmptyRole},
		{name: "manual", target: models.AssignTo{Role: cce, Method: "manual"}, err: ErrManualAssignment},
		{name: "empty role", target: models.AssignTo{Role: "Accounts", Method: "round_robin"}, err: ErrEmptyRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picker := NewPicker(StaticRoster{R: testRoster(t)}, NewMemoryStore())

			if tt.err != nil {
				_, err := picker.Pick(ctx, tt.target, tt.entity)
				assert.ErrorIs(t, err, tt.err)

				return
			}

			got := make([]string, 0, len(tt.want))
			for range tt.want {
				assignee, err := picker.Pick(ctx, tt.target, tt.entity)
				require.NoError(t, err)

				got = append(got, assignee)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPicker_AssignmentRuleTarget(t *testing.T) {
	rule := models.AssignmentRule{
		Name:          "VIP",
		EntityType:    models.EntityTypeLead,
		Method:        models.AssignmentSpecific,
		AssignToRole:  "Customer Care Executive",
		SpecificUsers: []string{"bob"},
	}

	picker := NewPicker(StaticRoster{R: testRoster(t)}, NewMemoryStore())

	assignee, err := picker.Pick(context.Background(), rule.Target(), nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", assignee)
}

func TestRosterFile_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rosterYAML), 0o600))

	rf, err := NewRosterFile(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Len(t, rf.Roster().Members("Customer Care Executive"), 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- rf.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  Customer Care Executive: [zoe]\n"), 0o600))

	assert.Eventually(t, func() bool {
		return len(rf.Roster().Members("Customer Care Executive")) == 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestNewRosterFile_Missing(t *testing.T) {
	_, err := NewRosterFile(filepath.Join(t.TempDir(), "none.yaml"), slog.Default())
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	store, err := NewRedisStoreFromURL(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	picker := NewPicker(StaticRoster{R: testRoster(t)}, store)

	var got []string
	for range 4 {
		assignee, err := picker.Pick(ctx, models.AssignTo{Role: "Customer Care Executive", Method: "workload"}, nil)
		require.NoError(t, err)

		got = append(got, assignee)
	}

	assert.Equal(t, []string{"alice", "bob", "carol", "alice"}, got)

	first, err := store.Next(ctx, "cursor-test")
	require.NoError(t, err)
	second, err := store.Next(ctx, "cursor-test")
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}

func TestNewRedisStoreFromURL_Invalid(t *testing.T) {
	_, err := NewRedisStoreFromURL(context.Background(), "not a url")
	assert.Error(t, err)
}

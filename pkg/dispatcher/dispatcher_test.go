package dispatcher_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/leadflow/pkg/assignment"
	"github.com/dukex/leadflow/pkg/channels/gochannel"
	"github.com/dukex/leadflow/pkg/dispatcher"
	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

type recordingExecutor struct {
	actionType models.ActionType
	err        error
	seen       []models.RuleAction
}

func (e *recordingExecutor) Type() models.ActionType { return e.actionType }

func (e *recordingExecutor) Execute(_ context.Context, _ *events.ActionsResolved, action models.RuleAction) error {
	e.seen = append(e.seen, action)

	return e.err
}

func resolvedEvent(actions ...models.RuleAction) *events.ActionsResolved {
	return &events.ActionsResolved{
		BaseEvent: events.NewBaseEvent(events.ActionsResolvedEvent, models.EntityTypeLead, "L1"),
		StatusID:  "lead-new",
		Trigger:   models.TriggerStatusChange,
		Actions:   actions,
		Entity:    models.Entity{"territory": "north"},
	}
}

func newRoster(t *testing.T) *assignment.Roster {
	t.Helper()

	roster, err := assignment.ParseRoster([]byte("roles:\n  Customer Care Executive: [alice, bob]\n"))
	require.NoError(t, err)

	return roster
}

func TestDispatcher_RoutesByType(t *testing.T) {
	d := dispatcher.New(metrics.New(), nil, discard)

	tasks := &recordingExecutor{actionType: models.ActionCreateTask}
	failing := &recordingExecutor{actionType: models.ActionWebhook, err: errors.New("timeout")}
	fallback := &recordingExecutor{actionType: "log"}

	d.Register(tasks)
	d.Register(failing)

	err := d.Handle(context.Background(), resolvedEvent(
		models.NewCreateTask(models.CreateTask{Title: "Contact New Lead"}),
		models.RuleAction{Type: models.ActionWebhook, Params: models.Webhook{URL: "https://example.com"}},
		models.NewSendNotification("hi"),
	))
	require.NoError(t, err)

	assert.Len(t, tasks.seen, 1)
	assert.Len(t, failing.seen, 1)
	assert.Empty(t, fallback.seen)

	d.SetFallback(fallback)
	require.NoError(t, d.Handle(context.Background(), resolvedEvent(models.NewSendNotification("hi"))))
	assert.Len(t, fallback.seen, 1)
}

func TestDispatcher_IgnoresForeignEvents(t *testing.T) {
	d := dispatcher.New(nil, nil, discard)

	assert.NoError(t, d.Handle(context.Background(), &events.StatusChanged{}))
}

func TestAssignExecutor(t *testing.T) {
	publisher := &testutil.RecordingPublisher{}
	picker := assignment.NewPicker(assignment.StaticRoster{R: newRoster(t)}, assignment.NewMemoryStore())
	executor := dispatcher.NewAssignExecutor(picker, publisher, discard)

	event := resolvedEvent(models.NewAssignTo("Customer Care Executive", "round_robin"))

	for range 3 {
		require.NoError(t, executor.Execute(context.Background(), event, event.Actions[0]))
	}

	published := publisher.Published()
	require.Len(t, published, 3)

	var assignees []string
	for _, e := range published {
		selected, ok := e.(events.AssigneeSelected)
		require.True(t, ok)
		assert.Equal(t, "Customer Care Executive", selected.Role)
		assignees = append(assignees, selected.Assignee)
	}

	assert.Equal(t, []string{"alice", "bob", "alice"}, assignees)
	assert.Equal(t, "Lead:L1", publisher.Keys[0])

	require.NoError(t, executor.Execute(context.Background(), event, models.NewAssignTo("Customer Care Executive", "manual")))
	assert.Len(t, publisher.Published(), 3)

	err := executor.Execute(context.Background(), event, models.NewAssignTo("Accounts", "round_robin"))
	assert.ErrorIs(t, err, assignment.ErrEmptyRole)

	err = executor.Execute(context.Background(), event, models.RuleAction{Type: models.ActionAssignTo, Params: models.OpaqueParams{}})
	assert.ErrorIs(t, err, models.ErrInvalidActionParams)
}

func TestLogExecutor(t *testing.T) {
	executor := dispatcher.NewLogExecutor(discard)

	assert.Equal(t, models.ActionType("log"), executor.Type())
	assert.NoError(t, executor.Execute(context.Background(), resolvedEvent(), models.NewUpdateField("stage", "won")))
}

func TestDispatcher_OverEventBus(t *testing.T) {
	// The handler publishes on the same topic, so publishing must not wait for acks.
	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(discard))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	selected := make(chan *events.AssigneeSelected, 1)
	require.NoError(t, bus.Handle(events.AssigneeSelectedEvent, func(_ context.Context, event any) error {
		selected <- event.(*events.AssigneeSelected)

		return nil
	}))

	picker := assignment.NewPicker(assignment.StaticRoster{R: newRoster(t)}, assignment.NewMemoryStore())

	d := dispatcher.New(metrics.New(), nil, discard)
	d.Register(dispatcher.NewAssignExecutor(picker, bus, discard))
	d.SetFallback(dispatcher.NewLogExecutor(discard))
	require.NoError(t, d.Subscribe(bus))
	require.NoError(t, bus.Subscribe(ctx))

	event := resolvedEvent(
		models.NewAssignTo("Customer Care Executive", "round_robin"),
		models.NewCreateTask(models.CreateTask{Title: "Contact New Lead"}),
	)
	require.NoError(t, bus.Publish(ctx, event.Key(), *event))

	select {
	case got := <-selected:
		assert.Equal(t, "alice", got.Assignee)
		assert.Equal(t, "L1", got.EntityID)
	case <-time.After(5 * time.Second):
		t.Fatal("assignee not selected")
	}
}

// Package dispatcher routes resolved actions to the executor registered for their type.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Executor carries out one action type.
type Executor interface {
	Type() models.ActionType
	Execute(ctx context.Context, event *events.ActionsResolved, action models.RuleAction) error
}

type Dispatcher struct {
	mu        sync.RWMutex
	executors map[models.ActionType]Executor
	fallback  Executor

	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

func New(m *metrics.Metrics, tracer trace.Tracer, logger *slog.Logger) *Dispatcher {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Dispatcher{
		executors: make(map[models.ActionType]Executor),
		metrics:   m,
		tracer:    tracer,
		logger:    logger.With("module", "dispatcher"),
	}
}

func (d *Dispatcher) Register(executor Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.executors[executor.Type()] = executor
}

// SetFallback handles every action type without a registered executor.
func (d *Dispatcher) SetFallback(executor Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fallback = executor
}

func (d *Dispatcher) executorFor(actionType models.ActionType) (Executor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if executor, ok := d.executors[actionType]; ok {
		return executor, true
	}

	return d.fallback, d.fallback != nil
}

// Subscribe registers the dispatcher for ActionsResolved events on bus.
func (d *Dispatcher) Subscribe(bus eventbus.EventSubscriber) error {
	return bus.Handle(events.ActionsResolvedEvent, d.Handle)
}

// Handle is the eventbus handler. Executor failures are logged and counted
// but never returned: redelivery would repeat the actions that succeeded.
func (d *Dispatcher) Handle(ctx context.Context, event any) error {
	resolved, ok := event.(*events.ActionsResolved)
	if !ok {
		d.logger.ErrorContext(ctx, "Invalid event type for ActionsResolved")

		return nil
	}

	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "dispatcher.actions_resolved",
		attribute.String(otelhelper.EventIDKey, resolved.ID),
		attribute.String(otelhelper.EntityTypeKey, string(resolved.EntityType)),
		attribute.String(otelhelper.EntityIDKey, resolved.EntityID),
		attribute.String(otelhelper.StatusIDKey, resolved.StatusID),
		attribute.String(otelhelper.TriggerKey, string(resolved.Trigger)),
		attribute.Int(otelhelper.ActionCountKey, len(resolved.Actions)),
	)
	defer span.End()

	logger := d.logger.With(
		"event_id", resolved.ID,
		"entity_type", resolved.EntityType,
		"entity_id", resolved.EntityID,
		"status_id", resolved.StatusID,
	)

	for _, action := range resolved.Actions {
		executor, ok := d.executorFor(action.Type)
		if !ok {
			logger.WarnContext(ctx, "No executor for action type", "action_type", action.Type)
			d.metrics.ActionDispatched(string(action.Type), ResultSkipped)

			continue
		}

		if err := executor.Execute(ctx, resolved, action); err != nil {
			logger.ErrorContext(ctx, "Action failed", "action_type", action.Type, "error", err)
			otelhelper.SetError(span, err, attribute.String(otelhelper.ActionTypeKey, string(action.Type)))
			d.metrics.ActionDispatched(string(action.Type), ResultError)

			continue
		}

		d.metrics.ActionDispatched(string(action.Type), ResultOK)
	}

	return nil
}

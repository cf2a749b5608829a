package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/leadflow/pkg/assignment"
	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/models"
)

// AssignExecutor picks an assignee for assign_to actions and publishes
// AssigneeSelected. It does not write to the record.
type AssignExecutor struct {
	picker    *assignment.Picker
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewAssignExecutor(picker *assignment.Picker, publisher eventbus.EventPublisher, logger *slog.Logger) *AssignExecutor {
	return &AssignExecutor{picker: picker, publisher: publisher, logger: logger.With("executor", models.ActionAssignTo)}
}

func (e *AssignExecutor) Type() models.ActionType {
	return models.ActionAssignTo
}

func (e *AssignExecutor) Execute(ctx context.Context, event *events.ActionsResolved, action models.RuleAction) error {
	params, ok := action.Params.(models.AssignTo)
	if !ok {
		return fmt.Errorf("%w: assign_to params have type %T", models.ErrInvalidActionParams, action.Params)
	}

	assignee, err := e.picker.Pick(ctx, params, event.Entity)
	if errors.Is(err, assignment.ErrManualAssignment) {
		e.logger.InfoContext(ctx, "Assignment left for manual choice", "entity_id", event.EntityID, "role", params.Role)

		return nil
	}

	if err != nil {
		return err
	}

	selected := events.AssigneeSelected{
		BaseEvent: events.NewBaseEvent(events.AssigneeSelectedEvent, event.EntityType, event.EntityID),
		Role:      params.Role,
		Method:    params.Method,
		Assignee:  assignee,
	}

	if err := e.publisher.Publish(ctx, selected.Key(), selected); err != nil {
		return fmt.Errorf("failed to publish assignee: %w", err)
	}

	e.logger.InfoContext(ctx, "Assignee selected", "entity_id", event.EntityID, "role", params.Role, "assignee", assignee)

	return nil
}

// LogExecutor records the action payload. It stands in for delivery
// channels such as tasks, email and webhooks.
type LogExecutor struct {
	logger *slog.Logger
}

func NewLogExecutor(logger *slog.Logger) *LogExecutor {
	return &LogExecutor{logger: logger.With("executor", "log")}
}

func (e *LogExecutor) Type() models.ActionType {
	return "log"
}

func (e *LogExecutor) Execute(ctx context.Context, event *events.ActionsResolved, action models.RuleAction) error {
	params, err := action.ParamsMap()
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Executing action",
		"action_type", action.Type,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"status_id", event.StatusID,
		"params", params,
	)

	return nil
}

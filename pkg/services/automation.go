package services

import (
	"context"
	"fmt"

	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/workflow"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Automation applies status changes and resolves automation rules for
// entity records, recording history and publishing the resulting events.
type Automation struct {
	persistence persistence.Persistence
	opts        options
}

func NewAutomation(persistence persistence.Persistence, opts ...Option) *Automation {
	return &Automation{
		persistence: persistence,
		opts:        newOptions(opts),
	}
}

type ChangeStatusRequest struct {
	EntityType models.EntityType `json:"entityType" validate:"required"`
	EntityID   string            `json:"entityId"   validate:"required"`
	// FromStatusID must name the current status; empty only for a record without history.
	FromStatusID string        `json:"fromStatusId"`
	ToStatusID   string        `json:"toStatusId"   validate:"required"`
	Entity       models.Entity `json:"entity"`
	ChangedBy    string        `json:"changedBy"`
	Notes        string        `json:"notes"`
}

// EntityEvent identifies a record and its field snapshot for rule evaluation.
// StatusID empty means the current status is taken from history.
type EntityEvent struct {
	EntityType models.EntityType `json:"entityType" validate:"required"`
	EntityID   string            `json:"entityId"   validate:"required"`
	StatusID   string            `json:"statusId,omitempty"`
	Entity     models.Entity     `json:"entity"`
}

// Resolution is the outcome of firing one trigger on one status.
type Resolution struct {
	StatusID   string               `json:"statusId"`
	Trigger    models.TriggerKind   `json:"trigger"`
	FiredRules []workflow.FiredRule `json:"firedRules"`
	Actions    []models.RuleAction  `json:"actions"`
}

type ChangeStatusResult struct {
	History *models.StatusHistoryEntry `json:"history"`
	Resolution
}

func newResolution(statusID string, trigger models.TriggerKind, fired []workflow.FiredRule) Resolution {
	resolution := Resolution{
		StatusID:   statusID,
		Trigger:    trigger,
		FiredRules: []workflow.FiredRule{},
		Actions:    []models.RuleAction{},
	}

	for _, rule := range fired {
		resolution.FiredRules = append(resolution.FiredRules, rule)
		resolution.Actions = append(resolution.Actions, rule.Actions...)
	}

	return resolution
}

// ChangeStatus moves a record to ToStatusID when the registry allows it,
// appends the history entry and resolves the status_change rules of the
// target status.
func (a *Automation) ChangeStatus(ctx context.Context, req ChangeStatusRequest) (result *ChangeStatusResult, err error) {
	ctx, span := otelhelper.StartSpan(ctx, a.opts.tracer, "automation.change_status",
		attribute.String(otelhelper.EntityTypeKey, string(req.EntityType)),
		attribute.String(otelhelper.EntityIDKey, req.EntityID),
		attribute.String(otelhelper.StatusIDKey, req.FromStatusID),
		attribute.String(otelhelper.TargetStatusKey, req.ToStatusID),
	)
	defer span.End()
	defer func() { otelhelper.SetError(span, err) }()

	if err := validateRequest("ChangeStatus", req, req.EntityType); err != nil {
		return nil, err
	}

	statuses, err := a.persistence.StatusRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	target, ok := workflow.StatusByID(req.ToStatusID, statuses)
	if !ok {
		return nil, persistence.NewStatusError("ChangeStatus", req.ToStatusID, ErrStatusNotFound)
	}

	if target.EntityType != req.EntityType {
		return nil, NewValidationError("ChangeStatus", "ENTITY_TYPE_MISMATCH",
			fmt.Sprintf("status %s belongs to %s, not %s", target.ID, target.EntityType, req.EntityType), ErrEntityTypeMismatch)
	}

	previous, err := a.persistence.HistoryRepository().Latest(ctx, req.EntityType, req.EntityID)
	if err != nil {
		if !persistence.IsHistoryNotFound(err) {
			return nil, fmt.Errorf("failed to read status history: %w", err)
		}

		previous = nil
	}

	if reason := checkTransition(previous, req, statuses); reason != "" {
		a.opts.metrics.TransitionRejected(string(req.EntityType))

		return nil, &ServiceError{
			Op:      "ChangeStatus",
			Code:    "TRANSITION_NOT_ALLOWED",
			Message: reason,
			Err:     ErrTransitionNotAllowed,
		}
	}

	entry, err := a.recordHistory(ctx, req, previous)
	if err != nil {
		return nil, err
	}

	a.opts.metrics.StatusChanged(string(req.EntityType), target.ID)
	a.opts.logger.InfoContext(ctx, "Status changed",
		"entity_type", req.EntityType,
		"entity_id", req.EntityID,
		"from_status", req.FromStatusID,
		"to_status", target.ID,
	)

	changed := events.StatusChanged{
		BaseEvent:  events.NewBaseEvent(events.StatusChangedEvent, req.EntityType, req.EntityID),
		FromStatus: req.FromStatusID,
		ToStatus:   target.ID,
		ChangedBy:  req.ChangedBy,
		Notes:      req.Notes,
		HistoryID:  entry.ID,
	}
	if entry.Duration != nil {
		changed.Duration = *entry.Duration
	}

	a.publish(ctx, changed.Key(), changed)

	resolution := a.Fire(ctx, target, models.TriggerStatusChange, EntityEvent{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		StatusID:   target.ID,
		Entity:     req.Entity,
	})
	span.SetAttributes(attribute.Int(otelhelper.ActionCountKey, len(resolution.Actions)))

	return &ChangeStatusResult{History: entry, Resolution: resolution}, nil
}

// checkTransition returns why req cannot move the record, or "" when it can.
// Once a record has history, FromStatusID must name its current status.
func checkTransition(previous *models.StatusHistoryEntry, req ChangeStatusRequest, statuses []models.WorkflowStatus) string {
	if previous != nil && req.FromStatusID != previous.ToStatus {
		if req.FromStatusID == "" {
			return fmt.Sprintf("%s %s is already in %s", req.EntityType, req.EntityID, previous.ToStatus)
		}

		return fmt.Sprintf("%s %s is in %s, not %s", req.EntityType, req.EntityID, previous.ToStatus, req.FromStatusID)
	}

	if req.FromStatusID != "" && !workflow.CanTransitionTo(req.FromStatusID, req.ToStatusID, statuses) {
		return fmt.Sprintf("cannot move from %s to %s", req.FromStatusID, req.ToStatusID)
	}

	return ""
}

func (a *Automation) recordHistory(ctx context.Context, req ChangeStatusRequest, previous *models.StatusHistoryEntry) (*models.StatusHistoryEntry, error) {
	now := a.opts.now().UTC()
	entry := &models.StatusHistoryEntry{
		ID:         uuid.NewString(),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		FromStatus: req.FromStatusID,
		ToStatus:   req.ToStatusID,
		ChangedBy:  req.ChangedBy,
		Timestamp:  now,
		Notes:      req.Notes,
	}

	if previous != nil {
		days := now.Sub(previous.Timestamp).Hours() / 24
		entry.Duration = &days
	}

	if err := a.persistence.HistoryRepository().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}

	return entry, nil
}

// FieldUpdated resolves the field_update rules of the record's current status.
func (a *Automation) FieldUpdated(ctx context.Context, req EntityEvent) (result *Resolution, err error) {
	ctx, span := otelhelper.StartSpan(ctx, a.opts.tracer, "automation.field_updated",
		attribute.String(otelhelper.EntityTypeKey, string(req.EntityType)),
		attribute.String(otelhelper.EntityIDKey, req.EntityID),
	)
	defer span.End()
	defer func() { otelhelper.SetError(span, err) }()

	if err := validateRequest("FieldUpdated", req, req.EntityType); err != nil {
		return nil, err
	}

	if req.StatusID == "" {
		req.StatusID, err = a.CurrentStatus(ctx, req.EntityType, req.EntityID)
		if err != nil {
			return nil, err
		}
	}

	status, err := a.persistence.StatusRepository().GetByID(ctx, req.StatusID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	if status.EntityType != req.EntityType {
		return nil, NewValidationError("FieldUpdated", "ENTITY_TYPE_MISMATCH",
			fmt.Sprintf("status %s belongs to %s, not %s", status.ID, status.EntityType, req.EntityType), ErrEntityTypeMismatch)
	}

	resolution := a.Fire(ctx, status, models.TriggerFieldUpdate, req)

	return &resolution, nil
}

// Fire resolves trigger on an already loaded status and publishes an
// ActionsResolved event when any rule fired.
func (a *Automation) Fire(ctx context.Context, status *models.WorkflowStatus, trigger models.TriggerKind, req EntityEvent) Resolution {
	statusID := req.StatusID
	if status != nil {
		statusID = status.ID
	}

	resolution := newResolution(statusID, trigger, workflow.FireRules(status, req.Entity, trigger))

	a.opts.metrics.RulesFired(string(trigger), len(resolution.FiredRules))

	if len(resolution.FiredRules) == 0 {
		return resolution
	}

	ruleIDs := make([]string, 0, len(resolution.FiredRules))
	for _, rule := range resolution.FiredRules {
		ruleIDs = append(ruleIDs, rule.RuleID)
	}

	for _, action := range resolution.Actions {
		a.opts.metrics.ActionResolved(string(action.Type))
	}

	a.opts.logger.DebugContext(ctx, "Automation rules fired",
		"entity_type", req.EntityType,
		"entity_id", req.EntityID,
		"status_id", statusID,
		"trigger", trigger,
		"rule_ids", ruleIDs,
	)

	resolved := events.ActionsResolved{
		BaseEvent: events.NewBaseEvent(events.ActionsResolvedEvent, req.EntityType, req.EntityID),
		StatusID:  statusID,
		Trigger:   trigger,
		RuleIDs:   ruleIDs,
		Actions:   resolution.Actions,
		Entity:    req.Entity,
	}

	a.publish(ctx, resolved.Key(), resolved)

	return resolution
}

// ResolveActions evaluates trigger on a stored status without side effects.
func (a *Automation) ResolveActions(ctx context.Context, statusID string, entity models.Entity, trigger models.TriggerKind) (*Resolution, error) {
	if !trigger.IsValid() {
		return nil, NewValidationError("ResolveActions", "INVALID_TRIGGER", "unknown trigger "+string(trigger), ErrInvalidTrigger)
	}

	status, err := a.persistence.StatusRepository().GetByID(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	resolution := newResolution(status.ID, trigger, workflow.FireRules(status, entity, trigger))

	return &resolution, nil
}

// CurrentStatus is the target of the latest recorded status change.
func (a *Automation) CurrentStatus(ctx context.Context, entityType models.EntityType, entityID string) (string, error) {
	latest, err := a.persistence.HistoryRepository().Latest(ctx, entityType, entityID)
	if err != nil {
		if persistence.IsHistoryNotFound(err) {
			return "", fmt.Errorf("%s %s: %w", entityType, entityID, ErrCurrentStatusRequired)
		}

		return "", fmt.Errorf("failed to read status history: %w", err)
	}

	return latest.ToStatus, nil
}

func (a *Automation) History(ctx context.Context, entityType models.EntityType, entityID string) ([]models.StatusHistoryEntry, error) {
	if !entityType.IsValid() {
		return nil, NewValidationError("History", "INVALID_ENTITY_TYPE", "unknown entity type "+string(entityType), ErrInvalidEntityType)
	}

	entries, err := a.persistence.HistoryRepository().GetByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to read status history: %w", err)
	}

	return entries, nil
}

// publish never fails the caller: the history entry is already stored.
func (a *Automation) publish(ctx context.Context, key string, event eventbus.Event) {
	if a.opts.publisher == nil {
		return
	}

	if err := a.opts.publisher.Publish(ctx, key, event); err != nil {
		a.opts.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}

func validateRequest(op string, req any, entityType models.EntityType) error {
	if err := validate.Struct(req); err != nil {
		return NewValidationError(op, "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	if !entityType.IsValid() {
		return NewValidationError(op, "INVALID_ENTITY_TYPE", "unknown entity type "+string(entityType), ErrInvalidEntityType)
	}

	return nil
}

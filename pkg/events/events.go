// Package events defines the event types published when entity statuses change and rules fire.
package events

import (
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every leadflow event.
const Topic = "leadflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	StatusChangedEvent    EventType = "status.changed"
	ActionsResolvedEvent  EventType = "actions.resolved"
	AssigneeSelectedEvent EventType = "assignee.selected"
)

type BaseEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	EntityType models.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, entityType models.EntityType, entityID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		EntityType: entityType,
		EntityID:   entityID,
	}
}

// Key is the partition key: events of one entity stay ordered.
func (b BaseEvent) Key() string {
	return string(b.EntityType) + ":" + b.EntityID
}

type StatusChanged struct {
	BaseEvent

	FromStatus string  `json:"from_status,omitempty"`
	ToStatus   string  `json:"to_status"`
	ChangedBy  string  `json:"changed_by"`
	Notes      string  `json:"notes,omitempty"`
	HistoryID  string  `json:"history_id"`
	Duration   float64 `json:"duration_days,omitempty"`
}

func (StatusChanged) GetType() EventType {
	return StatusChangedEvent
}

// ActionsResolved carries the declarative actions of the rules that fired
// for one trigger. Executors consume it; the entity snapshot travels along
// so they do not need to read the record back.
type ActionsResolved struct {
	BaseEvent

	StatusID string              `json:"status_id"`
	Trigger  models.TriggerKind  `json:"trigger"`
	RuleIDs  []string            `json:"rule_ids"`
	Actions  []models.RuleAction `json:"actions"`
	Entity   models.Entity       `json:"entity,omitempty"`
}

func (ActionsResolved) GetType() EventType {
	return ActionsResolvedEvent
}

type AssigneeSelected struct {
	BaseEvent

	Role     string `json:"role"`
	Method   string `json:"method"`
	Assignee string `json:"assignee"`
}

func (AssigneeSelected) GetType() EventType {
	return AssigneeSelectedEvent
}

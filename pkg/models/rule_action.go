package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionType tags the payload carried by a RuleAction.
type ActionType string

const (
	ActionAssignTo         ActionType = "assign_to"
	ActionCreateTask       ActionType = "create_task"
	ActionSendNotification ActionType = "send_notification"
	ActionUpdateField      ActionType = "update_field"
	ActionCreateRecord     ActionType = "create_record"
	ActionSendEmail        ActionType = "send_email"
	ActionWebhook          ActionType = "webhook"
)

// IsKnown reports whether the action type has a typed payload.
func (t ActionType) IsKnown() bool {
	switch t {
	case ActionAssignTo, ActionCreateTask, ActionSendNotification, ActionUpdateField,
		ActionCreateRecord, ActionSendEmail, ActionWebhook:
		return true
	default:
		return false
	}
}

// ActionParams is the payload of a RuleAction. The concrete type is
// determined by the action's Type.
type ActionParams interface {
	isActionParams()
}

// AssignTo hands the entity to someone holding Role, picked by Method.
// Users narrows the candidates to those role holders.
type AssignTo struct {
	Role   string   `json:"role"`
	Method string   `json:"method,omitempty"`
	Users  []string `json:"users,omitempty"`
}

// CreateTask asks the executor to open a follow-up task.
type CreateTask struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	AssignToRole string `json:"assignToRole,omitempty"`
	Priority     string `json:"priority,omitempty"`
}

type SendNotification struct {
	Message     string   `json:"message"`
	NotifyRoles []string `json:"notifyRoles,omitempty"`
}

type UpdateField struct {
	Field string `json:"field"`
	Value any    `json:"value,omitempty"`
}

type CreateRecord struct {
	EntityType EntityType     `json:"entityType"`
	Fields     map[string]any `json:"fields,omitempty"`
}

type SendEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

type Webhook struct {
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
}

// OpaqueParams carries the payload of an action type this build does not
// know. It is passed through to executors untouched.
type OpaqueParams map[string]any

func (AssignTo) isActionParams()         {}
func (CreateTask) isActionParams()       {}
func (SendNotification) isActionParams() {}
func (UpdateField) isActionParams()      {}
func (CreateRecord) isActionParams()     {}
func (SendEmail) isActionParams()        {}
func (Webhook) isActionParams()          {}
func (OpaqueParams) isActionParams()     {}

// RuleAction is a declarative instruction emitted by a fired rule.
// On the wire it keeps the {"type": ..., "params": {...}} shape.
type RuleAction struct {
	Type   ActionType
	Params ActionParams
}

func NewAssignTo(role, method string) RuleAction {
	return RuleAction{Type: ActionAssignTo, Params: AssignTo{Role: role, Method: method}}
}

func NewCreateTask(params CreateTask) RuleAction {
	return RuleAction{Type: ActionCreateTask, Params: params}
}

func NewSendNotification(message string, notifyRoles ...string) RuleAction {
	return RuleAction{Type: ActionSendNotification, Params: SendNotification{Message: message, NotifyRoles: notifyRoles}}
}

func NewUpdateField(field string, value any) RuleAction {
	return RuleAction{Type: ActionUpdateField, Params: UpdateField{Field: field, Value: value}}
}

type ruleActionWire struct {
	Type   ActionType      `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (a RuleAction) MarshalJSON() ([]byte, error) {
	var params any = a.Params
	if a.Params == nil {
		params = map[string]any{}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", a.Type, err)
	}

	return json.Marshal(ruleActionWire{Type: a.Type, Params: raw})
}

// UnmarshalJSON implements json.Unmarshaler, decoding params into the
// payload struct selected by type.
func (a *RuleAction) UnmarshalJSON(data []byte) error {
	var wire ruleActionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	raw := wire.Params
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = []byte("{}")
	}

	params, err := decodeParams(wire.Type, raw)
	if err != nil {
		return fmt.Errorf("invalid params for action %q: %w", wire.Type, err)
	}

	a.Type = wire.Type
	a.Params = params

	return nil
}

// ParamsMap returns the payload as a generic map, the shape executors and
// schemas work with.
func (a RuleAction) ParamsMap() (map[string]any, error) {
	if opaque, ok := a.Params.(OpaqueParams); ok {
		return map[string]any(opaque), nil
	}

	var params any = a.Params
	if a.Params == nil {
		params = map[string]any{}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func decodeParams(actionType ActionType, raw []byte) (ActionParams, error) {
	switch actionType {
	case ActionAssignTo:
		return decodeInto[AssignTo](raw)
	case ActionCreateTask:
		return decodeInto[CreateTask](raw)
	case ActionSendNotification:
		return decodeInto[SendNotification](raw)
	case ActionUpdateField:
		return decodeInto[UpdateField](raw)
	case ActionCreateRecord:
		return decodeInto[CreateRecord](raw)
	case ActionSendEmail:
		return decodeInto[SendEmail](raw)
	case ActionWebhook:
		return decodeInto[Webhook](raw)
	default:
		return decodeInto[OpaqueParams](raw)
	}
}

func decodeInto[T ActionParams](raw []byte) (ActionParams, error) {
	var params T
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}

	return params, nil
}

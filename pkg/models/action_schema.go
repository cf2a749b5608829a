package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidActionParams is returned when an action payload does not match
// the schema of its type.
var ErrInvalidActionParams = errors.New("invalid action params")

var priorities = []string{"Low", "Medium", "High", "Urgent"}

var assignmentMethods = []string{"round_robin", "territory", "source", "workload", "manual", "specific"}

// ActionSchema returns the JSON schema describing the params of a known
// action type, or nil for types passed through opaquely.
func ActionSchema(actionType ActionType) map[string]any {
	switch actionType {
	case ActionAssignTo:
		return objectSchema([]string{"role"}, map[string]any{
			"role":   map[string]any{"type": "string", "minLength": 1},
			"method": map[string]any{"type": "string", "enum": assignmentMethods},
			"users":  map[string]any{"type": "array", "items": map[string]any{"type": "string", "minLength": 1}},
		})
	case ActionCreateTask:
		return objectSchema([]string{"title"}, map[string]any{
			"title":        map[string]any{"type": "string", "minLength": 1},
			"description":  map[string]any{"type": "string"},
			"assignToRole": map[string]any{"type": "string"},
			"priority":     map[string]any{"type": "string", "enum": priorities},
		})
	case ActionSendNotification:
		return objectSchema([]string{"message"}, map[string]any{
			"message":     map[string]any{"type": "string", "minLength": 1},
			"notifyRoles": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		})
	case ActionUpdateField:
		return objectSchema([]string{"field"}, map[string]any{
			"field": map[string]any{"type": "string", "minLength": 1},
		})
	case ActionCreateRecord:
		return objectSchema([]string{"entityType"}, map[string]any{
			"entityType": map[string]any{"type": "string", "enum": entityTypeNames()},
			"fields":     map[string]any{"type": "object"},
		})
	case ActionSendEmail:
		return objectSchema([]string{"to"}, map[string]any{
			"to":      map[string]any{"type": "string", "minLength": 1},
			"subject": map[string]any{"type": "string"},
			"body":    map[string]any{"type": "string"},
		})
	case ActionWebhook:
		return objectSchema([]string{"url"}, map[string]any{
			"url":    map[string]any{"type": "string", "format": "uri"},
			"method": map[string]any{"type": "string", "enum": []string{"GET", "POST", "PUT"}},
		})
	default:
		return nil
	}
}

// ValidateActionParams checks the payload of an action against the schema
// of its type. Unknown types always validate.
func ValidateActionParams(action RuleAction) error {
	schema := ActionSchema(action.Type)
	if schema == nil {
		return nil
	}

	params, err := action.ParamsMap()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidActionParams, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(params))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidActionParams, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}

		return fmt.Errorf("%w: %s: %s", ErrInvalidActionParams, action.Type, strings.Join(details, "; "))
	}

	return nil
}

func objectSchema(required []string, properties map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"required":   required,
		"properties": properties,
	}
}

func entityTypeNames() []string {
	names := make([]string, 0, len(EntityTypes()))
	for _, t := range EntityTypes() {
		names = append(names, string(t))
	}

	return names
}

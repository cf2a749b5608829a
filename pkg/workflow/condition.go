package workflow

import (
	"strings"

	"github.com/dukex/leadflow/pkg/models"
)

// EvaluateCondition applies one condition to an entity snapshot.
// It is total: any input yields a boolean, unknown operators yield false.
func EvaluateCondition(condition models.RuleCondition, entity models.Entity) bool {
	var fieldValue any = undefined{}
	if v, ok := entity.Lookup(condition.Field); ok {
		fieldValue = v
	}

	fieldValue = normalize(fieldValue)
	value := normalize(condition.Value)

	switch condition.Operator {
	case models.OperatorEquals:
		return strictEquals(fieldValue, value)
	case models.OperatorNotEquals:
		return !strictEquals(fieldValue, value)
	case models.OperatorContains:
		return strings.Contains(toString(fieldValue), toString(value))
	case models.OperatorGreaterThan:
		// NaN on either side compares false.
		return toNumber(fieldValue) > toNumber(value)
	case models.OperatorLessThan:
		return toNumber(fieldValue) < toNumber(value)
	case models.OperatorIsEmpty:
		// Falsy values count as empty, numeric zero and false included.
		return isFalsy(fieldValue)
	case models.OperatorIsNotEmpty:
		return !isFalsy(fieldValue)
	default:
		return false
	}
}

// EvaluateAll reports whether every condition passes. An empty list passes.
func EvaluateAll(conditions []models.RuleCondition, entity models.Entity) bool {
	for _, c := range conditions {
		if !EvaluateCondition(c, entity) {
			return false
		}
	}

	return true
}

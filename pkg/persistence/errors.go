package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrStatusNotFound indicates no workflow status has the given identifier.
	ErrStatusNotFound = errors.New("workflow status not found")

	// ErrAssignmentRuleNotFound indicates no assignment rule has the given identifier.
	ErrAssignmentRuleNotFound = errors.New("assignment rule not found")

	// ErrHistoryNotFound indicates an entity has no recorded status change.
	ErrHistoryNotFound = errors.New("status history not found")
)

// StatusError wraps status-related errors with additional context.
type StatusError struct {
	Op       string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	StatusID string
	Err      error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s operation failed for status %s: %v", e.Op, e.StatusID, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for status errors.
func (e *StatusError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewStatusError(op, statusID string, err error) *StatusError {
	return &StatusError{Op: op, StatusID: statusID, Err: err}
}

// AssignmentRuleError wraps assignment rule errors with additional context.
type AssignmentRuleError struct {
	Op     string
	RuleID string
	Err    error
}

func (e *AssignmentRuleError) Error() string {
	return fmt.Sprintf("%s operation failed for assignment rule %s: %v", e.Op, e.RuleID, e.Err)
}

func (e *AssignmentRuleError) Unwrap() error {
	return e.Err
}

func (e *AssignmentRuleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewAssignmentRuleError(op, ruleID string, err error) *AssignmentRuleError {
	return &AssignmentRuleError{Op: op, RuleID: ruleID, Err: err}
}

// IsStatusNotFound checks if an error indicates a status was not found.
func IsStatusNotFound(err error) bool {
	return errors.Is(err, ErrStatusNotFound)
}

// IsAssignmentRuleNotFound checks if an error indicates an assignment rule was not found.
func IsAssignmentRuleNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentRuleNotFound)
}

func IsHistoryNotFound(err error) bool {
	return errors.Is(err, ErrHistoryNotFound)
}

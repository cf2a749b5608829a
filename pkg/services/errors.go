// Package services implements status registry management, status changes and assignment rules on top of persistence.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidEntityType     = errors.New("invalid entity type")
	ErrInvalidTrigger        = errors.New("invalid trigger")
	ErrInvalidOperator       = errors.New("invalid condition operator")
	ErrInvalidActionParams   = models.ErrInvalidActionParams
	ErrEntityTypeMismatch    = errors.New("status belongs to a different entity type")
	ErrCurrentStatusRequired = errors.New("entity has no current status")

	// Not Found Errors (404 Not Found).
	ErrStatusNotFound         = persistence.ErrStatusNotFound
	ErrAssignmentRuleNotFound = persistence.ErrAssignmentRuleNotFound
	ErrRuleNotFound           = errors.New("automation rule not found")

	// Business Logic Conflicts (409 Conflict).
	ErrStatusAlreadyExists         = errors.New("workflow status already exists")
	ErrRuleAlreadyExists           = errors.New("automation rule already exists")
	ErrAssignmentRuleAlreadyExists = errors.New("assignment rule already exists")
	ErrTransitionNotAllowed        = errors.New("transition not allowed")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidEntityType) ||
		errors.Is(err, ErrInvalidTrigger) ||
		errors.Is(err, ErrInvalidOperator) ||
		errors.Is(err, ErrInvalidActionParams) ||
		errors.Is(err, ErrEntityTypeMismatch)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrStatusNotFound) ||
		errors.Is(err, ErrAssignmentRuleNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrCurrentStatusRequired)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrStatusAlreadyExists) ||
		errors.Is(err, ErrRuleAlreadyExists) ||
		errors.Is(err, ErrAssignmentRuleAlreadyExists) ||
		errors.Is(err, ErrTransitionNotAllowed)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

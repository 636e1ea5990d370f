package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Stable error codes exposed to callers.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeGuardViolation         = "GUARD_VIOLATION"
	CodeMissingReason          = "MISSING_REASON"
	CodeStorage                = "STORAGE_ERROR"
	CodeDeletionIncomplete     = "DELETION_INCOMPLETE"
	CodeNotificationFailure    = "NOTIFICATION_FAILURE"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeValidation             = "VALIDATION_FAILED"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeInternal               = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewInvalidTransition names both the current and the requested state.
func NewInvalidTransition(entity, current, requested string) error {
	return &DomainError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("%s cannot move from %q to %q", entity, current, requested),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"entity":    entity,
			"current":   current,
			"requested": requested,
		},
	}
}

// NewGuardViolation reports a mutation rejected by the entity's current state.
func NewGuardViolation(entity, action, current string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["entity"] = entity
	details["action"] = action
	details["current"] = current
	return &DomainError{
		Code:       CodeGuardViolation,
		Message:    fmt.Sprintf("cannot %s %s in state %q", action, entity, current),
		HTTPStatus: http.StatusConflict,
		Details:    details,
	}
}

func NewMissingReason(requested string) error {
	return &DomainError{
		Code:       CodeMissingReason,
		Message:    fmt.Sprintf("a reason is required to move to %q", requested),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"requested": requested},
	}
}

// NewStorageError wraps a persistence failure. Postgres error codes are kept in the details.
func NewStorageError(operation string, err error) error {
	details := map[string]any{"operation": operation}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		details["sqlstate"] = pgErr.Code
		if pgErr.ConstraintName != "" {
			details["constraint"] = pgErr.ConstraintName
		}
	}
	return &DomainError{
		Code:       CodeStorage,
		Message:    fmt.Sprintf("storage failure during %s", operation),
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
		Err:        err,
	}
}

func NewDeletionIncomplete(customerID string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["customer_id"] = customerID
	return &DomainError{
		Code:       CodeDeletionIncomplete,
		Message:    "customer record still present after deletion",
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
	}
}

func NewNotificationFailure(recipient, kind string, err error) error {
	return &DomainError{
		Code:       CodeNotificationFailure,
		Message:    fmt.Sprintf("notification %s to %s failed", kind, recipient),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"recipient": recipient, "kind": kind},
		Err:        err,
	}
}

func NewConcurrentModification(resource, id string, err error) error {
	return &DomainError{
		Code:       CodeConcurrentModification,
		Message:    fmt.Sprintf("%s is being modified by another request", resource),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"id": id},
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

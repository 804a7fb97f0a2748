package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidQuality   = "INVALID_QUALITY"
	ErrCodeEmptyQueue       = "EMPTY_QUEUE"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeQueueFull        = "QUEUE_FULL"
)

// Sentinels for errors.Is. Matching compares codes only, so any AppError
// built by the constructors below matches the sentinel with the same code.
var (
	ErrNotFound         = &AppError{Code: ErrCodeNotFound}
	ErrValidation       = &AppError{Code: ErrCodeValidation}
	ErrInvalidQuality   = &AppError{Code: ErrCodeInvalidQuality}
	ErrEmptyQueue       = &AppError{Code: ErrCodeEmptyQueue}
	ErrInvalidState     = &AppError{Code: ErrCodeInvalidState}
	ErrStoreUnavailable = &AppError{Code: ErrCodeStoreUnavailable}
	ErrQueueFull        = &AppError{Code: ErrCodeQueueFull}
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string         // Error code (e.g., "NOT_FOUND", "INVALID_STATE")
	Message string         // Human-readable error message
	Status  int            // HTTP status code
	Err     error          // Wrapped underlying error (optional)
	Context map[string]any // Identifiers needed to retry or display (card_id, user_id, op, ...)
}

// Error implements the error interface
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Code)
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%s=%v", k, e.Context[k])
		}
		sb.WriteByte(']')
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, " (%v)", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns e with key=value added to its context.
func (e *AppError) With(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewInvalidQualityError rejects a rating outside {0, 2, 3, 5}.
func NewInvalidQualityError(quality int) *AppError {
	return (&AppError{
		Code:    ErrCodeInvalidQuality,
		Message: fmt.Sprintf("quality %d is not one of 0, 2, 3, 5", quality),
		Status:  400,
	}).With("quality", quality)
}

// NewEmptyQueueError signals that the learner has nothing due. Callers show an
// "all caught up" state; it is not a failure.
func NewEmptyQueueError(userID string) *AppError {
	return (&AppError{
		Code:    ErrCodeEmptyQueue,
		Message: "no cards due for review",
		Status:  200,
	}).With("user_id", userID)
}

// NewInvalidStateError reports a rate call made out of turn or after completion.
func NewInvalidStateError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: reason,
		Status:  409,
	}
}

// NewStoreUnavailableError wraps a persistence failure for operation op.
func NewStoreUnavailableError(op string, err error) *AppError {
	return (&AppError{
		Code:    ErrCodeStoreUnavailable,
		Message: "card store unavailable",
		Status:  503,
		Err:     err,
	}).With("op", op)
}

// NewQueueFullError reports that a background job could not be queued.
func NewQueueFullError(job string) *AppError {
	return (&AppError{
		Code:    ErrCodeQueueFull,
		Message: "job queue is full, try again later",
		Status:  503,
	}).With("job", job)
}

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrPermissionDenied = errors.New("permission denied")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError rejects an action because of bad input. Nothing has been persisted when it is returned.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// InvalidGradeError rejects a grade outside of [0, Points].
type InvalidGradeError struct {
	Grade  int
	Points int
}

func (err InvalidGradeError) Error() string {
	if err.Grade < 0 {
		return "grade cannot be negative"
	}
	return fmt.Sprintf("grade cannot exceed %d points", err.Points)
}

// NotFoundError reports that the record targeted by an operation does not exist.
// Domain packages declare one sentinel each, eg. `ErrNotFound = core.NewNotFoundError("assignment")`.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (err NotFoundError) Error() string {
	return err.Resource + " not found"
}

// IsNotFound reports whether the cause of err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

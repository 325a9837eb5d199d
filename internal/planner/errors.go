// internal/planner/errors.go
package planner

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a target entity vanished between load and
// operation (e.g., duplicating a plan that was deleted meanwhile). Gateway
// implementations must return an error matching this sentinel so the engine
// can distinguish a missing row from a transient failure.
var ErrNotFound = errors.New("plan entity not found")

// ValidationError reports a draft that must not be saved. It is raised before
// any gateway call; the draft is left untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "draft validation failed: " + e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

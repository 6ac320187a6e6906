package game

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists = errors.New("already registered")
)

// UserError represents an error that should be displayed to the user.
// These are not system failures - just rejected actions.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUserError reports whether err is, or wraps, a *UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrBranchMismatch       = errors.New("branch mismatch")
	ErrAccessDenied         = errors.New("access denied")
)

// ValidationError names the fields a record type requires but the
// request left empty. Surfaced as a client error, never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRowsAffected is returned by writes that matched no row.
var ErrNoRowsAffected = errors.New("no rows affected")

// DuplicateError reports a UNIQUE constraint violation on a user column.
type DuplicateError struct {
	Field string // "username" or "email"
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

const uniqueConstraintMsg = "UNIQUE constraint failed"

// asDuplicate converts a SQLite UNIQUE violation into a *DuplicateError.
// Other errors are returned unchanged.
func asDuplicate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, uniqueConstraintMsg) {
		return err
	}
	switch {
	case strings.Contains(msg, "user.username"):
		return &DuplicateError{Field: "username", Err: err}
	case strings.Contains(msg, "user.email"):
		return &DuplicateError{Field: "email", Err: err}
	default:
		return err
	}
}

package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors matched by the HTTP layer with errors.Is.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
)

// FieldErrors maps a form field name to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// ValidationError carries per-field messages for re-rendering a form.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// invalid returns a *ValidationError when fe is non-empty, nil otherwise.
func invalid(fe FieldErrors) error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// UnsupportedImageError reports an upload that could not be decoded or
// re-encoded as an image.
type UnsupportedImageError struct {
	Filename string
	Err      error
}

func (e *UnsupportedImageError) Error() string {
	return fmt.Sprintf("unsupported image %q: %v", e.Filename, e.Err)
}

func (e *UnsupportedImageError) Unwrap() error { return e.Err }

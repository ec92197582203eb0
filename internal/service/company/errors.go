package company

import (
	"errors"
	"strings"
)

// Service errors
var (
	ErrValidation = errors.New("invalid company data")
	ErrNotFound   = errors.New("company profile not found")
	ErrStoreRead  = errors.New("reading company data failed")
	ErrStoreWrite = errors.New("writing company data failed")
	ErrBlobWrite  = errors.New("uploading image failed")
	ErrBlobDelete = errors.New("deleting image failed")
)

// Issue is one rejected input field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field. It matches ErrValidation.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBlobWrite):
		return "blob_write"
	case errors.Is(err, ErrStoreRead):
		return "store_read"
	case errors.Is(err, ErrStoreWrite):
		return "store_write"
	default:
		return "internal_error"
	}
}

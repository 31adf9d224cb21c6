package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrUnsupportedDB   = fmt.Errorf("unsupported database driver")
	ErrNoMigrations    = fmt.Errorf("no migrations to rollback")
	ErrRateLimited     = fmt.Errorf("rate limit exceeded")
	ErrDatabaseOffline = fmt.Errorf("database unavailable")

	// Request errors
	ErrInvalidJSON      = fmt.Errorf("invalid JSON body")
	ErrInvalidEndpoint  = fmt.Errorf("invalid endpoint")
	ErrMethodNotAllowed = fmt.Errorf("method not allowed")

	// Catalog errors
	ErrMissingFields = fmt.Errorf("missing required fields")
	ErrMissingSongID = fmt.Errorf("missing song id")
	ErrSongNotFound  = fmt.Errorf("song not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// ValidationError reports request fields that failed presence checks.
//
// It matches [ErrMissingFields] or [ErrMissingSongID] through [errors.Is], depending on Kind.
type ValidationError struct {
	Kind   error
	Fields []string
}

func NewValidationError(kind error, fields ...string) *ValidationError {
	return &ValidationError{Kind: kind, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// StoreError wraps a failure returned by the database driver.
//
// Op names the statement that failed; [StoreError.Cause] keeps the raw driver message, which is what API clients see.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Cause returns the innermost error message from the driver.
func (e *StoreError) Cause() string {
	err := e.Err
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// IsStoreError reports whether err carries a [StoreError].
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// Package errs defines the error kinds surfaced by the domain services and
// their mapping onto HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

var (
	// ErrNotFound is returned by Get/Delete when the primary key is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidEntity is returned when an identifier kind is not registered.
	ErrInvalidEntity = errors.New("invalid entity")
)

// ValidationError is a client input problem: a missing field, a broken
// reference or a department mismatch.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ReferenceNotFoundError reports a foreign key with no matching row. It is
// also reported as a *ValidationError by errors.As.
type ReferenceNotFoundError struct {
	Entity string
	Key    string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Entity, e.Key)
}

func (e *ReferenceNotFoundError) As(target interface{}) bool {
	if v, ok := target.(**ValidationError); ok {
		*v = &ValidationError{Message: e.Error()}
		return true
	}
	return false
}

func ReferenceNotFound(entity, key string) error {
	return &ReferenceNotFoundError{Entity: entity, Key: key}
}

// ConflictError is returned when a delete guard finds dependent rows.
type ConflictError struct {
	Relation string
	Count    int
	Message  string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StorageError wraps a failure from the database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. pgx.ErrNoRows passes through as
// ErrNotFound and nil stays nil. Constraint violations get a message naming
// the constraint.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			err = fmt.Errorf("duplicate value violates %s: %w", pgErr.ConstraintName, err)
		case "23503":
			err = fmt.Errorf("referenced row missing for %s: %w", pgErr.ConstraintName, err)
		case "23514":
			err = fmt.Errorf("check constraint %s rejected the row: %w", pgErr.ConstraintName, err)
		}
	}
	return &StorageError{Op: op, Err: err}
}

// IsConstraint reports whether err carries a PostgreSQL integrity violation.
func IsConstraint(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "23505", "23503", "23514", "23502":
		return true
	}
	return false
}

// HTTP converts a service error into an echo error. Storage failures are
// server errors; constraint violations keep their readable message.
func HTTP(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	case errors.As(err, &ce):
		return echo.NewHTTPError(http.StatusConflict, ce.Message)
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case IsConstraint(err):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

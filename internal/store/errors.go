package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeConstraintViolation indicates a duplicate key, a reference to
	// a nonexistent state, or an out-of-range id.
	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeUnavailable indicates the store cannot answer: it is closed,
	// the database cannot be read, or the schema is missing.
	ErrCodeUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Error is a categorized store failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the failed operation, e.g. "add state 3".
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying driver error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

// Unwrap returns the underlying driver error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsConstraintViolation returns true if err is a CONSTRAINT_VIOLATION.
// Uses errors.As to handle wrapped errors.
func IsConstraintViolation(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeConstraintViolation
	}
	return false
}

// IsUnavailable returns true if err is a STORE_UNAVAILABLE.
// Uses errors.As to handle wrapped errors.
func IsUnavailable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnavailable
	}
	return false
}

func constraintViolation(op, format string, args ...any) *Error {
	return &Error{Code: ErrCodeConstraintViolation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func unavailable(op, message string, err error) *Error {
	return &Error{Code: ErrCodeUnavailable, Op: op, Message: message, Err: err}
}

// classify maps a driver error onto the store's error categories.
// Errors that fit no category are wrapped with op and returned.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			return &Error{Code: ErrCodeConstraintViolation, Op: op, Message: constraintMessage(sqliteErr), Err: err}
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrCorrupt, sqlite3.ErrIoErr,
			sqlite3.ErrBusy, sqlite3.ErrLocked:
			return unavailable(op, sqliteErr.Error(), err)
		case sqlite3.ErrError:
			if strings.Contains(sqliteErr.Error(), "no such table") {
				return unavailable(op, "schema missing: "+sqliteErr.Error(), err)
			}
		}
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return unavailable(op, "connection lost", err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func constraintMessage(e sqlite3.Error) string {
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return "duplicate key: " + e.Error()
	case sqlite3.ErrConstraintForeignKey:
		return "references a nonexistent state: " + e.Error()
	case sqlite3.ErrConstraintCheck:
		return "out of range: " + e.Error()
	default:
		return e.Error()
	}
}

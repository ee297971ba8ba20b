package database

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConnection is returned when the store cannot be opened. No session
	// handle exists when this error is returned.
	ErrConnection = errors.New("connection error")

	// ErrConstraint marks a write rejected by a store rule (NOT NULL,
	// UNIQUE, CHECK). InsertItem absorbs it into ok=false.
	ErrConstraint = errors.New("constraint violation")

	// ErrStore is any other store-level failure: syntax, I/O, locking,
	// commit failures.
	ErrStore = errors.New("store error")

	// ErrSessionClosed is returned by Handle methods once the session that
	// produced the handle has committed or rolled back.
	ErrSessionClosed = errors.New("session is closed")
)

// Class is the failure classification attached to error-level log records.
type Class string

const (
	ClassNone       Class = ""
	ClassConnection Class = "connection_error"
	ClassConstraint Class = "constraint_violation"
	ClassStore      Class = "store_error"
	ClassCaller     Class = "caller_error"
)

// Classify maps an error onto the failure taxonomy. Errors that did not come
// from the store are classified as caller errors.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrConnection):
		return ClassConnection
	case isConstraintViolation(err):
		return ClassConstraint
	case errors.Is(err, ErrStore), errors.Is(err, ErrSessionClosed):
		return ClassStore
	default:
		return ClassCaller
	}
}

// isConstraintViolation reports whether err carries SQLITE_CONSTRAINT as its
// primary result code. Extended codes (e.g. SQLITE_CONSTRAINT_UNIQUE) keep the
// primary code in the low byte.
func isConstraintViolation(err error) bool {
	if errors.Is(err, ErrConstraint) {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func connectionError(err error, msg string) error {
	return pkgerrors.WithStack(fmt.Errorf("%w: %s: %w", ErrConnection, msg, err))
}

func constraintError(msg string) error {
	return pkgerrors.WithStack(fmt.Errorf("%w: %s", ErrConstraint, msg))
}

// storeError classifies err and attaches a stack. Constraint violations keep
// their own class so callers can still recognise them.
func storeError(err error, msg string) error {
	if isConstraintViolation(err) {
		return pkgerrors.WithStack(fmt.Errorf("%w: %s: %w", ErrConstraint, msg, err))
	}
	return pkgerrors.WithStack(fmt.Errorf("%w: %s: %w", ErrStore, msg, err))
}

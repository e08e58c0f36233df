package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ValidationError reports input that cannot be written, such as a credit
// account without its billing details.
type ValidationError struct {
	Op      string
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, ", ")
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, msg)
}

// NotFoundError reports a lookup that matched no row.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// ConstraintError wraps a foreign-key, uniqueness or check violation raised by
// the storage engine.
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// StorageError wraps any other driver or connection failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// wrap attaches operation context to err and classifies raw driver errors.
// Errors that already belong to the taxonomy pass through untouched so the
// innermost context wins.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		ne *NotFoundError
		ce *ConstraintError
		se *StorageError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ne), errors.As(err, &ce), errors.As(err, &se):
		return err
	case isConstraint(err):
		return &ConstraintError{Op: op, Err: err}
	default:
		return &StorageError{Op: op, Err: err}
	}
}

func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// requireAffected turns a zero-row UPDATE into a NotFoundError.
func requireAffected(res sql.Result, entity string, key any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, Key: key}
	}
	return nil
}

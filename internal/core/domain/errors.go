package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source format or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSchema indicates a loaded source table lacks required columns.
	// Returned errors are *SchemaError values that unwrap to ErrSchema.
	ErrSchema = errors.New("schema error")

	// ErrState indicates an operation ran before its prerequisite step.
	// Returned errors are *StateError values that unwrap to ErrState.
	ErrState = errors.New("state error")
)

// SchemaError reports the required columns missing from a source table.
// It is fatal for that source's load.
type SchemaError struct {
	// Source is the origin tag of the table that failed.
	Source string

	// Missing lists the absent column names in the order they are required.
	Missing []string

	// Found lists the columns the table does carry.
	Found []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required columns missing: %s",
		e.Source, strings.Join(e.Missing, ", "))
}

// Unwrap lets errors.Is match ErrSchema.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// StateError reports an operation invoked before a prerequisite step completed.
// It indicates a caller ordering bug and is never caused by input data.
type StateError struct {
	// Op is the operation that was attempted.
	Op string

	// Requires names the missing prerequisite.
	Requires string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: requires %s", e.Op, e.Requires)
}

// Unwrap lets errors.Is match ErrState.
func (e *StateError) Unwrap() error {
	return ErrState
}

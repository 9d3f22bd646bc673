/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinel errors
var (
	// ErrDuplicateSchema is returned when a table name is registered twice
	ErrDuplicateSchema = errors.New("schema already registered")

	// ErrUnknownSchema is returned when a table name has no registered schema
	ErrUnknownSchema = errors.New("unknown schema")

	// ErrUnknownIndex is returned when a query names an index the schema does not define
	ErrUnknownIndex = errors.New("unknown index")

	// ErrInvalidInput is returned when a caller supplies a malformed schema, key or update
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable is returned for transient backend failures worth retrying
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrThrottled is returned when the backend rejects a call for capacity reasons
	ErrThrottled = errors.New("throttled by backend")

	// ErrTableNotReady is returned when a table does not become ready within the deadline
	ErrTableNotReady = errors.New("table not ready")
)

// DuplicateSchemaError reports a second registration for the same table name.
type DuplicateSchemaError struct {
	Table string
}

func (e *DuplicateSchemaError) Error() string {
	return fmt.Sprintf("schema for table %q already registered", e.Table)
}

func (e *DuplicateSchemaError) Is(target error) bool {
	return target == ErrDuplicateSchema
}

// UnknownSchemaError reports a lookup for a table name that was never registered.
type UnknownSchemaError struct {
	Table string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("no schema registered for table %q", e.Table)
}

func (e *UnknownSchemaError) Is(target error) bool {
	return target == ErrUnknownSchema
}

// UnknownIndexError reports a query against an index the table schema does not define.
type UnknownIndexError struct {
	Table string
	Index string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("table %q has no index %q", e.Table, e.Index)
}

func (e *UnknownIndexError) Is(target error) bool {
	return target == ErrUnknownIndex
}

// ValidationError represents a caller error: malformed schema, key, record or
// update. Validation errors are never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// BackendUnavailableError wraps a transient backend failure. Callers may retry
// with backoff.
type BackendUnavailableError struct {
	Op    string
	Table string
	Err   error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s on table %q: backend unavailable: %v", e.Op, e.Table, e.Err)
}

func (e *BackendUnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Err
}

// ThrottledError wraps a capacity rejection. Retryable like unavailability but
// kept distinct so callers can meter the two separately.
type ThrottledError struct {
	Op    string
	Table string
	Err   error
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s on table %q: throttled: %v", e.Op, e.Table, e.Err)
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

func (e *ThrottledError) Unwrap() error {
	return e.Err
}

// TableProvisionError reports that a table did not reach the ready state
// within the configured wait. Fatal to the provisioning call; not retried
// automatically by this layer.
type TableProvisionError struct {
	Table   string
	Elapsed time.Duration
	Err     error
}

func (e *TableProvisionError) Error() string {
	return fmt.Sprintf("table %q not ready after %s: %v", e.Table, e.Elapsed, e.Err)
}

func (e *TableProvisionError) Is(target error) bool {
	return target == ErrTableNotReady
}

func (e *TableProvisionError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewDuplicateSchemaError creates a new DuplicateSchemaError
func NewDuplicateSchemaError(table string) error {
	return &DuplicateSchemaError{Table: table}
}

// NewUnknownSchemaError creates a new UnknownSchemaError
func NewUnknownSchemaError(table string) error {
	return &UnknownSchemaError{Table: table}
}

// NewUnknownIndexError creates a new UnknownIndexError
func NewUnknownIndexError(table, index string) error {
	return &UnknownIndexError{Table: table, Index: index}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewBackendUnavailableError creates a new BackendUnavailableError
func NewBackendUnavailableError(op, table string, err error) error {
	return &BackendUnavailableError{Op: op, Table: table, Err: err}
}

// NewThrottledError creates a new ThrottledError
func NewThrottledError(op, table string, err error) error {
	return &ThrottledError{Op: op, Table: table, Err: err}
}

// NewTableProvisionError creates a new TableProvisionError
func NewTableProvisionError(table string, elapsed time.Duration, err error) error {
	return &TableProvisionError{Table: table, Elapsed: elapsed, Err: err}
}

// IsDuplicateSchema checks if an error is a duplicate schema error
func IsDuplicateSchema(err error) bool {
	return errors.Is(err, ErrDuplicateSchema)
}

// IsUnknownSchema checks if an error is an unknown schema error
func IsUnknownSchema(err error) bool {
	return errors.Is(err, ErrUnknownSchema)
}

// IsUnknownIndex checks if an error is an unknown index error
func IsUnknownIndex(err error) bool {
	return errors.Is(err, ErrUnknownIndex)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsThrottled checks if an error is a throttling error
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsTableNotReady checks if an error is a table provisioning error
func IsTableNotReady(err error) bool {
	return errors.Is(err, ErrTableNotReady)
}

// IsRetryable reports whether the error is transient: either backend
// unavailability or throttling. Everything else is a caller or schema error
// and retrying will not help.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrThrottled)
}

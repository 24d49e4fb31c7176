// Package errors provides custom error types for the productmap system.
// These errors enable programmatic error checking across the engine,
// the snapshot store, the remote sources and the HTTP API.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the productmap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates that a remote collaborator is temporarily unavailable
	ErrUnavailable = errors.New("unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrClosed indicates use of a closed resource
	ErrClosed = errors.New("closed")
)

// Catalog error sentinels. Each Kind of CatalogError matches exactly one of these.
var (
	// ErrNoConnectivityNoCache indicates an offline load with no usable snapshot
	ErrNoConnectivityNoCache = errors.New("no connectivity and no cached catalog")

	// ErrRemoteFetchFailed indicates the remote source failed during a load
	ErrRemoteFetchFailed = errors.New("remote fetch failed")

	// ErrRemoteWriteFailed indicates a favorite toggle could not be applied remotely
	ErrRemoteWriteFailed = errors.New("remote write failed")

	// ErrDeserializationFailed indicates a corrupt local snapshot
	ErrDeserializationFailed = errors.New("deserialization failed")
)

// Kind classifies catalog engine failures.
type Kind string

// Catalog error kinds.
const (
	KindNoConnectivityNoCache Kind = "no_connectivity_no_cache"
	KindRemoteFetchFailed     Kind = "remote_fetch_failed"
	KindRemoteWriteFailed     Kind = "remote_write_failed"
	KindDeserializationFailed Kind = "deserialization_failed"
)

// sentinel returns the sentinel error matching the kind.
func (k Kind) sentinel() error {
	switch k {
	case KindNoConnectivityNoCache:
		return ErrNoConnectivityNoCache
	case KindRemoteFetchFailed:
		return ErrRemoteFetchFailed
	case KindRemoteWriteFailed:
		return ErrRemoteWriteFailed
	case KindDeserializationFailed:
		return ErrDeserializationFailed
	}
	return nil
}

// CatalogError is the error surfaced by the catalog engine.
type CatalogError struct {
	Kind Kind
	Op   string // "load", "toggle", "read snapshot"
	ID   string // product id, when the failure concerns one product
	Err  error
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	msg := e.Kind.sentinel()
	if msg == nil {
		msg = errors.New(string(e.Kind))
	}
	switch {
	case e.ID != "" && e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.ID, msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	case e.ID != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.ID, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap implements errors.Unwrap
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CatalogError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// NewCatalogError creates a new CatalogError
func NewCatalogError(kind Kind, op string, err error) *CatalogError {
	return &CatalogError{Kind: kind, Op: op, Err: err}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "bson"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "close", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "list", "count", "upsert", "delete"
	Resource  string // "products", "favorites", "snapshot"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error, including a
// canceled context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsKind checks whether any CatalogError in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	sentinel := kind.sentinel()
	return sentinel != nil && errors.Is(err, sentinel)
}

// KindOf returns the kind of the first CatalogError in the chain.
func KindOf(err error) (Kind, bool) {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// IsRemoteFailure reports whether the error came from the remote source boundary.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, ErrRemoteFetchFailed) ||
		errors.Is(err, ErrRemoteWriteFailed) ||
		errors.Is(err, ErrNoConnectivityNoCache)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapCatalog wraps an error as a CatalogError of the given kind.
func WrapCatalog(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewCatalogError(kind, op, err)
}

package types

import (
	"fmt"
)

// ValidationError represents a blocking, field-scoped validation failure.
type ValidationError struct {
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with the given message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// MigrationError indicates a broken migration chain or a failed migration
// function.
type MigrationError struct {
	FromVersion string
	ToVersion   string
	Message     string
}

// Error returns the error message.
func (e *MigrationError) Error() string {
	if e.FromVersion != "" || e.ToVersion != "" {
		return fmt.Sprintf("migration %s -> %s: %s", e.FromVersion, e.ToVersion, e.Message)
	}
	return e.Message
}

// NewMigrationError creates a MigrationError for the given version pair.
func NewMigrationError(from, to, format string, args ...interface{}) *MigrationError {
	return &MigrationError{
		FromVersion: from,
		ToVersion:   to,
		Message:     fmt.Sprintf(format, args...),
	}
}

// IsMigrationError checks if an error is a MigrationError.
func IsMigrationError(err error) bool {
	_, ok := err.(*MigrationError)
	return ok
}

// PersistenceError indicates an I/O or checksum failure while storing or
// restoring configuration.
type PersistenceError struct {
	Path    string
	Message string
	Err     error
}

// Error returns the error message.
func (e *PersistenceError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError creates a PersistenceError for the given path.
func NewPersistenceError(path, message string, err error) *PersistenceError {
	return &PersistenceError{Path: path, Message: message, Err: err}
}

// IsPersistenceError checks if an error is a PersistenceError.
func IsPersistenceError(err error) bool {
	_, ok := err.(*PersistenceError)
	return ok
}

// InheritanceError indicates a circular hierarchy or a rule application
// failure in the inheritance engine.
type InheritanceError struct {
	Environment string
	Message     string
}

// Error returns the error message.
func (e *InheritanceError) Error() string {
	if e.Environment != "" {
		return fmt.Sprintf("inheritance for %q: %s", e.Environment, e.Message)
	}
	return e.Message
}

// NewInheritanceError creates an InheritanceError for the given environment.
func NewInheritanceError(environment, format string, args ...interface{}) *InheritanceError {
	return &InheritanceError{
		Environment: environment,
		Message:     fmt.Sprintf(format, args...),
	}
}

// IsInheritanceError checks if an error is an InheritanceError.
func IsInheritanceError(err error) bool {
	_, ok := err.(*InheritanceError)
	return ok
}

// DeploymentError indicates a per-target deployment failure.
type DeploymentError struct {
	Environment string
	Message     string
	Err         error
}

// Error returns the error message.
func (e *DeploymentError) Error() string {
	msg := fmt.Sprintf("deploy to %q: %s", e.Environment, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying error.
func (e *DeploymentError) Unwrap() error { return e.Err }

// NewDeploymentError creates a DeploymentError for the given target.
func NewDeploymentError(environment, message string, err error) *DeploymentError {
	return &DeploymentError{Environment: environment, Message: message, Err: err}
}

// IsDeploymentError checks if an error is a DeploymentError.
func IsDeploymentError(err error) bool {
	_, ok := err.(*DeploymentError)
	return ok
}

package common

import (
	"errors"
	"fmt"

	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// Sentinel errors for the conditions callers branch on.
var (
	// ErrNotConnected is returned when an operation requires an active
	// connection and none exists.
	ErrNotConnected = errors.New("database not connected")

	// ErrInvalidConfiguration is returned when a connection configuration
	// fails validation.
	ErrInvalidConfiguration = errors.New("invalid connection configuration")

	// ErrUnsupportedDatabase is returned when a configuration names a
	// database type no driver implements.
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// ConfigurationError describes why a connection configuration was
// rejected. It matches ErrInvalidConfiguration under errors.Is.
type ConfigurationError struct {
	DatabaseType dbcapabilities.DatabaseType
	Reason       string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.DatabaseType, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// ConnectionError wraps a failure to reach or authenticate with a
// database. Target is the human-readable connection destination.
type ConnectionError struct {
	DatabaseType dbcapabilities.DatabaseType
	Target       string
	Cause        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s at %s: %v", e.DatabaseType, e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// QueryError wraps a failure while executing a statement or reading its
// results. The connection manager folds these into error results rather
// than surfacing them to callers.
type QueryError struct {
	DatabaseType dbcapabilities.DatabaseType
	Query        string
	Cause        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed on %s: %v", e.DatabaseType, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

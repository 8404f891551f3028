// Package common holds the configuration, result, and schema-metadata
// types shared by every database driver, plus the statement helpers the
// drivers use to classify and bound queries.
package common

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// SSLMode selects transport security for server connections.
type SSLMode string

const (
	SSLDisable    SSLMode = "disable"
	SSLPrefer     SSLMode = "prefer"
	SSLRequire    SSLMode = "require"
	SSLVerifyCA   SSLMode = "verify-ca"
	SSLVerifyFull SSLMode = "verify-full"
)

// ParseSSLMode resolves a stored SSL-mode string, defaulting to prefer.
func ParseSSLMode(s string) SSLMode {
	switch SSLMode(s) {
	case SSLDisable, SSLPrefer, SSLRequire, SSLVerifyCA, SSLVerifyFull:
		return SSLMode(s)
	default:
		return SSLPrefer
	}
}

// ParamsKind tags the active variant of ConnectionParams.
type ParamsKind string

const (
	ParamsServer   ParamsKind = "server"
	ParamsFile     ParamsKind = "file"
	ParamsInMemory ParamsKind = "inmemory"
)

// ServerParams addresses a network database service.
type ServerParams struct {
	Host     string  `json:"host"`
	Port     int     `json:"port"`
	Username string  `json:"username"`
	Password string  `json:"-"` // injected at connect time, never serialized
	Database string  `json:"database"`
	SSLMode  SSLMode `json:"sslMode,omitempty"`
	// Options carries driver-specific connection options.
	Options map[string]string `json:"options,omitempty"`
}

// FileParams addresses an embedded database file.
type FileParams struct {
	Path     string            `json:"path"`
	ReadOnly bool              `json:"readOnly,omitempty"`
	Options  map[string]string `json:"options,omitempty"`
}

// InMemoryParams addresses an embedded in-memory database.
type InMemoryParams struct {
	Options map[string]string `json:"options,omitempty"`
}

// ConnectionParams is a tagged union of the three parameter shapes.
// Exactly the payload matching Kind is non-nil.
type ConnectionParams struct {
	Kind     ParamsKind      `json:"type"`
	Server   *ServerParams   `json:"server,omitempty"`
	File     *FileParams     `json:"file,omitempty"`
	InMemory *InMemoryParams `json:"inMemory,omitempty"`
}

// NewServerParams builds server parameters with the default SSL mode.
func NewServerParams(host string, port int, username, password, database string) ConnectionParams {
	return ConnectionParams{
		Kind: ParamsServer,
		Server: &ServerParams{
			Host:     host,
			Port:     port,
			Username: username,
			Password: password,
			Database: database,
			SSLMode:  SSLPrefer,
		},
	}
}

// NewFileParams builds file parameters.
func NewFileParams(path string, readOnly bool) ConnectionParams {
	return ConnectionParams{
		Kind: ParamsFile,
		File: &FileParams{Path: path, ReadOnly: readOnly},
	}
}

// NewInMemoryParams builds in-memory parameters.
func NewInMemoryParams() ConnectionParams {
	return ConnectionParams{
		Kind:     ParamsInMemory,
		InMemory: &InMemoryParams{},
	}
}

// consistent reports whether the payload pointers agree with Kind.
func (p ConnectionParams) consistent() bool {
	switch p.Kind {
	case ParamsServer:
		return p.Server != nil && p.File == nil && p.InMemory == nil
	case ParamsFile:
		return p.File != nil && p.Server == nil && p.InMemory == nil
	case ParamsInMemory:
		return p.InMemory != nil && p.Server == nil && p.File == nil
	default:
		return false
	}
}

// ConnectionConfig fully describes one saved connection.
type ConnectionConfig struct {
	ID     uuid.UUID                   `json:"id"`
	Name   string                      `json:"name"`
	Type   dbcapabilities.DatabaseType `json:"databaseType"`
	Params ConnectionParams            `json:"params"`
}

// NewConnectionConfig creates a configuration with a fresh ID.
func NewConnectionConfig(name string, dbType dbcapabilities.DatabaseType, params ConnectionParams) ConnectionConfig {
	return ConnectionConfig{
		ID:     uuid.New(),
		Name:   name,
		Type:   dbType,
		Params: params,
	}
}

// Validate checks that the parameter variant matches what the database
// type requires. Server engines reject File/InMemory parameters; embedded
// engines reject Server parameters. The factory re-validates before any
// I/O, so a config that passes here can still fail to connect, but never
// for shape reasons.
func (c ConnectionConfig) Validate() error {
	cap, ok := dbcapabilities.Get(c.Type)
	if !ok {
		return &ConfigurationError{
			DatabaseType: c.Type,
			Reason:       "unknown database type",
		}
	}
	if !c.Params.consistent() {
		return &ConfigurationError{
			DatabaseType: c.Type,
			Reason:       fmt.Sprintf("parameter payload does not match kind %q", c.Params.Kind),
		}
	}
	switch cap.Paradigm {
	case dbcapabilities.ParadigmServer:
		if c.Params.Kind != ParamsServer {
			return &ConfigurationError{
				DatabaseType: c.Type,
				Reason:       fmt.Sprintf("%s requires server connection parameters", cap.Name),
			}
		}
	case dbcapabilities.ParadigmFile:
		if c.Params.Kind == ParamsServer {
			return &ConfigurationError{
				DatabaseType: c.Type,
				Reason:       fmt.Sprintf("%s requires file or in-memory connection parameters", cap.Name),
			}
		}
	}
	return nil
}

// DisplayTarget returns a human-readable description of where the
// connection points: "user@host:port/database" for servers, the file
// path for files, ":memory:" for in-memory databases.
func (c ConnectionConfig) DisplayTarget() string {
	switch c.Params.Kind {
	case ParamsServer:
		s := c.Params.Server
		return fmt.Sprintf("%s@%s:%d/%s", s.Username, s.Host, s.Port, s.Database)
	case ParamsFile:
		return c.Params.File.Path
	case ParamsInMemory:
		return ":memory:"
	}
	return ""
}

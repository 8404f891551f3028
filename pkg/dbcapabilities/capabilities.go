package dbcapabilities

import "strings"

// DatabaseType is the canonical identifier for a database engine supported
// by dbscope. Use these constants to look up capability information.
type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgresql"
	MySQL      DatabaseType = "mysql"
	SQLite     DatabaseType = "sqlite"
	ClickHouse DatabaseType = "clickhouse"
	DuckDB     DatabaseType = "duckdb"
)

// ConnectionParadigm describes how an engine is reached.
type ConnectionParadigm string

const (
	// ParadigmServer means the engine is a network service (host, port,
	// credentials).
	ParadigmServer ConnectionParadigm = "server"
	// ParadigmFile means the engine is embedded and opens a local file or
	// an in-memory database.
	ParadigmFile ConnectionParadigm = "file"
)

// Capability describes what an engine supports in a way all layers can
// consume uniformly.
type Capability struct {
	// Human-friendly product name, e.g. "PostgreSQL".
	Name string `json:"name"`

	// Canonical ID used across the codebase (see DatabaseType constants).
	ID DatabaseType `json:"id"`

	// How the engine is reached.
	Paradigm ConnectionParadigm `json:"paradigm"`

	// Default port for server engines; zero for embedded engines.
	DefaultPort int `json:"defaultPort,omitempty"`

	// Whether the engine enforces foreign keys. Engines without
	// enforcement report an empty foreign-key list during introspection
	// rather than an error.
	SupportsForeignKeys bool `json:"supportsForeignKeys"`

	// Whether the engine's "primary key" is an ordering key rather than
	// a uniqueness guarantee (ClickHouse sorting keys).
	PrimaryKeyIsOrdering bool `json:"primaryKeyIsOrdering"`

	// Whether the engine's wire protocol reports affected row counts for
	// mutation statements.
	ReportsRowsAffected bool `json:"reportsRowsAffected"`

	// Leading keywords that classify a statement as read-type for this
	// engine, lower case.
	ReadKeywords []string `json:"readKeywords"`

	// Common aliases (driver names, env labels) that map to this engine.
	Aliases []string `json:"aliases,omitempty"`
}

// All is the registry of capabilities keyed by the canonical database type.
var All = map[DatabaseType]Capability{
	PostgreSQL: {
		Name:                "PostgreSQL",
		ID:                  PostgreSQL,
		Paradigm:            ParadigmServer,
		DefaultPort:         5432,
		SupportsForeignKeys: true,
		ReportsRowsAffected: true,
		ReadKeywords:        []string{"select", "with"},
		Aliases:             []string{"postgres", "pg", "pgsql"},
	},
	MySQL: {
		Name:                "MySQL",
		ID:                  MySQL,
		Paradigm:            ParadigmServer,
		DefaultPort:         3306,
		SupportsForeignKeys: true,
		ReportsRowsAffected: true,
		ReadKeywords:        []string{"select", "with"},
		Aliases:             []string{"mariadb"},
	},
	SQLite: {
		Name:                "SQLite",
		ID:                  SQLite,
		Paradigm:            ParadigmFile,
		SupportsForeignKeys: true,
		ReportsRowsAffected: true,
		ReadKeywords:        []string{"select", "with"},
		Aliases:             []string{"sqlite3"},
	},
	ClickHouse: {
		Name:                 "ClickHouse",
		ID:                   ClickHouse,
		Paradigm:             ParadigmServer,
		DefaultPort:          8123, // HTTP interface
		SupportsForeignKeys:  false,
		PrimaryKeyIsOrdering: true,
		ReportsRowsAffected:  false,
		ReadKeywords:         []string{"select", "with", "show", "describe", "explain"},
		Aliases:              []string{"ch"},
	},
	DuckDB: {
		Name:                "DuckDB",
		ID:                  DuckDB,
		Paradigm:            ParadigmFile,
		SupportsForeignKeys: true,
		ReportsRowsAffected: true,
		ReadKeywords:        []string{"select", "with"},
		Aliases:             []string{"duck"},
	},
}

// AllTypes returns the database types in stable presentation order.
func AllTypes() []DatabaseType {
	return []DatabaseType{PostgreSQL, MySQL, SQLite, ClickHouse, DuckDB}
}

// Get returns the capability entry for the given type.
func Get(id DatabaseType) (Capability, bool) {
	cap, ok := All[id]
	return cap, ok
}

// MustGet returns the capability entry or an empty Capability for unknown
// types. Callers that already validated the type can use this directly.
func MustGet(id DatabaseType) Capability {
	return All[id]
}

// DisplayName returns the human-friendly name for the engine, falling back
// to the raw identifier for unknown types.
func (t DatabaseType) DisplayName() string {
	if cap, ok := All[t]; ok {
		return cap.Name
	}
	return string(t)
}

// IsFileBased reports whether the engine opens local files instead of
// dialing a server.
func (t DatabaseType) IsFileBased() bool {
	return All[t].Paradigm == ParadigmFile
}

// IsServerBased reports whether the engine is reached over the network.
func (t DatabaseType) IsServerBased() bool {
	return All[t].Paradigm == ParadigmServer
}

// DefaultPort returns the default port for server engines and zero for
// embedded engines.
func (t DatabaseType) DefaultPort() int {
	return All[t].DefaultPort
}

// Parse resolves a user-supplied engine name (canonical ID, product name
// or alias, any case) to its canonical DatabaseType.
func Parse(s string) (DatabaseType, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == "" {
		return "", false
	}
	for id, cap := range All {
		if needle == string(id) || needle == strings.ToLower(cap.Name) {
			return id, true
		}
		for _, alias := range cap.Aliases {
			if needle == alias {
				return id, true
			}
		}
	}
	return "", false
}

package common

// DatabaseInfo describes one database or schema visible to a connection.
type DatabaseInfo struct {
	Name string `json:"name"`
	// Owner is filled when the catalog reports it.
	Owner string `json:"owner,omitempty"`
	// Comment is filled when the catalog reports it.
	Comment string `json:"comment,omitempty"`
}

// TableInfo describes one table or view.
type TableInfo struct {
	Name   string `json:"name"`
	Schema string `json:"schema,omitempty"`
	// Type distinguishes tables from views using the engine's own
	// wording, for example "BASE TABLE" or "VIEW".
	Type string `json:"type,omitempty"`
	// RowCount is the engine's estimate where one is available, -1 when
	// the catalog does not report one.
	RowCount int64 `json:"rowCount"`
	Comment  string `json:"comment,omitempty"`
}

// ColumnDetail describes one column of a table.
type ColumnDetail struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Nullable bool   `json:"nullable"`
	// Default is the column default expression, empty when none.
	Default string `json:"default,omitempty"`
	// Ordinal is the one-based column position.
	Ordinal int    `json:"ordinal"`
	Comment string `json:"comment,omitempty"`
}

// ForeignKeyInfo describes one foreign-key relationship.
type ForeignKeyInfo struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
	// OnUpdate and OnDelete carry the referential actions when the
	// catalog reports them.
	OnUpdate string `json:"onUpdate,omitempty"`
	OnDelete string `json:"onDelete,omitempty"`
}

// IndexInfo describes one index.
type IndexInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
	// Method is the index access method or kind, engine wording.
	Method string `json:"method,omitempty"`
}

// ConstraintInfo describes one table constraint.
type ConstraintInfo struct {
	Name string `json:"name"`
	// Type is the constraint class using the engine's wording, for
	// example "PRIMARY KEY", "UNIQUE", "CHECK".
	Type string `json:"type"`
	// Definition is the constraint expression when available.
	Definition string `json:"definition,omitempty"`
}

// TableSchema aggregates everything known about one table.
type TableSchema struct {
	Table       TableInfo        `json:"table"`
	Columns     []ColumnDetail   `json:"columns"`
	PrimaryKeys []string         `json:"primaryKeys"`
	ForeignKeys []ForeignKeyInfo `json:"foreignKeys"`
	Indexes     []IndexInfo      `json:"indexes"`
	Constraints []ConstraintInfo `json:"constraints"`
}

// DatabaseSchema aggregates the schemas of a set of tables.
type DatabaseSchema struct {
	Tables []TableSchema `json:"tables"`
	// TotalTables is fixed at construction and always equals len(Tables).
	TotalTables int `json:"totalTables"`
}

// NewDatabaseSchema builds a schema snapshot from table schemas.
func NewDatabaseSchema(tables []TableSchema) DatabaseSchema {
	return DatabaseSchema{Tables: tables, TotalTables: len(tables)}
}

// SelectTables filters a table listing down to the requested names. An
// empty request selects everything. Requested names that do not exist
// are silently absent from the result; catalog order is preserved.
func SelectTables(all []TableInfo, names []string) []TableInfo {
	if len(names) == 0 {
		return all
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []TableInfo
	for _, t := range all {
		if wanted[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

package dbvalue

// ColumnInfo carries result-set metadata for one column.
type ColumnInfo struct {
	// Column name as reported by the engine.
	Name string `json:"name"`
	// Engine-native type name, unmodified.
	TypeName string `json:"typeName"`
	// Zero-based position in the result set.
	Ordinal int `json:"ordinal"`
	// Source table, when the engine reports it.
	TableName string `json:"tableName,omitempty"`
	// Source schema, when the engine reports it.
	SchemaName string `json:"schemaName,omitempty"`
	// Nullability, when the engine reports it. Nil means unknown.
	Nullable *bool `json:"nullable,omitempty"`
}

// NewColumnInfo creates column metadata with the required fields.
func NewColumnInfo(name, typeName string, ordinal int) ColumnInfo {
	return ColumnInfo{Name: name, TypeName: typeName, Ordinal: ordinal}
}

// Cell pairs a decoded value with its originating column index.
type Cell struct {
	Value       Value `json:"value"`
	ColumnIndex int   `json:"columnIndex"`
}

// IsNull reports whether the cell holds NULL.
func (c Cell) IsNull() bool { return c.Value.IsNull() }

// Row is an ordered sequence of cells. Cell order matches the column
// order of the result that produced the row.
type Row struct {
	Cells []Cell `json:"cells"`
}

// NewRow builds a row from pre-indexed cells.
func NewRow(cells []Cell) Row { return Row{Cells: cells} }

// RowFromValues builds a row from values, assigning column indices in
// order.
func RowFromValues(values []Value) Row {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Cell{Value: v, ColumnIndex: i}
	}
	return Row{Cells: cells}
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.Cells) }

// Value returns the value at the given index, or Null and false when the
// index is out of range.
func (r Row) Value(index int) (Value, bool) {
	if index < 0 || index >= len(r.Cells) {
		return Null(), false
	}
	return r.Cells[index].Value, true
}

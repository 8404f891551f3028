package common

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// DecodeFunc maps one raw cell of a given engine type name into the
// unified value model. Implementations are total: they return a value
// for any input, falling back to the foreign-type variant.
type DecodeFunc func(typeName string, raw any) dbvalue.Value

// SQLColumnInfos extracts column metadata from a database/sql result.
func SQLColumnInfos(rows *sql.Rows) ([]dbvalue.ColumnInfo, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]dbvalue.ColumnInfo, len(types))
	for i, ct := range types {
		ci := dbvalue.NewColumnInfo(ct.Name(), ct.DatabaseTypeName(), i)
		if nullable, ok := ct.Nullable(); ok {
			ci.Nullable = &nullable
		}
		cols[i] = ci
	}
	return cols, nil
}

// ScanSQLRow scans the current row into untyped cells and decodes each
// one by its column's engine type name.
func ScanSQLRow(rows *sql.Rows, cols []dbvalue.ColumnInfo, decode DecodeFunc) (dbvalue.Row, error) {
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return dbvalue.Row{}, err
	}
	vals := make([]dbvalue.Value, len(cols))
	for i := range dest {
		vals[i] = decode(cols[i].TypeName, *(dest[i].(*any)))
	}
	return dbvalue.RowFromValues(vals), nil
}

// CollectSQLRows materializes a database/sql result set.
func CollectSQLRows(rows *sql.Rows, decode DecodeFunc) ([]dbvalue.ColumnInfo, []dbvalue.Row, error) {
	defer rows.Close()

	cols, err := SQLColumnInfos(rows)
	if err != nil {
		return nil, nil, err
	}
	var out []dbvalue.Row
	for rows.Next() {
		row, err := ScanSQLRow(rows, cols, decode)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}

// ExecuteSQL is the shared statement-execution path for drivers built on
// database/sql. Statement failures become the error variant; the Go
// error return is reserved for a nil handle. Engines whose protocol does
// not report affected rows always report zero.
func ExecuteSQL(ctx context.Context, db *sql.DB, dbType dbcapabilities.DatabaseType, query string, decode DecodeFunc) (QueryExecutionResult, error) {
	if db == nil {
		return QueryExecutionResult{}, ErrNotConnected
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return NewErrorResult("Empty query", 0), nil
	}

	cap := dbcapabilities.MustGet(dbType)
	start := time.Now()
	if IsReadStatement(trimmed, cap.ReadKeywords) {
		bounded := ApplyRowLimit(trimmed, DefaultRowLimit)
		rows, err := db.QueryContext(ctx, bounded)
		if err != nil {
			return NewErrorResult(err.Error(), ElapsedSince(start)), nil
		}
		cols, data, err := CollectSQLRows(rows, decode)
		if err != nil {
			return NewErrorResult(err.Error(), ElapsedSince(start)), nil
		}
		return NewSelectResult(cols, data, ElapsedSince(start), query), nil
	}

	res, err := db.ExecContext(ctx, trimmed)
	if err != nil {
		return NewErrorResult(err.Error(), ElapsedSince(start)), nil
	}
	var affected int64
	if cap.ReportsRowsAffected {
		if n, err := res.RowsAffected(); err == nil {
			affected = n
		}
	}
	return NewModifiedResult(affected, ElapsedSince(start)), nil
}

// SQLRowStream adapts a database/sql cursor to incremental row delivery.
type SQLRowStream struct {
	rows   *sql.Rows
	cols   []dbvalue.ColumnInfo
	decode DecodeFunc
	closed bool
}

// NewSQLRowStream wraps an open cursor. The stream owns the cursor from
// here on.
func NewSQLRowStream(rows *sql.Rows, decode DecodeFunc) (*SQLRowStream, error) {
	cols, err := SQLColumnInfos(rows)
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &SQLRowStream{rows: rows, cols: cols, decode: decode}, nil
}

func (s *SQLRowStream) Columns() []dbvalue.ColumnInfo { return s.cols }

func (s *SQLRowStream) Next(ctx context.Context) (dbvalue.Row, error) {
	if err := ctx.Err(); err != nil {
		return dbvalue.Row{}, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return dbvalue.Row{}, err
		}
		return dbvalue.Row{}, io.EOF
	}
	return ScanSQLRow(s.rows, s.cols, s.decode)
}

func (s *SQLRowStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rows.Close()
}

package duckdb

import (
	"context"
	"strconv"
	"strings"

	"github.com/dbscope/dbscope/internal/database/common"
)

// GetDatabases lists the attached databases.
func (d *DuckDB) GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := d.db.QueryContext(ctx,
		"SELECT database_name FROM duckdb_databases() ORDER BY database_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.DatabaseInfo
	for rows.Next() {
		var db common.DatabaseInfo
		if err := rows.Scan(&db.Name); err != nil {
			return nil, err
		}
		out = append(out, db)
	}
	return out, rows.Err()
}

// GetTables lists tables and views with DuckDB's size estimate for base
// tables.
func (d *DuckDB) GetTables(ctx context.Context) ([]common.TableInfo, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT t.table_name, t.table_schema, t.table_type,
		       COALESCE(dt.estimated_size, -1)
		FROM information_schema.tables t
		LEFT JOIN duckdb_tables() dt
		       ON dt.schema_name = t.table_schema
		      AND dt.table_name = t.table_name
		WHERE t.table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY t.table_schema, t.table_name`
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.TableInfo
	for rows.Next() {
		var t common.TableInfo
		if err := rows.Scan(&t.Name, &t.Schema, &t.Type, &t.RowCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetColumns lists the columns of one table in ordinal order.
func (d *DuckDB) GetColumns(ctx context.Context, table string) ([]common.ColumnDetail, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT column_name, data_type, is_nullable = 'YES',
		       COALESCE(column_default, ''), ordinal_position
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ColumnDetail
	for rows.Next() {
		var c common.ColumnDetail
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.Default, &c.Ordinal); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetPrimaryKeys lists primary-key columns in key order via the
// duckdb_constraints catalog function.
func (d *DuckDB) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT unnest(constraint_column_names)
		FROM duckdb_constraints()
		WHERE table_name = ? AND constraint_type = 'PRIMARY KEY'`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// GetForeignKeys lists the table's foreign keys from the standard
// information schema.
func (d *DuckDB) GetForeignKeys(ctx context.Context, table string) ([]common.ForeignKeyInfo, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT tc.constraint_name, kcu.column_name,
		       ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_name = ?
		ORDER BY tc.constraint_name`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ForeignKeyInfo
	for rows.Next() {
		var fk common.ForeignKeyInfo
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}

// GetIndexes lists the table's indexes. DuckDB reports index columns as
// an expression list string rather than individual rows.
func (d *DuckDB) GetIndexes(ctx context.Context, table string) ([]common.IndexInfo, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT index_name, is_unique, COALESCE(expressions, '')
		FROM duckdb_indexes()
		WHERE table_name = ?
		ORDER BY index_name`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.IndexInfo
	for rows.Next() {
		var name, exprs string
		var unique bool
		if err := rows.Scan(&name, &unique, &exprs); err != nil {
			return nil, err
		}
		out = append(out, common.IndexInfo{
			Name:    name,
			Columns: splitExpressions(exprs),
			Unique:  unique,
			Method:  "art",
		})
	}
	return out, rows.Err()
}

// splitExpressions turns the catalog's "[a, b]" rendering into a column
// list.
func splitExpressions(exprs string) []string {
	s := strings.Trim(strings.TrimSpace(exprs), "[]")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.Trim(strings.TrimSpace(p), `'"`); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetConstraints lists the table's constraints with DuckDB's own
// constraint text as the definition.
func (d *DuckDB) GetConstraints(ctx context.Context, table string) ([]common.ConstraintInfo, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT constraint_type, constraint_text
		FROM duckdb_constraints()
		WHERE table_name = ?
		ORDER BY constraint_index`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ConstraintInfo
	for i := 0; rows.Next(); i++ {
		var c common.ConstraintInfo
		if err := rows.Scan(&c.Type, &c.Definition); err != nil {
			return nil, err
		}
		// DuckDB does not name constraints; synthesize a stable one.
		c.Name = constraintName(table, c.Type, i)
		out = append(out, c)
	}
	return out, rows.Err()
}

func constraintName(table, typ string, ordinal int) string {
	slug := strings.ToLower(strings.ReplaceAll(typ, " ", "_"))
	return slug + "_" + table + "_" + strconv.Itoa(ordinal)
}

// GetSchema aggregates per-table introspection for the given tables, or
// for every table when the list is empty.
func (d *DuckDB) GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error) {
	if d.db == nil {
		return common.DatabaseSchema{}, common.ErrNotConnected
	}
	all, err := d.GetTables(ctx)
	if err != nil {
		return common.DatabaseSchema{}, err
	}
	selected := common.SelectTables(all, tables)

	schemas := make([]common.TableSchema, 0, len(selected))
	for _, t := range selected {
		ts := common.TableSchema{Table: t}
		if ts.Columns, err = d.GetColumns(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.PrimaryKeys, err = d.GetPrimaryKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.ForeignKeys, err = d.GetForeignKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Indexes, err = d.GetIndexes(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Constraints, err = d.GetConstraints(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		schemas = append(schemas, ts)
	}
	return common.NewDatabaseSchema(schemas), nil
}

package mysql

import (
	"context"

	"github.com/dbscope/dbscope/internal/database/common"
)

// GetDatabases lists schemas visible to the connection, system schemas
// excluded.
func (m *MySQL) GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT SCHEMA_NAME
		FROM information_schema.SCHEMATA
		WHERE SCHEMA_NAME NOT IN ('information_schema', 'performance_schema', 'mysql', 'sys')
		ORDER BY SCHEMA_NAME`
	rows, err := m.db.QueryContext(ctx, q)
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

// GetTables lists tables and views of the connected schema with the
// storage engine's row estimate.
func (m *MySQL) GetTables(ctx context.Context) ([]common.TableInfo, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT TABLE_NAME, TABLE_SCHEMA, TABLE_TYPE,
		       COALESCE(TABLE_ROWS, -1), COALESCE(TABLE_COMMENT, '')
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE()
		ORDER BY TABLE_NAME`
	rows, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.TableInfo
	for rows.Next() {
		var t common.TableInfo
		if err := rows.Scan(&t.Name, &t.Schema, &t.Type, &t.RowCount, &t.Comment); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetColumns lists the columns of one table in ordinal order.
func (m *MySQL) GetColumns(ctx context.Context, table string) ([]common.ColumnDetail, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE = 'YES',
		       COALESCE(COLUMN_DEFAULT, ''), ORDINAL_POSITION,
		       COALESCE(COLUMN_COMMENT, '')
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`
	rows, err := m.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ColumnDetail
	for rows.Next() {
		var c common.ColumnDetail
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.Default, &c.Ordinal, &c.Comment); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetPrimaryKeys lists primary-key columns in key order.
func (m *MySQL) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		  AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION`
	rows, err := m.db.QueryContext(ctx, q, table)
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

// GetForeignKeys lists the table's foreign keys with referential actions.
func (m *MySQL) GetForeignKeys(ctx context.Context, table string) ([]common.ForeignKeyInfo, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT kcu.CONSTRAINT_NAME, kcu.COLUMN_NAME,
		       kcu.REFERENCED_TABLE_NAME, kcu.REFERENCED_COLUMN_NAME,
		       rc.UPDATE_RULE, rc.DELETE_RULE
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
		  ON rc.CONSTRAINT_SCHEMA = kcu.TABLE_SCHEMA
		 AND rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		WHERE kcu.TABLE_SCHEMA = DATABASE() AND kcu.TABLE_NAME = ?
		  AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`
	rows, err := m.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ForeignKeyInfo
	for rows.Next() {
		var fk common.ForeignKeyInfo
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable,
			&fk.ReferencedColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
			return nil, err
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}

// GetIndexes lists the table's indexes grouped by name, columns in key
// order.
func (m *MySQL) GetIndexes(ctx context.Context, table string) ([]common.IndexInfo, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE = 0, INDEX_TYPE
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`
	rows, err := m.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.IndexInfo
	for rows.Next() {
		var name, column, method string
		var unique bool
		if err := rows.Scan(&name, &column, &unique, &method); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].Name == name {
			out[n-1].Columns = append(out[n-1].Columns, column)
			continue
		}
		out = append(out, common.IndexInfo{
			Name:    name,
			Columns: []string{column},
			Unique:  unique,
			Method:  method,
		})
	}
	return out, rows.Err()
}

// GetConstraints lists the table's constraints. CHECK expressions come
// from CHECK_CONSTRAINTS where the server version provides them.
func (m *MySQL) GetConstraints(ctx context.Context, table string) ([]common.ConstraintInfo, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT tc.CONSTRAINT_NAME, tc.CONSTRAINT_TYPE,
		       COALESCE(cc.CHECK_CLAUSE, '')
		FROM information_schema.TABLE_CONSTRAINTS tc
		LEFT JOIN information_schema.CHECK_CONSTRAINTS cc
		  ON cc.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
		 AND cc.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
		WHERE tc.TABLE_SCHEMA = DATABASE() AND tc.TABLE_NAME = ?
		ORDER BY tc.CONSTRAINT_NAME`
	rows, err := m.db.QueryContext(ctx, q, table)
	if err != nil {
		// CHECK_CONSTRAINTS is absent before MySQL 8.0.16.
		return m.constraintsWithoutChecks(ctx, table)
	}
	defer rows.Close()

	var out []common.ConstraintInfo
	for rows.Next() {
		var c common.ConstraintInfo
		if err := rows.Scan(&c.Name, &c.Type, &c.Definition); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (m *MySQL) constraintsWithoutChecks(ctx context.Context, table string) ([]common.ConstraintInfo, error) {
	const q = `
		SELECT CONSTRAINT_NAME, CONSTRAINT_TYPE
		FROM information_schema.TABLE_CONSTRAINTS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY CONSTRAINT_NAME`
	rows, err := m.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ConstraintInfo
	for rows.Next() {
		var c common.ConstraintInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetSchema aggregates per-table introspection for the given tables, or
// for every table when the list is empty.
func (m *MySQL) GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error) {
	if m.db == nil {
		return common.DatabaseSchema{}, common.ErrNotConnected
	}
	all, err := m.GetTables(ctx)
	if err != nil {
		return common.DatabaseSchema{}, err
	}
	selected := common.SelectTables(all, tables)

	schemas := make([]common.TableSchema, 0, len(selected))
	for _, t := range selected {
		ts := common.TableSchema{Table: t}
		if ts.Columns, err = m.GetColumns(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.PrimaryKeys, err = m.GetPrimaryKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.ForeignKeys, err = m.GetForeignKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Indexes, err = m.GetIndexes(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Constraints, err = m.GetConstraints(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		schemas = append(schemas, ts)
	}
	return common.NewDatabaseSchema(schemas), nil
}

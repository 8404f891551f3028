package clickhouse

import (
	"context"
	"strings"

	"github.com/dbscope/dbscope/internal/database/common"
)

// GetDatabases lists databases from the system catalog, internal ones
// excluded.
func (c *ClickHouse) GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT name, comment
		FROM system.databases
		WHERE name NOT IN ('system', 'INFORMATION_SCHEMA', 'information_schema')
		ORDER BY name`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.DatabaseInfo
	for rows.Next() {
		var db common.DatabaseInfo
		if err := rows.Scan(&db.Name, &db.Comment); err != nil {
			return nil, err
		}
		out = append(out, db)
	}
	return out, rows.Err()
}

// GetTables lists tables and views of the connected database with the
// engine's row count.
func (c *ClickHouse) GetTables(ctx context.Context) ([]common.TableInfo, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT name, database, engine, total_rows, comment
		FROM system.tables
		WHERE database = currentDatabase()
		ORDER BY name`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.TableInfo
	for rows.Next() {
		var t common.TableInfo
		var totalRows *uint64
		if err := rows.Scan(&t.Name, &t.Schema, &t.Type, &totalRows, &t.Comment); err != nil {
			return nil, err
		}
		t.RowCount = -1
		if totalRows != nil {
			t.RowCount = int64(*totalRows)
		}
		if strings.EqualFold(t.Type, "View") || strings.EqualFold(t.Type, "MaterializedView") {
			t.Type = "VIEW"
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetColumns lists the columns of one table in position order.
func (c *ClickHouse) GetColumns(ctx context.Context, table string) ([]common.ColumnDetail, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT name, type, startsWith(type, 'Nullable('),
		       default_expression, position, comment
		FROM system.columns
		WHERE database = currentDatabase() AND table = ?
		ORDER BY position`
	rows, err := c.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ColumnDetail
	for rows.Next() {
		var col common.ColumnDetail
		var nullable uint8
		var position uint64
		if err := rows.Scan(&col.Name, &col.DataType, &nullable,
			&col.Default, &position, &col.Comment); err != nil {
			return nil, err
		}
		col.Nullable = nullable != 0
		col.Ordinal = int(position)
		out = append(out, col)
	}
	return out, rows.Err()
}

// GetPrimaryKeys lists the sorting-key columns. ClickHouse primary keys
// order data rather than enforce uniqueness; callers render them with
// that caveat.
func (c *ClickHouse) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT name
		FROM system.columns
		WHERE database = currentDatabase() AND table = ? AND is_in_primary_key
		ORDER BY position`
	rows, err := c.db.QueryContext(ctx, q, table)
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

// GetForeignKeys returns an empty list: ClickHouse has no foreign keys.
func (c *ClickHouse) GetForeignKeys(ctx context.Context, table string) ([]common.ForeignKeyInfo, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	return []common.ForeignKeyInfo{}, nil
}

// GetIndexes lists data-skipping indices.
func (c *ClickHouse) GetIndexes(ctx context.Context, table string) ([]common.IndexInfo, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT name, expr, type
		FROM system.data_skipping_indices
		WHERE database = currentDatabase() AND table = ?
		ORDER BY name`
	rows, err := c.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.IndexInfo
	for rows.Next() {
		var name, expr, kind string
		if err := rows.Scan(&name, &expr, &kind); err != nil {
			return nil, err
		}
		out = append(out, common.IndexInfo{
			Name:    name,
			Columns: []string{expr},
			Unique:  false,
			Method:  kind,
		})
	}
	return out, rows.Err()
}

// GetConstraints lists the table's sorting and partition keys as
// constraint-like metadata; ClickHouse has no relational constraints.
func (c *ClickHouse) GetConstraints(ctx context.Context, table string) ([]common.ConstraintInfo, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT sorting_key, partition_key
		FROM system.tables
		WHERE database = currentDatabase() AND name = ?`
	var sortingKey, partitionKey string
	if err := c.db.QueryRowContext(ctx, q, table).Scan(&sortingKey, &partitionKey); err != nil {
		return nil, err
	}

	var out []common.ConstraintInfo
	if sortingKey != "" {
		out = append(out, common.ConstraintInfo{
			Name:       "sorting_key",
			Type:       "ORDER BY",
			Definition: sortingKey,
		})
	}
	if partitionKey != "" {
		out = append(out, common.ConstraintInfo{
			Name:       "partition_key",
			Type:       "PARTITION BY",
			Definition: partitionKey,
		})
	}
	return out, nil
}

// GetSchema aggregates per-table introspection for the given tables, or
// for every table when the list is empty.
func (c *ClickHouse) GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error) {
	if c.db == nil {
		return common.DatabaseSchema{}, common.ErrNotConnected
	}
	all, err := c.GetTables(ctx)
	if err != nil {
		return common.DatabaseSchema{}, err
	}
	selected := common.SelectTables(all, tables)

	schemas := make([]common.TableSchema, 0, len(selected))
	for _, t := range selected {
		ts := common.TableSchema{Table: t}
		if ts.Columns, err = c.GetColumns(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.PrimaryKeys, err = c.GetPrimaryKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.ForeignKeys, err = c.GetForeignKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Indexes, err = c.GetIndexes(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Constraints, err = c.GetConstraints(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		schemas = append(schemas, ts)
	}
	return common.NewDatabaseSchema(schemas), nil
}

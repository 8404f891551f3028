package postgres

import (
	"context"

	"github.com/dbscope/dbscope/internal/database/common"
)

// GetDatabases lists non-template databases on the server.
func (p *Postgres) GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT d.datname,
		       pg_catalog.pg_get_userbyid(d.datdba),
		       COALESCE(pg_catalog.shobj_description(d.oid, 'pg_database'), '')
		FROM pg_catalog.pg_database d
		WHERE d.datistemplate = false
		ORDER BY d.datname`
	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.DatabaseInfo
	for rows.Next() {
		var db common.DatabaseInfo
		if err := rows.Scan(&db.Name, &db.Owner, &db.Comment); err != nil {
			return nil, err
		}
		out = append(out, db)
	}
	return out, rows.Err()
}

// GetTables lists tables and views outside the system schemas, with the
// planner's row estimate where one exists.
func (p *Postgres) GetTables(ctx context.Context) ([]common.TableInfo, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT t.table_name,
		       t.table_schema,
		       t.table_type,
		       COALESCE(c.reltuples::bigint, -1),
		       COALESCE(pg_catalog.obj_description(c.oid, 'pg_class'), '')
		FROM information_schema.tables t
		LEFT JOIN pg_catalog.pg_class c
		       ON c.relname = t.table_name
		      AND c.relnamespace = (SELECT n.oid FROM pg_catalog.pg_namespace n
		                            WHERE n.nspname = t.table_schema)
		WHERE t.table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY t.table_schema, t.table_name`
	rows, err := p.pool.Query(ctx, q)
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
func (p *Postgres) GetColumns(ctx context.Context, table string) ([]common.ColumnDetail, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES',
		       COALESCE(column_default, ''),
		       ordinal_position
		FROM information_schema.columns
		WHERE table_name = $1
		  AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY ordinal_position`
	rows, err := p.pool.Query(ctx, q, table)
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

// GetPrimaryKeys lists primary-key columns in key order.
func (p *Postgres) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT a.attname
		FROM pg_catalog.pg_index i
		JOIN pg_catalog.pg_class c ON c.oid = i.indrelid
		JOIN pg_catalog.pg_attribute a
		  ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
		WHERE c.relname = $1 AND i.indisprimary
		ORDER BY array_position(i.indkey, a.attnum)`
	rows, err := p.pool.Query(ctx, q, table)
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
func (p *Postgres) GetForeignKeys(ctx context.Context, table string) ([]common.ForeignKeyInfo, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT tc.constraint_name,
		       kcu.column_name,
		       ccu.table_name,
		       ccu.column_name,
		       rc.update_rule,
		       rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
		  ON rc.constraint_name = tc.constraint_name
		 AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_name = $1
		ORDER BY tc.constraint_name, kcu.ordinal_position`
	rows, err := p.pool.Query(ctx, q, table)
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

// GetIndexes lists the table's indexes grouped by index name, columns in
// key order.
func (p *Postgres) GetIndexes(ctx context.Context, table string) ([]common.IndexInfo, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT i.relname,
		       a.attname,
		       ix.indisunique,
		       am.amname
		FROM pg_catalog.pg_class t
		JOIN pg_catalog.pg_index ix ON ix.indrelid = t.oid
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_am am ON am.oid = i.relam
		JOIN pg_catalog.pg_attribute a
		  ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1
		ORDER BY i.relname, array_position(ix.indkey, a.attnum)`
	rows, err := p.pool.Query(ctx, q, table)
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

// GetConstraints lists the table's constraints with their definitions.
func (p *Postgres) GetConstraints(ctx context.Context, table string) ([]common.ConstraintInfo, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT con.conname,
		       con.contype::text,
		       pg_catalog.pg_get_constraintdef(con.oid)
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class c ON c.oid = con.conrelid
		WHERE c.relname = $1
		ORDER BY con.conname`
	rows, err := p.pool.Query(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ConstraintInfo
	for rows.Next() {
		var name, contype, def string
		if err := rows.Scan(&name, &contype, &def); err != nil {
			return nil, err
		}
		out = append(out, common.ConstraintInfo{
			Name:       name,
			Type:       constraintTypeName(contype),
			Definition: def,
		})
	}
	return out, rows.Err()
}

func constraintTypeName(contype string) string {
	switch contype {
	case "p":
		return "PRIMARY KEY"
	case "f":
		return "FOREIGN KEY"
	case "u":
		return "UNIQUE"
	case "c":
		return "CHECK"
	case "x":
		return "EXCLUDE"
	default:
		return contype
	}
}

// GetSchema aggregates per-table introspection for the given tables, or
// for every base table when the list is empty.
func (p *Postgres) GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error) {
	if p.pool == nil {
		return common.DatabaseSchema{}, common.ErrNotConnected
	}
	all, err := p.GetTables(ctx)
	if err != nil {
		return common.DatabaseSchema{}, err
	}
	selected := common.SelectTables(all, tables)

	schemas := make([]common.TableSchema, 0, len(selected))
	for _, t := range selected {
		ts := common.TableSchema{Table: t}
		if ts.Columns, err = p.GetColumns(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.PrimaryKeys, err = p.GetPrimaryKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.ForeignKeys, err = p.GetForeignKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Indexes, err = p.GetIndexes(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Constraints, err = p.GetConstraints(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		schemas = append(schemas, ts)
	}
	return common.NewDatabaseSchema(schemas), nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbscope/dbscope/internal/database/common"
)

// quoteIdent quotes an identifier for interpolation into a PRAGMA,
// which cannot take bound parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// GetDatabases lists the attached databases, normally just "main".
func (s *SQLite) GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := s.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.DatabaseInfo
	for rows.Next() {
		var seq int
		var name string
		var file sql.NullString
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, err
		}
		out = append(out, common.DatabaseInfo{Name: name, Comment: file.String})
	}
	return out, rows.Err()
}

// GetTables lists tables and views from sqlite_master, internal tables
// excluded. SQLite keeps no row-count estimate; RowCount is -1.
func (s *SQLite) GetTables(ctx context.Context) ([]common.TableInfo, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	const q = `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.TableInfo
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		kind := "BASE TABLE"
		if typ == "view" {
			kind = "VIEW"
		}
		out = append(out, common.TableInfo{Name: name, Schema: "main", Type: kind, RowCount: -1})
	}
	return out, rows.Err()
}

// tableInfoRow is one PRAGMA table_info result row.
type tableInfoRow struct {
	cid     int
	name    string
	typ     string
	notNull int
	dflt    sql.NullString
	pk      int
}

func (s *SQLite) tableInfo(ctx context.Context, table string) ([]tableInfoRow, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tableInfoRow
	for rows.Next() {
		var r tableInfoRow
		if err := rows.Scan(&r.cid, &r.name, &r.typ, &r.notNull, &r.dflt, &r.pk); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetColumns lists the columns of one table in declaration order.
func (s *SQLite) GetColumns(ctx context.Context, table string) ([]common.ColumnDetail, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	info, err := s.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]common.ColumnDetail, 0, len(info))
	for _, r := range info {
		out = append(out, common.ColumnDetail{
			Name:     r.name,
			DataType: r.typ,
			Nullable: r.notNull == 0,
			Default:  r.dflt.String,
			Ordinal:  r.cid + 1,
		})
	}
	return out, nil
}

// GetPrimaryKeys lists primary-key columns in key order.
func (s *SQLite) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	info, err := s.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	// pk is the one-based position within the primary key, zero for
	// non-key columns.
	byPos := map[int]string{}
	max := 0
	for _, r := range info {
		if r.pk > 0 {
			byPos[r.pk] = r.name
			if r.pk > max {
				max = r.pk
			}
		}
	}
	var out []string
	for i := 1; i <= max; i++ {
		if name, ok := byPos[i]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// GetForeignKeys lists the table's foreign keys. SQLite does not name
// them; names are synthesized from the constraint ordinal.
func (s *SQLite) GetForeignKeys(ctx context.Context, table string) ([]common.ForeignKeyInfo, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.ForeignKeyInfo
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		out = append(out, common.ForeignKeyInfo{
			Name:             fmt.Sprintf("fk_%s_%d", table, id),
			Column:           from,
			ReferencedTable:  refTable,
			ReferencedColumn: to.String,
			OnUpdate:         onUpdate,
			OnDelete:         onDelete,
		})
	}
	return out, rows.Err()
}

// GetIndexes lists the table's indexes with their column lists.
func (s *SQLite) GetIndexes(ctx context.Context, table string) ([]common.IndexInfo, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	type indexRow struct {
		name   string
		unique bool
		origin string
	}
	var idx []indexRow
	for rows.Next() {
		var seq int
		var r indexRow
		var uniqueInt, partial int
		if err := rows.Scan(&seq, &r.name, &uniqueInt, &r.origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		r.unique = uniqueInt == 1
		idx = append(idx, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make([]common.IndexInfo, 0, len(idx))
	for _, r := range idx {
		cols, err := s.indexColumns(ctx, r.name)
		if err != nil {
			return nil, err
		}
		out = append(out, common.IndexInfo{
			Name:    r.name,
			Columns: cols,
			Unique:  r.unique,
			Method:  r.origin,
		})
	}
	return out, nil
}

func (s *SQLite) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		out = append(out, name.String)
	}
	return out, rows.Err()
}

// GetConstraints derives constraints from the primary key and unique
// indexes. SQLite exposes CHECK clauses only inside the raw CREATE
// statement, which is not parsed here.
func (s *SQLite) GetConstraints(ctx context.Context, table string) ([]common.ConstraintInfo, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	var out []common.ConstraintInfo

	pks, err := s.GetPrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(pks) > 0 {
		out = append(out, common.ConstraintInfo{
			Name:       "pk_" + table,
			Type:       "PRIMARY KEY",
			Definition: "PRIMARY KEY (" + strings.Join(pks, ", ") + ")",
		})
	}

	indexes, err := s.GetIndexes(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, ix := range indexes {
		if ix.Unique && ix.Method == "u" {
			out = append(out, common.ConstraintInfo{
				Name:       ix.Name,
				Type:       "UNIQUE",
				Definition: "UNIQUE (" + strings.Join(ix.Columns, ", ") + ")",
			})
		}
	}
	return out, nil
}

// GetSchema aggregates per-table introspection for the given tables, or
// for every table when the list is empty.
func (s *SQLite) GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error) {
	if s.db == nil {
		return common.DatabaseSchema{}, common.ErrNotConnected
	}
	all, err := s.GetTables(ctx)
	if err != nil {
		return common.DatabaseSchema{}, err
	}
	selected := common.SelectTables(all, tables)

	schemas := make([]common.TableSchema, 0, len(selected))
	for _, t := range selected {
		ts := common.TableSchema{Table: t}
		if ts.Columns, err = s.GetColumns(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.PrimaryKeys, err = s.GetPrimaryKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.ForeignKeys, err = s.GetForeignKeys(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Indexes, err = s.GetIndexes(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		if ts.Constraints, err = s.GetConstraints(ctx, t.Name); err != nil {
			return common.DatabaseSchema{}, err
		}
		schemas = append(schemas, ts)
	}
	return common.NewDatabaseSchema(schemas), nil
}

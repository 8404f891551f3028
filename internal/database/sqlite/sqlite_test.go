package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

func openMemory(t *testing.T) *SQLite {
	t.Helper()
	cfg := common.NewConnectionConfig("mem", dbcapabilities.SQLite, common.NewInMemoryParams())
	drv := New(cfg)
	require.NoError(t, drv.Connect(context.Background()))
	t.Cleanup(func() { drv.Disconnect(context.Background()) })
	return drv
}

func mustExec(t *testing.T, drv *SQLite, query string) common.QueryExecutionResult {
	t.Helper()
	res, err := drv.ExecuteQuery(context.Background(), query)
	require.NoError(t, err)
	require.False(t, res.IsError(), "query %q failed: %+v", query, res.Err)
	return res
}

func TestExecuteQueryRoundTrip(t *testing.T) {
	drv := openMemory(t)
	ctx := context.Background()

	mustExec(t, drv, `CREATE TABLE items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		price DECIMAL(10,2),
		active BOOLEAN,
		created DATETIME
	)`)

	res := mustExec(t, drv, `INSERT INTO items VALUES
		(1, 'widget', '9.99', 1, '2024-01-15 10:30:00'),
		(2, 'gadget', '120.50', 0, '2024-02-01T08:00:00')`)
	require.NotNil(t, res.Modified)
	assert.Equal(t, int64(2), res.Modified.RowsAffected)

	res = mustExec(t, drv, "SELECT id, name, price, active, created FROM items ORDER BY id")
	require.NotNil(t, res.Select)
	require.Equal(t, 2, res.Select.RowCount)
	assert.Equal(t, "SELECT id, name, price, active, created FROM items ORDER BY id",
		res.Select.OriginalQuery)

	row := res.Select.Rows[0]
	id, _ := row.Value(0)
	assert.Equal(t, dbvalue.Int64(1), id)

	name, _ := row.Value(1)
	assert.Equal(t, dbvalue.Text("widget"), name)

	price, _ := row.Value(2)
	d, ok := price.AsDecimal()
	require.True(t, ok)
	assert.Equal(t, "9.99", d.String())

	active, _ := row.Value(3)
	b, ok := active.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	created, _ := row.Value(4)
	assert.Equal(t, dbvalue.KindDateTime, created.Kind())
	assert.Equal(t, "2024-01-15 10:30:00", created.String())

	// Second row exercises the T-separated timestamp and false boolean.
	row = res.Select.Rows[1]
	active, _ = row.Value(3)
	b, ok = active.AsBool()
	require.True(t, ok)
	assert.False(t, b)

	res, err := drv.ExecuteQuery(ctx, "   ")
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Equal(t, "Empty query", res.Err.Message)

	res, err = drv.ExecuteQuery(ctx, "SELECT nonsense FROM nowhere")
	require.NoError(t, err)
	assert.True(t, res.IsError())
}

func TestNullsAndExpressionColumns(t *testing.T) {
	drv := openMemory(t)

	res := mustExec(t, drv, "SELECT NULL, 1 + 1, 1.5 * 2, 'a' || 'b'")
	require.Equal(t, 1, res.Select.RowCount)
	row := res.Select.Rows[0]

	v, _ := row.Value(0)
	assert.True(t, v.IsNull())

	v, _ = row.Value(1)
	assert.Equal(t, dbvalue.Int64(2), v)

	v, _ = row.Value(2)
	assert.Equal(t, dbvalue.Float64(3.0), v)

	v, _ = row.Value(3)
	assert.Equal(t, dbvalue.Text("ab"), v)
}

func TestRowLimitApplied(t *testing.T) {
	drv := openMemory(t)

	mustExec(t, drv, "CREATE TABLE n (v INTEGER)")
	res := mustExec(t, drv, `INSERT INTO n
		WITH RECURSIVE seq(x) AS (
			SELECT 1 UNION ALL SELECT x + 1 FROM seq WHERE x < 1500
		)
		SELECT x FROM seq`)
	require.Equal(t, int64(1500), res.Modified.RowsAffected)

	res = mustExec(t, drv, "SELECT v FROM n")
	assert.Equal(t, common.DefaultRowLimit, res.Select.RowCount)

	res = mustExec(t, drv, "SELECT v FROM n LIMIT 5")
	assert.Equal(t, 5, res.Select.RowCount)
}

func TestIntrospection(t *testing.T) {
	drv := openMemory(t)
	ctx := context.Background()

	mustExec(t, drv, `CREATE TABLE authors (
		id INTEGER PRIMARY KEY,
		email TEXT UNIQUE
	)`)
	mustExec(t, drv, `CREATE TABLE books (
		id INTEGER PRIMARY KEY,
		author_id INTEGER REFERENCES authors(id) ON DELETE CASCADE,
		title TEXT NOT NULL
	)`)
	mustExec(t, drv, "CREATE INDEX idx_books_title ON books (title)")

	dbs, err := drv.GetDatabases(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, dbs)
	assert.Equal(t, "main", dbs[0].Name)

	tables, err := drv.GetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "authors", tables[0].Name)
	assert.Equal(t, "BASE TABLE", tables[0].Type)
	assert.Equal(t, int64(-1), tables[0].RowCount)

	cols, err := drv.GetColumns(ctx, "books")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, 1, cols[0].Ordinal)
	assert.False(t, cols[2].Nullable)

	pks, err := drv.GetPrimaryKeys(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pks)

	fks, err := drv.GetForeignKeys(ctx, "books")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, "author_id", fks[0].Column)
	assert.Equal(t, "authors", fks[0].ReferencedTable)
	assert.Equal(t, "id", fks[0].ReferencedColumn)
	assert.Equal(t, "CASCADE", fks[0].OnDelete)

	idx, err := drv.GetIndexes(ctx, "books")
	require.NoError(t, err)
	require.NotEmpty(t, idx)

	schema, err := drv.GetSchema(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, schema.TotalTables)
	assert.Len(t, schema.Tables, 2)

	schema, err = drv.GetSchema(ctx, []string{"authors"})
	require.NoError(t, err)
	assert.Equal(t, 1, schema.TotalTables)
}

func TestStreamQuery(t *testing.T) {
	drv := openMemory(t)
	ctx := context.Background()

	mustExec(t, drv, "CREATE TABLE s (v INTEGER)")
	mustExec(t, drv, "INSERT INTO s VALUES (1), (2), (3)")

	stream, err := drv.StreamQuery(ctx, "SELECT v FROM s ORDER BY v")
	require.NoError(t, err)
	defer stream.Close()

	var got []string
	for {
		row, err := stream.Next(ctx)
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
		v, _ := row.Value(0)
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := common.NewConnectionConfig("file", dbcapabilities.SQLite, common.NewFileParams(path, false))

	require.NoError(t, TestConnection(context.Background(), cfg))

	drv := New(cfg)
	require.NoError(t, drv.Connect(context.Background()))
	defer drv.Disconnect(context.Background())
	mustExec(t, drv, "CREATE TABLE t (v INTEGER)")
	assert.True(t, drv.IsConnected(context.Background()))
}

func TestDisconnectedBehavior(t *testing.T) {
	drv := New(common.NewConnectionConfig("x", dbcapabilities.SQLite, common.NewInMemoryParams()))

	_, err := drv.ExecuteQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, err = drv.GetTables(context.Background())
	assert.ErrorIs(t, err, common.ErrNotConnected)

	assert.NoError(t, drv.Disconnect(context.Background()))
}

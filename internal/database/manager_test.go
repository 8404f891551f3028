package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/keyring"
	"github.com/dbscope/dbscope/pkg/logger"
)

func newTestManager() *Manager {
	log := logger.New("database-test", "dev")
	log.DisableConsoleOutput()
	return NewManager(log, keyring.NewMemoryStore())
}

func memoryConfig(name string) common.ConnectionConfig {
	return common.NewConnectionConfig(name, dbcapabilities.SQLite, common.NewInMemoryParams())
}

func TestManagerNotConnected(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	res := m.ExecuteQuery(ctx, "SELECT 1")
	require.True(t, res.IsError())
	assert.Equal(t, "Database not connected", res.Err.Message)

	res = m.GetTableColumns(ctx, "t")
	require.True(t, res.IsError())
	assert.Equal(t, "Database not connected", res.Err.Message)

	_, err := m.GetTables(ctx)
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, err = m.GetDatabases(ctx)
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, err = m.GetSchema(ctx, nil)
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, ok := m.DatabaseType()
	assert.False(t, ok)
	assert.False(t, m.IsConnected(ctx))
	assert.NoError(t, m.Disconnect(ctx))
}

func TestManagerConnectAndQuery(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx, memoryConfig("mem")))
	defer m.Disconnect(ctx)
	assert.True(t, m.IsConnected(ctx))

	typ, ok := m.DatabaseType()
	require.True(t, ok)
	assert.Equal(t, dbcapabilities.SQLite, typ)

	res := m.ExecuteQuery(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)")
	require.False(t, res.IsError())

	res = m.ExecuteQuery(ctx, "INSERT INTO t VALUES (1, 'a')")
	require.NotNil(t, res.Modified)
	assert.Equal(t, int64(1), res.Modified.RowsAffected)

	res = m.ExecuteQuery(ctx, "SELECT * FROM t")
	require.NotNil(t, res.Select)
	assert.Equal(t, 1, res.Select.RowCount)

	// Statement failures are results, not errors.
	res = m.ExecuteQuery(ctx, "SELECT * FROM missing")
	assert.True(t, res.IsError())

	res = m.ExecuteQuery(ctx, "")
	require.True(t, res.IsError())
	assert.Equal(t, "Empty query", res.Err.Message)
}

func TestManagerGetTableColumns(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx, memoryConfig("mem")))
	defer m.Disconnect(ctx)

	m.ExecuteQuery(ctx, `CREATE TABLE t (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT 'anon'
	)`)

	res := m.GetTableColumns(ctx, "t")
	require.NotNil(t, res.Select)
	require.Equal(t, 2, res.Select.RowCount)
	assert.Equal(t, "column", res.Select.Columns[0].Name)

	first := res.Select.Rows[0]
	name, _ := first.Value(0)
	assert.Equal(t, "id", name.String())

	second := res.Select.Rows[1]
	def, _ := second.Value(3)
	assert.Equal(t, "'anon'", def.String())
}

func TestManagerConnectReplacesConnection(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx, memoryConfig("first")))
	m.ExecuteQuery(ctx, "CREATE TABLE marker (v INTEGER)")

	require.NoError(t, m.Connect(ctx, memoryConfig("second")))
	defer m.Disconnect(ctx)

	cfg, ok := m.ActiveConfig()
	require.True(t, ok)
	assert.Equal(t, "second", cfg.Name)

	// The marker table lived in the first connection only.
	res := m.ExecuteQuery(ctx, "SELECT * FROM marker")
	assert.True(t, res.IsError())
}

func TestManagerFailedConnectKeepsCurrent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx, memoryConfig("keep")))
	defer m.Disconnect(ctx)

	// Unknown engine fails in the factory, before dialing.
	bad := common.NewConnectionConfig("bad", dbcapabilities.DatabaseType("oracle"),
		common.NewServerParams("h", 1521, "u", "", "d"))
	require.Error(t, m.Connect(ctx, bad))

	cfg, ok := m.ActiveConfig()
	require.True(t, ok)
	assert.Equal(t, "keep", cfg.Name)
	assert.True(t, m.IsConnected(ctx))
}

func TestManagerSecretInjection(t *testing.T) {
	secrets := keyring.NewMemoryStore()
	log := logger.New("database-test", "dev")
	log.DisableConsoleOutput()
	m := NewManager(log, secrets)

	cfg := common.NewConnectionConfig("srv", dbcapabilities.PostgreSQL,
		common.NewServerParams("localhost", 5432, "app", "", "appdb"))
	require.NoError(t, secrets.Set(cfg.ID.String(), "hunter2"))

	m.injectSecret(&cfg)
	assert.Equal(t, "hunter2", cfg.Params.Server.Password)

	// An explicit password wins over the store.
	cfg2 := common.NewConnectionConfig("srv2", dbcapabilities.PostgreSQL,
		common.NewServerParams("localhost", 5432, "app", "explicit", "appdb"))
	require.NoError(t, secrets.Set(cfg2.ID.String(), "stored"))
	m.injectSecret(&cfg2)
	assert.Equal(t, "explicit", cfg2.Params.Server.Password)
}

func TestManagerStreamQuery(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.StreamQuery(ctx, "SELECT 1")
	assert.ErrorIs(t, err, common.ErrNotConnected)

	require.NoError(t, m.Connect(ctx, memoryConfig("mem")))
	defer m.Disconnect(ctx)

	m.ExecuteQuery(ctx, "CREATE TABLE s (v INTEGER)")
	m.ExecuteQuery(ctx, "INSERT INTO s VALUES (7)")

	stream, err := m.StreamQuery(ctx, "SELECT v FROM s")
	require.NoError(t, err)
	defer stream.Close()

	row, err := stream.Next(ctx)
	require.NoError(t, err)
	v, _ := row.Value(0)
	assert.Equal(t, "7", v.String())
}

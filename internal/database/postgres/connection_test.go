package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// testConfig builds a config from PGTEST_* environment variables, or
// skips the test when no server is reachable.
func testConfig(t *testing.T) common.ConnectionConfig {
	t.Helper()
	host := os.Getenv("PGTEST_HOST")
	if host == "" {
		t.Skipf("PGTEST_HOST not set; skipping live PostgreSQL tests")
	}
	port := 5432
	if p := os.Getenv("PGTEST_PORT"); p != "" {
		port, _ = strconv.Atoi(p)
	}
	return common.NewConnectionConfig("pgtest", dbcapabilities.PostgreSQL,
		common.NewServerParams(host, port,
			os.Getenv("PGTEST_USER"), os.Getenv("PGTEST_PASSWORD"), os.Getenv("PGTEST_DB")))
}

func TestExecuteQueryDisconnected(t *testing.T) {
	drv := New(common.NewConnectionConfig("x", dbcapabilities.PostgreSQL,
		common.NewServerParams("localhost", 5432, "u", "", "d")))

	_, err := drv.ExecuteQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, err = drv.GetTables(context.Background())
	assert.ErrorIs(t, err, common.ErrNotConnected)

	assert.False(t, drv.IsConnected(context.Background()))
	assert.NoError(t, drv.Disconnect(context.Background()))
}

func TestLiveRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	drv := New(cfg)
	require.NoError(t, drv.Connect(ctx))
	defer drv.Disconnect(ctx)
	require.True(t, drv.IsConnected(ctx))

	res, err := drv.ExecuteQuery(ctx, "SELECT 1 AS one, 'x' AS label")
	require.NoError(t, err)
	require.NotNil(t, res.Select)
	require.Equal(t, 1, res.Select.RowCount)
	assert.Equal(t, "one", res.Select.Columns[0].Name)
	assert.Equal(t, "1", res.Select.Rows[0].Cells[0].Value.String())

	res, err = drv.ExecuteQuery(ctx, "SELECT syntax error")
	require.NoError(t, err)
	assert.True(t, res.IsError())

	res, err = drv.ExecuteQuery(ctx, "   ")
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Equal(t, "Empty query", res.Err.Message)
}

func TestLiveIntrospection(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	drv := New(cfg)
	require.NoError(t, drv.Connect(ctx))
	defer drv.Disconnect(ctx)

	dbs, err := drv.GetDatabases(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, dbs)

	if _, err := drv.GetTables(ctx); err != nil {
		t.Fatalf("GetTables: %v", err)
	}
}

package clickhouse

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

func TestDisconnectedBehavior(t *testing.T) {
	drv := New(common.NewConnectionConfig("x", dbcapabilities.ClickHouse,
		common.NewServerParams("localhost", 8123, "default", "", "default")))

	_, err := drv.ExecuteQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, common.ErrNotConnected)

	_, err = drv.GetTables(context.Background())
	assert.ErrorIs(t, err, common.ErrNotConnected)

	assert.False(t, drv.IsConnected(context.Background()))
	assert.NoError(t, drv.Disconnect(context.Background()))
}

func liveConfig(t *testing.T) common.ConnectionConfig {
	t.Helper()
	host := os.Getenv("CHTEST_HOST")
	if host == "" {
		t.Skipf("CHTEST_HOST not set; skipping live ClickHouse tests")
	}
	port := 8123
	if p := os.Getenv("CHTEST_PORT"); p != "" {
		port, _ = strconv.Atoi(p)
	}
	user := os.Getenv("CHTEST_USER")
	if user == "" {
		user = "default"
	}
	db := os.Getenv("CHTEST_DB")
	if db == "" {
		db = "default"
	}
	return common.NewConnectionConfig("chtest", dbcapabilities.ClickHouse,
		common.NewServerParams(host, port, user, os.Getenv("CHTEST_PASSWORD"), db))
}

func TestLiveRoundTrip(t *testing.T) {
	cfg := liveConfig(t)
	ctx := context.Background()

	drv := New(cfg)
	require.NoError(t, drv.Connect(ctx))
	defer drv.Disconnect(ctx)
	require.True(t, drv.IsConnected(ctx))

	res, err := drv.ExecuteQuery(ctx, "SELECT 1 AS one, 'x' AS label")
	require.NoError(t, err)
	require.NotNil(t, res.Select)
	assert.Equal(t, 1, res.Select.RowCount)

	// SHOW is a read statement on this engine.
	res, err = drv.ExecuteQuery(ctx, "SHOW TABLES")
	require.NoError(t, err)
	assert.NotNil(t, res.Select)

	// The HTTP protocol reports no affected-row counts.
	res, err = drv.ExecuteQuery(ctx,
		"CREATE TABLE IF NOT EXISTS dbscope_probe (v UInt8) ENGINE = Memory")
	require.NoError(t, err)
	require.NotNil(t, res.Modified)
	assert.Equal(t, int64(0), res.Modified.RowsAffected)

	_, err = drv.ExecuteQuery(ctx, "DROP TABLE IF EXISTS dbscope_probe")
	require.NoError(t, err)
}

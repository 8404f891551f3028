package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

func TestNewDriverDispatch(t *testing.T) {
	server := common.NewServerParams("localhost", 5432, "u", "", "d")

	tests := []struct {
		dbType dbcapabilities.DatabaseType
		params common.ConnectionParams
	}{
		{dbcapabilities.PostgreSQL, server},
		{dbcapabilities.MySQL, server},
		{dbcapabilities.ClickHouse, server},
		{dbcapabilities.SQLite, common.NewInMemoryParams()},
		{dbcapabilities.DuckDB, common.NewFileParams("/tmp/x.duckdb", false)},
	}
	for _, tt := range tests {
		t.Run(string(tt.dbType), func(t *testing.T) {
			drv, err := NewDriver(common.NewConnectionConfig("c", tt.dbType, tt.params))
			require.NoError(t, err)
			assert.Equal(t, tt.dbType, drv.DatabaseType())
			assert.False(t, drv.IsConnected(context.Background()))
		})
	}
}

func TestNewDriverRejectsInvalidConfig(t *testing.T) {
	// Paradigm mismatch surfaces before any driver is built.
	_, err := NewDriver(common.NewConnectionConfig("bad", dbcapabilities.PostgreSQL,
		common.NewInMemoryParams()))
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewDriver(common.NewConnectionConfig("bad", dbcapabilities.DatabaseType("oracle"),
		common.NewServerParams("h", 1521, "u", "", "d")))
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestSupportedTypes(t *testing.T) {
	types := SupportedTypes()
	assert.Len(t, types, 5)
	for _, typ := range types {
		assert.True(t, IsSupported(typ))
	}
	assert.False(t, IsSupported(dbcapabilities.DatabaseType("mongodb")))
}

func TestTestConnectionEmbedded(t *testing.T) {
	cfg := common.NewConnectionConfig("mem", dbcapabilities.SQLite, common.NewInMemoryParams())
	assert.NoError(t, TestConnection(context.Background(), cfg))

	bad := common.NewConnectionConfig("bad", dbcapabilities.SQLite,
		common.NewServerParams("h", 1, "u", "", "d"))
	assert.ErrorIs(t, TestConnection(context.Background(), bad), common.ErrInvalidConfiguration)
}

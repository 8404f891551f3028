// Package database ties the per-engine drivers together: a factory that
// turns a validated configuration into the right driver, and a manager
// that owns the single active connection.
package database

import (
	"context"
	"fmt"

	"github.com/dbscope/dbscope/internal/database/clickhouse"
	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/internal/database/duckdb"
	"github.com/dbscope/dbscope/internal/database/mysql"
	"github.com/dbscope/dbscope/internal/database/postgres"
	"github.com/dbscope/dbscope/internal/database/sqlite"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// NewDriver validates the configuration and creates the matching
// disconnected driver. No I/O happens here; dial with Connect.
func NewDriver(cfg common.ConnectionConfig) (dbclient.Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case dbcapabilities.PostgreSQL:
		return postgres.New(cfg), nil
	case dbcapabilities.MySQL:
		return mysql.New(cfg), nil
	case dbcapabilities.SQLite:
		return sqlite.New(cfg), nil
	case dbcapabilities.ClickHouse:
		return clickhouse.New(cfg), nil
	case dbcapabilities.DuckDB:
		return duckdb.New(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedDatabase, cfg.Type)
	}
}

// IsSupported reports whether a driver exists for the given type.
func IsSupported(t dbcapabilities.DatabaseType) bool {
	_, ok := dbcapabilities.Get(t)
	return ok
}

// SupportedTypes lists every engine a driver exists for, in stable
// presentation order.
func SupportedTypes() []dbcapabilities.DatabaseType {
	return dbcapabilities.AllTypes()
}

// TestConnection validates the configuration, dials the target, and
// disconnects again without keeping any state.
func TestConnection(ctx context.Context, cfg common.ConnectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.Type {
	case dbcapabilities.PostgreSQL:
		return postgres.TestConnection(ctx, cfg)
	case dbcapabilities.MySQL:
		return mysql.TestConnection(ctx, cfg)
	case dbcapabilities.SQLite:
		return sqlite.TestConnection(ctx, cfg)
	case dbcapabilities.ClickHouse:
		return clickhouse.TestConnection(ctx, cfg)
	case dbcapabilities.DuckDB:
		return duckdb.TestConnection(ctx, cfg)
	default:
		return fmt.Errorf("%w: %s", common.ErrUnsupportedDatabase, cfg.Type)
	}
}

// Package duckdb implements the DuckDB driver on database/sql with the
// go-duckdb connector.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// DuckDB is the DuckDB driver. It opens a database file or an in-memory
// database depending on the configured parameters.
type DuckDB struct {
	cfg common.ConnectionConfig
	db  *sql.DB
}

// New creates a disconnected DuckDB driver for the given config.
func New(cfg common.ConnectionConfig) *DuckDB {
	return &DuckDB{cfg: cfg}
}

func (d *DuckDB) DatabaseType() dbcapabilities.DatabaseType {
	return dbcapabilities.DuckDB
}

func (d *DuckDB) Config() common.ConnectionConfig {
	return d.cfg
}

func (d *DuckDB) dsn() string {
	if d.cfg.Params.Kind == common.ParamsInMemory {
		return ""
	}
	f := d.cfg.Params.File
	q := url.Values{}
	if f.ReadOnly {
		q.Set("access_mode", "read_only")
	}
	for k, v := range f.Options {
		q.Set(k, v)
	}
	if len(q) == 0 {
		return f.Path
	}
	return f.Path + "?" + q.Encode()
}

// Connect opens the database and verifies it with a ping.
func (d *DuckDB) Connect(ctx context.Context) error {
	if d.db != nil {
		return fmt.Errorf("duckdb: already connected")
	}
	db, err := sql.Open("duckdb", d.dsn())
	if err != nil {
		return &common.ConfigurationError{
			DatabaseType: dbcapabilities.DuckDB,
			Reason:       err.Error(),
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &common.ConnectionError{
			DatabaseType: dbcapabilities.DuckDB,
			Target:       d.cfg.DisplayTarget(),
			Cause:        err,
		}
	}
	d.db = db
	return nil
}

func (d *DuckDB) Disconnect(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func (d *DuckDB) IsConnected(ctx context.Context) bool {
	if d.db == nil {
		return false
	}
	return d.db.PingContext(ctx) == nil
}

func (d *DuckDB) ExecuteQuery(ctx context.Context, query string) (common.QueryExecutionResult, error) {
	return common.ExecuteSQL(ctx, d.db, dbcapabilities.DuckDB, query, decodeValue)
}

func (d *DuckDB) StreamQuery(ctx context.Context, query string) (dbclient.RowStream, error) {
	if d.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := d.db.QueryContext(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, &common.QueryError{
			DatabaseType: dbcapabilities.DuckDB,
			Query:        query,
			Cause:        err,
		}
	}
	return common.NewSQLRowStream(rows, decodeValue)
}

// TestConnection opens the configured database and closes it again.
func TestConnection(ctx context.Context, cfg common.ConnectionConfig) error {
	drv := New(cfg)
	if err := drv.Connect(ctx); err != nil {
		return err
	}
	return drv.Disconnect(ctx)
}

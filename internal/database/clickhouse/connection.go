// Package clickhouse implements the ClickHouse driver over the HTTP
// interface of clickhouse-go, bridged through database/sql.
package clickhouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// ClickHouse is the ClickHouse driver. Mutation statements report zero
// affected rows: the HTTP protocol does not carry a count.
type ClickHouse struct {
	cfg common.ConnectionConfig
	db  *sql.DB
}

// New creates a disconnected ClickHouse driver for the given config.
func New(cfg common.ConnectionConfig) *ClickHouse {
	return &ClickHouse{cfg: cfg}
}

func (c *ClickHouse) DatabaseType() dbcapabilities.DatabaseType {
	return dbcapabilities.ClickHouse
}

func (c *ClickHouse) Config() common.ConnectionConfig {
	return c.cfg
}

func (c *ClickHouse) options() *clickhouse.Options {
	s := c.cfg.Params.Server
	opts := &clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", s.Host, s.Port)},
		Protocol: clickhouse.HTTP,
		Auth: clickhouse.Auth{
			Database: s.Database,
			Username: s.Username,
			Password: s.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	}
	switch s.SSLMode {
	case common.SSLRequire:
		opts.TLS = &tls.Config{InsecureSkipVerify: true}
	case common.SSLVerifyCA, common.SSLVerifyFull:
		opts.TLS = &tls.Config{}
	}
	return opts
}

// Connect opens the handle and verifies it with a probe query. The HTTP
// transport has no dedicated ping, so the probe is SELECT 1.
func (c *ClickHouse) Connect(ctx context.Context) error {
	if c.db != nil {
		return fmt.Errorf("clickhouse: already connected")
	}
	db := clickhouse.OpenDB(c.options())
	if err := probe(ctx, db); err != nil {
		db.Close()
		return &common.ConnectionError{
			DatabaseType: dbcapabilities.ClickHouse,
			Target:       c.cfg.DisplayTarget(),
			Cause:        err,
		}
	}
	c.db = db
	return nil
}

func probe(ctx context.Context, db *sql.DB) error {
	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (c *ClickHouse) Disconnect(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *ClickHouse) IsConnected(ctx context.Context) bool {
	if c.db == nil {
		return false
	}
	return probe(ctx, c.db) == nil
}

func (c *ClickHouse) ExecuteQuery(ctx context.Context, query string) (common.QueryExecutionResult, error) {
	return common.ExecuteSQL(ctx, c.db, dbcapabilities.ClickHouse, query, decodeValue)
}

func (c *ClickHouse) StreamQuery(ctx context.Context, query string) (dbclient.RowStream, error) {
	if c.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := c.db.QueryContext(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, &common.QueryError{
			DatabaseType: dbcapabilities.ClickHouse,
			Query:        query,
			Cause:        err,
		}
	}
	return common.NewSQLRowStream(rows, decodeValue)
}

// TestConnection dials the configured server and tears down again.
func TestConnection(ctx context.Context, cfg common.ConnectionConfig) error {
	drv := New(cfg)
	if err := drv.Connect(ctx); err != nil {
		return err
	}
	return drv.Disconnect(ctx)
}

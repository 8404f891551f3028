// Package mysql implements the MySQL driver on database/sql with the
// go-sql-driver connector.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// MySQL is the MySQL driver.
type MySQL struct {
	cfg common.ConnectionConfig
	db  *sql.DB
}

// New creates a disconnected MySQL driver for the given config.
func New(cfg common.ConnectionConfig) *MySQL {
	return &MySQL{cfg: cfg}
}

func (m *MySQL) DatabaseType() dbcapabilities.DatabaseType {
	return dbcapabilities.MySQL
}

func (m *MySQL) Config() common.ConnectionConfig {
	return m.cfg
}

// dsn builds the connector config. ParseTime is always on so temporal
// columns arrive as time.Time instead of raw bytes, and timestamps are
// normalized to UTC.
func (m *MySQL) dsn() string {
	s := m.cfg.Params.Server
	cfg := mysql.NewConfig()
	cfg.User = s.Username
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", s.Host, s.Port)
	cfg.DBName = s.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.TLSConfig = tlsConfigName(s.SSLMode)
	if len(s.Options) > 0 {
		cfg.Params = make(map[string]string, len(s.Options))
		for k, v := range s.Options {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

func tlsConfigName(mode common.SSLMode) string {
	switch mode {
	case common.SSLDisable:
		return "false"
	case common.SSLRequire:
		return "skip-verify"
	case common.SSLVerifyCA, common.SSLVerifyFull:
		return "true"
	default:
		return "preferred"
	}
}

// Connect opens the handle and verifies it with a ping.
func (m *MySQL) Connect(ctx context.Context) error {
	if m.db != nil {
		return fmt.Errorf("mysql: already connected")
	}
	db, err := sql.Open("mysql", m.dsn())
	if err != nil {
		return &common.ConfigurationError{
			DatabaseType: dbcapabilities.MySQL,
			Reason:       err.Error(),
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &common.ConnectionError{
			DatabaseType: dbcapabilities.MySQL,
			Target:       m.cfg.DisplayTarget(),
			Cause:        err,
		}
	}
	m.db = db
	return nil
}

func (m *MySQL) Disconnect(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func (m *MySQL) IsConnected(ctx context.Context) bool {
	if m.db == nil {
		return false
	}
	return m.db.PingContext(ctx) == nil
}

func (m *MySQL) ExecuteQuery(ctx context.Context, query string) (common.QueryExecutionResult, error) {
	return common.ExecuteSQL(ctx, m.db, dbcapabilities.MySQL, query, decodeValue)
}

func (m *MySQL) StreamQuery(ctx context.Context, query string) (dbclient.RowStream, error) {
	if m.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := m.db.QueryContext(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, &common.QueryError{
			DatabaseType: dbcapabilities.MySQL,
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

// Package sqlite implements the SQLite driver on database/sql with the
// pure-Go modernc connector.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

// SQLite is the SQLite driver. It opens a file or an in-memory database
// depending on the configured parameters.
type SQLite struct {
	cfg common.ConnectionConfig
	db  *sql.DB
}

// New creates a disconnected SQLite driver for the given config.
func New(cfg common.ConnectionConfig) *SQLite {
	return &SQLite{cfg: cfg}
}

func (s *SQLite) DatabaseType() dbcapabilities.DatabaseType {
	return dbcapabilities.SQLite
}

func (s *SQLite) Config() common.ConnectionConfig {
	return s.cfg
}

func (s *SQLite) dsn() string {
	if s.cfg.Params.Kind == common.ParamsInMemory {
		return ":memory:"
	}
	f := s.cfg.Params.File
	q := url.Values{}
	if f.ReadOnly {
		q.Set("mode", "ro")
	}
	for k, v := range f.Options {
		q.Set(k, v)
	}
	if len(q) == 0 {
		return f.Path
	}
	return "file:" + f.Path + "?" + q.Encode()
}

// Connect opens the database and verifies it with a probe query.
func (s *SQLite) Connect(ctx context.Context) error {
	if s.db != nil {
		return fmt.Errorf("sqlite: already connected")
	}
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return &common.ConfigurationError{
			DatabaseType: dbcapabilities.SQLite,
			Reason:       err.Error(),
		}
	}
	// An in-memory database exists per connection; pooling above one
	// connection would hand back empty databases.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &common.ConnectionError{
			DatabaseType: dbcapabilities.SQLite,
			Target:       s.cfg.DisplayTarget(),
			Cause:        err,
		}
	}
	s.db = db
	return nil
}

func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite) IsConnected(ctx context.Context) bool {
	if s.db == nil {
		return false
	}
	return s.db.PingContext(ctx) == nil
}

func (s *SQLite) ExecuteQuery(ctx context.Context, query string) (common.QueryExecutionResult, error) {
	return common.ExecuteSQL(ctx, s.db, dbcapabilities.SQLite, query, decodeValue)
}

func (s *SQLite) StreamQuery(ctx context.Context, query string) (dbclient.RowStream, error) {
	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := s.db.QueryContext(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, &common.QueryError{
			DatabaseType: dbcapabilities.SQLite,
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

// Package postgres implements the PostgreSQL driver on top of pgx
// connection pools.
package postgres

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// Postgres is the PostgreSQL driver. It is not safe for concurrent use
// with Connect and Disconnect; the connection manager serializes those.
type Postgres struct {
	cfg  common.ConnectionConfig
	pool *pgxpool.Pool
}

// New creates a disconnected PostgreSQL driver for the given config.
func New(cfg common.ConnectionConfig) *Postgres {
	return &Postgres{cfg: cfg}
}

func (p *Postgres) DatabaseType() dbcapabilities.DatabaseType {
	return dbcapabilities.PostgreSQL
}

func (p *Postgres) Config() common.ConnectionConfig {
	return p.cfg
}

func (p *Postgres) connString() string {
	s := p.cfg.Params.Server
	sslMode := s.SSLMode
	if sslMode == "" {
		sslMode = common.SSLPrefer
	}
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d user=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.Username, s.Database, sslMode)
	if s.Password != "" {
		fmt.Fprintf(&b, " password=%s", s.Password)
	}
	for k, v := range s.Options {
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

// Connect opens a connection pool and verifies it with a ping.
func (p *Postgres) Connect(ctx context.Context) error {
	if p.pool != nil {
		return fmt.Errorf("postgres: already connected")
	}
	poolCfg, err := pgxpool.ParseConfig(p.connString())
	if err != nil {
		return &common.ConfigurationError{
			DatabaseType: dbcapabilities.PostgreSQL,
			Reason:       err.Error(),
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return &common.ConnectionError{
			DatabaseType: dbcapabilities.PostgreSQL,
			Target:       p.cfg.DisplayTarget(),
			Cause:        err,
		}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &common.ConnectionError{
			DatabaseType: dbcapabilities.PostgreSQL,
			Target:       p.cfg.DisplayTarget(),
			Cause:        err,
		}
	}
	p.pool = pool
	return nil
}

func (p *Postgres) Disconnect(ctx context.Context) error {
	if p.pool == nil {
		return nil
	}
	p.pool.Close()
	p.pool = nil
	return nil
}

func (p *Postgres) IsConnected(ctx context.Context) bool {
	if p.pool == nil {
		return false
	}
	return p.pool.Ping(ctx) == nil
}

// ExecuteQuery runs one statement. Read statements get the default row
// cap; everything else goes through Exec and reports affected rows.
func (p *Postgres) ExecuteQuery(ctx context.Context, query string) (common.QueryExecutionResult, error) {
	if p.pool == nil {
		return common.QueryExecutionResult{}, common.ErrNotConnected
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return common.NewErrorResult("Empty query", 0), nil
	}

	start := time.Now()
	keywords := dbcapabilities.MustGet(dbcapabilities.PostgreSQL).ReadKeywords
	if common.IsReadStatement(trimmed, keywords) {
		bounded := common.ApplyRowLimit(trimmed, common.DefaultRowLimit)
		rows, err := p.pool.Query(ctx, bounded)
		if err != nil {
			return common.NewErrorResult(err.Error(), common.ElapsedSince(start)), nil
		}
		cols, data, err := collectRows(rows)
		if err != nil {
			return common.NewErrorResult(err.Error(), common.ElapsedSince(start)), nil
		}
		return common.NewSelectResult(cols, data, common.ElapsedSince(start), query), nil
	}

	tag, err := p.pool.Exec(ctx, trimmed)
	if err != nil {
		return common.NewErrorResult(err.Error(), common.ElapsedSince(start)), nil
	}
	return common.NewModifiedResult(tag.RowsAffected(), common.ElapsedSince(start)), nil
}

// collectRows materializes a pgx result set into the unified model.
func collectRows(rows pgx.Rows) ([]dbvalue.ColumnInfo, []dbvalue.Row, error) {
	defer rows.Close()

	cols := columnInfos(rows.FieldDescriptions())
	var out []dbvalue.Row
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		out = append(out, decodeRow(cols, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}

func columnInfos(fields []pgconn.FieldDescription) []dbvalue.ColumnInfo {
	cols := make([]dbvalue.ColumnInfo, len(fields))
	for i, fd := range fields {
		cols[i] = dbvalue.NewColumnInfo(fd.Name, typeNameForOID(fd.DataTypeOID), i)
	}
	return cols
}

func decodeRow(cols []dbvalue.ColumnInfo, raw []any) dbvalue.Row {
	vals := make([]dbvalue.Value, len(raw))
	for i, cell := range raw {
		vals[i] = decodeValue(cols[i].TypeName, cell)
	}
	return dbvalue.RowFromValues(vals)
}

// StreamQuery runs a read statement and yields rows incrementally. The
// caller owns the returned stream and must close it.
func (p *Postgres) StreamQuery(ctx context.Context, query string) (dbclient.RowStream, error) {
	if p.pool == nil {
		return nil, common.ErrNotConnected
	}
	rows, err := p.pool.Query(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, &common.QueryError{
			DatabaseType: dbcapabilities.PostgreSQL,
			Query:        query,
			Cause:        err,
		}
	}
	return &rowStream{rows: rows, cols: columnInfos(rows.FieldDescriptions())}, nil
}

type rowStream struct {
	rows pgx.Rows
	cols []dbvalue.ColumnInfo
}

func (s *rowStream) Columns() []dbvalue.ColumnInfo { return s.cols }

func (s *rowStream) Next(ctx context.Context) (dbvalue.Row, error) {
	if err := ctx.Err(); err != nil {
		return dbvalue.Row{}, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return dbvalue.Row{}, err
		}
		return dbvalue.Row{}, io.EOF
	}
	raw, err := s.rows.Values()
	if err != nil {
		return dbvalue.Row{}, err
	}
	return decodeRow(s.cols, raw), nil
}

func (s *rowStream) Close() error {
	s.rows.Close()
	return nil
}

// TestConnection dials the configured server, probes it, and tears the
// connection down again.
func TestConnection(ctx context.Context, cfg common.ConnectionConfig) error {
	drv := New(cfg)
	if err := drv.Connect(ctx); err != nil {
		return err
	}
	return drv.Disconnect(ctx)
}

package database

import (
	"context"
	"errors"
	"sync"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/internal/database/dbclient"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/dbvalue"
	"github.com/dbscope/dbscope/pkg/keyring"
	"github.com/dbscope/dbscope/pkg/logger"
)

// Manager owns at most one active connection and serializes replacing
// it. The lock guards only the driver pointer; queries run outside it,
// so a long statement never blocks connecting elsewhere, and a query in
// flight during a disconnect completes against the old handle.
type Manager struct {
	mu     sync.RWMutex
	driver dbclient.Driver

	secrets keyring.Store
	log     *logger.Logger
}

// NewManager creates a manager. The secret store may be nil, in which
// case passwords must arrive inside the configuration.
func NewManager(log *logger.Logger, secrets keyring.Store) *Manager {
	return &Manager{secrets: secrets, log: log}
}

// current returns the active driver without holding the lock during use.
func (m *Manager) current() (dbclient.Driver, bool) {
	m.mu.RLock()
	drv := m.driver
	m.mu.RUnlock()
	return drv, drv != nil
}

// injectSecret fills in a server password from the secret store when
// the configuration carries none. A missing secret is not an error;
// some servers accept empty passwords.
func (m *Manager) injectSecret(cfg *common.ConnectionConfig) {
	if m.secrets == nil || cfg.Params.Kind != common.ParamsServer {
		return
	}
	if cfg.Params.Server.Password != "" {
		return
	}
	secret, err := m.secrets.Get(cfg.ID.String())
	if err != nil {
		if !errors.Is(err, keyring.ErrSecretNotFound) {
			m.log.Warnf("Secret lookup for connection %s failed: %v", cfg.Name, err)
		}
		return
	}
	cfg.Params.Server.Password = secret
}

// Connect establishes the configured connection, replacing any current
// one. The new connection is dialed before the old one is dropped, so a
// failed connect leaves the previous connection in place.
func (m *Manager) Connect(ctx context.Context, cfg common.ConnectionConfig) error {
	m.injectSecret(&cfg)

	drv, err := NewDriver(cfg)
	if err != nil {
		return err
	}
	if err := drv.Connect(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	old := m.driver
	m.driver = drv
	m.mu.Unlock()

	if old != nil {
		if err := old.Disconnect(ctx); err != nil {
			m.log.Warnf("Closing previous connection: %v", err)
		}
	}
	m.log.Infof("Connected to %s (%s)", cfg.Name, cfg.Type.DisplayName())
	return nil
}

// Disconnect drops the active connection. Disconnecting with none is a
// no-op.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	old := m.driver
	m.driver = nil
	m.mu.Unlock()

	if old == nil {
		return nil
	}
	err := old.Disconnect(ctx)
	m.log.Infof("Disconnected from %s", old.Config().Name)
	return err
}

// IsConnected probes the active connection, if any.
func (m *Manager) IsConnected(ctx context.Context) bool {
	drv, ok := m.current()
	return ok && drv.IsConnected(ctx)
}

// DatabaseType returns the engine of the active connection.
func (m *Manager) DatabaseType() (dbcapabilities.DatabaseType, bool) {
	drv, ok := m.current()
	if !ok {
		return "", false
	}
	return drv.DatabaseType(), true
}

// ActiveConfig returns the configuration of the active connection.
func (m *Manager) ActiveConfig() (common.ConnectionConfig, bool) {
	drv, ok := m.current()
	if !ok {
		return common.ConnectionConfig{}, false
	}
	return drv.Config(), true
}

// ExecuteQuery runs one statement on the active connection. Every
// failure mode becomes the error variant of the result, so callers
// render outcomes uniformly.
func (m *Manager) ExecuteQuery(ctx context.Context, query string) common.QueryExecutionResult {
	drv, ok := m.current()
	if !ok {
		return common.NewErrorResult("Database not connected", 0)
	}
	res, err := drv.ExecuteQuery(ctx, query)
	if err != nil {
		return common.NewErrorResult(err.Error(), 0)
	}
	if res.IsError() {
		m.log.Debugf("Statement failed in %d ms: %s", res.Err.ElapsedMS, res.Err.Message)
	}
	return res
}

// StreamQuery streams rows from the active connection.
func (m *Manager) StreamQuery(ctx context.Context, query string) (dbclient.RowStream, error) {
	drv, ok := m.current()
	if !ok {
		return nil, common.ErrNotConnected
	}
	return drv.StreamQuery(ctx, query)
}

// GetDatabases lists databases on the active connection.
func (m *Manager) GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	drv, ok := m.current()
	if !ok {
		return nil, common.ErrNotConnected
	}
	return drv.GetDatabases(ctx)
}

// GetTables lists tables on the active connection.
func (m *Manager) GetTables(ctx context.Context) ([]common.TableInfo, error) {
	drv, ok := m.current()
	if !ok {
		return nil, common.ErrNotConnected
	}
	return drv.GetTables(ctx)
}

// GetSchema aggregates schema introspection on the active connection.
func (m *Manager) GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error) {
	drv, ok := m.current()
	if !ok {
		return common.DatabaseSchema{}, common.ErrNotConnected
	}
	return drv.GetSchema(ctx, tables)
}

// GetTableColumns renders one table's column metadata as a result set,
// so column browsers reuse the same table rendering as query results.
func (m *Manager) GetTableColumns(ctx context.Context, table string) common.QueryExecutionResult {
	drv, ok := m.current()
	if !ok {
		return common.NewErrorResult("Database not connected", 0)
	}
	cols, err := drv.GetColumns(ctx, table)
	if err != nil {
		return common.NewErrorResult(err.Error(), 0)
	}

	header := []dbvalue.ColumnInfo{
		dbvalue.NewColumnInfo("column", "text", 0),
		dbvalue.NewColumnInfo("type", "text", 1),
		dbvalue.NewColumnInfo("nullable", "bool", 2),
		dbvalue.NewColumnInfo("default", "text", 3),
	}
	rows := make([]dbvalue.Row, 0, len(cols))
	for _, c := range cols {
		def := dbvalue.Null()
		if c.Default != "" {
			def = dbvalue.Text(c.Default)
		}
		rows = append(rows, dbvalue.RowFromValues([]dbvalue.Value{
			dbvalue.Text(c.Name),
			dbvalue.Text(c.DataType),
			dbvalue.Bool(c.Nullable),
			def,
		}))
	}
	return common.NewSelectResult(header, rows, 0, "")
}

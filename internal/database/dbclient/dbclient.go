// Package dbclient defines the contracts every database driver
// implements. A driver owns exactly one native connection handle and
// exposes query execution and schema introspection over it.
package dbclient

import (
	"context"

	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// Connection is the query-execution surface of a driver.
type Connection interface {
	// DatabaseType identifies the engine this driver speaks to.
	DatabaseType() dbcapabilities.DatabaseType

	// Config returns the configuration the driver was created with.
	Config() common.ConnectionConfig

	// Connect establishes the native connection and verifies it with a
	// liveness probe. Calling Connect on a connected driver is an error.
	Connect(ctx context.Context) error

	// Disconnect closes the native connection. Disconnecting an already
	// disconnected driver is a no-op.
	Disconnect(ctx context.Context) error

	// IsConnected probes connection liveness.
	IsConnected(ctx context.Context) bool

	// ExecuteQuery runs one statement and returns its outcome. Read
	// statements are capped at the default row limit unless they carry
	// their own LIMIT. Statement failures come back as the error variant
	// of the result; the error return is reserved for driver misuse such
	// as executing on a disconnected driver.
	ExecuteQuery(ctx context.Context, query string) (common.QueryExecutionResult, error)

	// StreamQuery runs a read statement and returns its rows
	// incrementally without materializing the full result set.
	StreamQuery(ctx context.Context, query string) (RowStream, error)
}

// SchemaIntrospection is the catalog surface of a driver. All listing
// methods return results in the catalog's natural order.
type SchemaIntrospection interface {
	// GetDatabases lists the databases or schemas visible to the
	// connection.
	GetDatabases(ctx context.Context) ([]common.DatabaseInfo, error)

	// GetTables lists tables and views of the connected database.
	GetTables(ctx context.Context) ([]common.TableInfo, error)

	// GetColumns lists the columns of one table.
	GetColumns(ctx context.Context, table string) ([]common.ColumnDetail, error)

	// GetPrimaryKeys lists the primary-key column names of one table.
	GetPrimaryKeys(ctx context.Context, table string) ([]string, error)

	// GetForeignKeys lists the foreign keys of one table. Engines
	// without foreign-key support return an empty list.
	GetForeignKeys(ctx context.Context, table string) ([]common.ForeignKeyInfo, error)

	// GetIndexes lists the indexes of one table.
	GetIndexes(ctx context.Context, table string) ([]common.IndexInfo, error)

	// GetConstraints lists the constraints of one table.
	GetConstraints(ctx context.Context, table string) ([]common.ConstraintInfo, error)

	// GetSchema aggregates the full schema of the given tables, or of
	// every table when the list is empty.
	GetSchema(ctx context.Context, tables []string) (common.DatabaseSchema, error)
}

// Driver is the full per-engine contract the factory hands out.
type Driver interface {
	Connection
	SchemaIntrospection
}

// RowStream yields decoded rows one at a time. Next returns io.EOF when
// the result set is exhausted. Close releases the underlying cursor and
// is safe to call more than once.
type RowStream interface {
	// Columns returns the result-set metadata, available immediately.
	Columns() []dbvalue.ColumnInfo
	// Next returns the next row, or io.EOF after the last one.
	Next(ctx context.Context) (dbvalue.Row, error)
	// Close releases the cursor.
	Close() error
}

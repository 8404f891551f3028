package common

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscope/dbscope/pkg/dbcapabilities"
)

func TestValidateMatrix(t *testing.T) {
	server := NewServerParams("localhost", 5432, "app", "secret", "appdb")
	file := NewFileParams("/tmp/data.db", false)
	mem := NewInMemoryParams()

	tests := []struct {
		name    string
		dbType  dbcapabilities.DatabaseType
		params  ConnectionParams
		wantErr bool
	}{
		{"postgres with server params", dbcapabilities.PostgreSQL, server, false},
		{"mysql with server params", dbcapabilities.MySQL, server, false},
		{"clickhouse with server params", dbcapabilities.ClickHouse, server, false},
		{"sqlite with file params", dbcapabilities.SQLite, file, false},
		{"sqlite with in-memory params", dbcapabilities.SQLite, mem, false},
		{"duckdb with file params", dbcapabilities.DuckDB, file, false},
		{"duckdb with in-memory params", dbcapabilities.DuckDB, mem, false},
		{"postgres with file params", dbcapabilities.PostgreSQL, file, true},
		{"postgres with in-memory params", dbcapabilities.PostgreSQL, mem, true},
		{"mysql with file params", dbcapabilities.MySQL, file, true},
		{"sqlite with server params", dbcapabilities.SQLite, server, true},
		{"duckdb with server params", dbcapabilities.DuckDB, server, true},
		{"unknown type", dbcapabilities.DatabaseType("oracle"), server, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConnectionConfig("test", tt.dbType, tt.params)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRejectsInconsistentPayload(t *testing.T) {
	cfg := NewConnectionConfig("bad", dbcapabilities.PostgreSQL, ConnectionParams{
		Kind: ParamsServer,
		File: &FileParams{Path: "/tmp/x.db"},
	})
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestPasswordNeverSerialized(t *testing.T) {
	cfg := NewConnectionConfig("prod", dbcapabilities.PostgreSQL,
		NewServerParams("db.internal", 5432, "app", "hunter2", "appdb"))

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.Contains(t, string(raw), "db.internal")
}

func TestDisplayTarget(t *testing.T) {
	server := NewConnectionConfig("s", dbcapabilities.PostgreSQL,
		NewServerParams("db.internal", 5432, "app", "", "appdb"))
	assert.Equal(t, "app@db.internal:5432/appdb", server.DisplayTarget())

	file := NewConnectionConfig("f", dbcapabilities.SQLite, NewFileParams("/var/lib/app.db", true))
	assert.Equal(t, "/var/lib/app.db", file.DisplayTarget())

	mem := NewConnectionConfig("m", dbcapabilities.DuckDB, NewInMemoryParams())
	assert.Equal(t, ":memory:", mem.DisplayTarget())
}

func TestParseSSLMode(t *testing.T) {
	assert.Equal(t, SSLRequire, ParseSSLMode("require"))
	assert.Equal(t, SSLVerifyFull, ParseSSLMode("verify-full"))
	assert.Equal(t, SSLPrefer, ParseSSLMode(""))
	assert.Equal(t, SSLPrefer, ParseSSLMode("bogus"))
}

func TestNewConnectionConfigAssignsIDs(t *testing.T) {
	a := NewConnectionConfig("a", dbcapabilities.SQLite, NewInMemoryParams())
	b := NewConnectionConfig("b", dbcapabilities.SQLite, NewInMemoryParams())
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, strings.HasPrefix(a.ID.String(), "00000000"))
}

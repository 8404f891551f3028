// Command dbscope is a one-shot client for the supported engines: it
// connects, runs a statement or an introspection request, prints the
// outcome, and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dbscope/dbscope/internal/database"
	"github.com/dbscope/dbscope/internal/database/common"
	"github.com/dbscope/dbscope/pkg/dbcapabilities"
	"github.com/dbscope/dbscope/pkg/keyring"
	"github.com/dbscope/dbscope/pkg/logger"
)

var version = "dev"

func main() {
	var (
		engine   = flag.String("engine", "", "database engine: postgresql, mysql, sqlite, clickhouse or duckdb (aliases accepted)")
		name     = flag.String("name", "default", "connection name, used as the secret-store key context")
		host     = flag.String("host", "localhost", "server host")
		port     = flag.Int("port", 0, "server port, engine default when 0")
		user     = flag.String("user", "", "server username")
		password = flag.String("password", "", "server password; omit to use the system keyring")
		dbName   = flag.String("db", "", "database name")
		sslMode  = flag.String("sslmode", "", "ssl mode: disable, prefer, require, verify-ca, verify-full")
		file     = flag.String("file", "", "database file path for embedded engines")
		memory   = flag.Bool("memory", false, "open an in-memory database")
		readOnly = flag.Bool("readonly", false, "open the database file read-only")
		query    = flag.String("query", "", "statement to execute")
		tables   = flag.Bool("tables", false, "list tables")
		columns  = flag.String("columns", "", "list the columns of the named table")
		schema   = flag.Bool("schema", false, "dump the full schema as JSON")
		testOnly = flag.Bool("test", false, "test the connection and exit")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall timeout")
		quiet    = flag.Bool("quiet", false, "suppress log output")
	)
	flag.Parse()

	log := logger.New("dbscope", version)
	if *quiet {
		log.DisableConsoleOutput()
	}

	dbType, ok := dbcapabilities.Parse(*engine)
	if !ok {
		log.Errorf("Unknown engine %q; supported: %s", *engine, supportedList())
		os.Exit(2)
	}

	cfg, err := buildConfig(*name, dbType, *host, *port, *user, *password, *dbName, *sslMode, *file, *memory, *readOnly)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *testOnly {
		if err := database.TestConnection(ctx, cfg); err != nil {
			log.Errorf("Connection test failed: %v", err)
			os.Exit(1)
		}
		log.Infof("Connection to %s OK", cfg.DisplayTarget())
		return
	}

	mgr := database.NewManager(log, keyring.NewSystemStore("dbscope"))
	if err := mgr.Connect(ctx, cfg); err != nil {
		log.Errorf("Connect: %v", err)
		os.Exit(1)
	}
	defer mgr.Disconnect(context.Background())

	switch {
	case *query != "":
		printResult(mgr.ExecuteQuery(ctx, *query))
	case *tables:
		listing, err := mgr.GetTables(ctx)
		if err != nil {
			log.Errorf("Listing tables: %v", err)
			os.Exit(1)
		}
		for _, t := range listing {
			if t.RowCount >= 0 {
				fmt.Printf("%s.%s\t%s\t~%d rows\n", t.Schema, t.Name, t.Type, t.RowCount)
			} else {
				fmt.Printf("%s.%s\t%s\n", t.Schema, t.Name, t.Type)
			}
		}
	case *columns != "":
		printResult(mgr.GetTableColumns(ctx, *columns))
	case *schema:
		snap, err := mgr.GetSchema(ctx, flag.Args())
		if err != nil {
			log.Errorf("Reading schema: %v", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Errorf("Encoding schema: %v", err)
			os.Exit(1)
		}
	default:
		log.Error("Nothing to do: pass -query, -tables, -columns, -schema or -test")
		os.Exit(2)
	}
}

func supportedList() string {
	types := database.SupportedTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func buildConfig(name string, dbType dbcapabilities.DatabaseType, host string, port int, user, password, dbName, sslMode, file string, memory, readOnly bool) (common.ConnectionConfig, error) {
	var params common.ConnectionParams
	switch {
	case dbType.IsServerBased():
		if port == 0 {
			port = dbType.DefaultPort()
		}
		params = common.NewServerParams(host, port, user, password, dbName)
		if sslMode != "" {
			params.Server.SSLMode = common.ParseSSLMode(sslMode)
		}
	case memory:
		params = common.NewInMemoryParams()
	case file != "":
		params = common.NewFileParams(file, readOnly)
	default:
		return common.ConnectionConfig{}, fmt.Errorf("%s needs -file or -memory", dbType.DisplayName())
	}
	return common.NewConnectionConfig(name, dbType, params), nil
}

// printResult renders a query outcome the way an interactive client
// would: a header row, the data, and a summary line.
func printResult(res common.QueryExecutionResult) {
	switch {
	case res.Select != nil:
		names := make([]string, len(res.Select.Columns))
		for i, c := range res.Select.Columns {
			names[i] = c.Name
		}
		fmt.Println(strings.Join(names, "\t"))
		for _, row := range res.Select.Rows {
			cells := make([]string, len(row.Cells))
			for i, cell := range row.Cells {
				cells[i] = cell.Value.String()
			}
			fmt.Println(strings.Join(cells, "\t"))
		}
		fmt.Printf("(%d rows, %d ms)\n", res.Select.RowCount, res.Select.ElapsedMS)
	case res.Modified != nil:
		fmt.Printf("OK, %d rows affected (%d ms)\n", res.Modified.RowsAffected, res.Modified.ElapsedMS)
	case res.Err != nil:
		fmt.Fprintf(os.Stderr, "Error: %s (%d ms)\n", res.Err.Message, res.Err.ElapsedMS)
		os.Exit(1)
	}
}

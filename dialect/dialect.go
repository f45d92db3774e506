package dialect

import (
	"context"
	"strings"
)

// Dialect names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
	MSSQL    = "sqlserver"
	ANSI     = "ansi"
)

// Names returns every supported dialect name.
func Names() []string {
	return []string{ANSI, Postgres, MySQL, SQLite, MSSQL}
}

// Normalize maps driver names and common aliases to a dialect name.
// It returns the input unchanged when no dialect matches.
func Normalize(name string) string {
	switch n := strings.ToLower(name); {
	case n == "postgresql" || n == "pgx" || strings.HasPrefix(n, Postgres):
		return Postgres
	case n == "mariadb" || strings.HasPrefix(n, MySQL):
		return MySQL
	case n == "sqlite3" || strings.HasPrefix(n, SQLite):
		return SQLite
	case n == "mssql" || n == "sqlserver":
		return MSSQL
	case n == ANSI:
		return ANSI
	default:
		return name
	}
}

// Valid reports whether name is a supported dialect.
func Valid(name string) bool {
	switch name {
	case ANSI, Postgres, MySQL, SQLite, MSSQL:
		return true
	}
	return false
}

// BeginStatement returns the statement that opens a transaction.
func BeginStatement(name string) string {
	if name == MSSQL {
		return "BEGIN TRAN"
	}
	return "BEGIN"
}

// VersionQuery returns the query that reports the server version,
// or an empty string when the dialect has none.
func VersionQuery(name string) string {
	switch name {
	case Postgres:
		return "SELECT version()"
	case MySQL:
		return "SELECT @@GLOBAL.version version"
	case SQLite:
		return "SELECT sqlite_version() version"
	case MSSQL:
		return "SELECT @@VERSION AS version"
	}
	return ""
}

// HealthQuery is the liveness probe run against pooled connections.
const HealthQuery = "SELECT 1"

// Connector opens connections to one database.
type Connector interface {
	// Connect opens a new connection. The context bounds connection setup only.
	Connect(ctx context.Context) (Conn, error)
	// Dialect returns the dialect name of the database.
	Dialect() string
	// Close releases resources held by the connector.
	Close() error
}

// ExecQuerier runs statements with positional driver arguments.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args []any) (Result, error)
	Query(ctx context.Context, query string, args []any) (Rows, error)
}

// Conn is a single live connection. A Conn runs one statement at a time
// and is not safe for concurrent use.
type Conn interface {
	ExecQuerier
	// RawCmd runs a statement that takes no parameters and returns nothing.
	RawCmd(ctx context.Context, cmd string) error
	// IsHealthy reports whether the connection can be reused.
	IsHealthy() bool
	Close() error
}

// Result is the outcome of Exec.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Rows iterates over a query result.
type Rows interface {
	Close() error
	Columns() ([]string, error)
	// DatabaseTypes returns the database type name of each column, such as
	// "INT4" or "VARCHAR". Unknown types are reported as empty strings.
	DatabaseTypes() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

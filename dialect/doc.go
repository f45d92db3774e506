// Package dialect names the supported SQL dialects and defines the narrow
// driver capability the rest of sqlweave runs queries through.
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.ANSI     = "ansi"
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//	dialect.MSSQL    = "sqlserver"
//
// ANSI is a rendering target only. It has no driver and is useful for
// logging or for databases that accept standard SQL.
//
// # Driver Capability
//
// A Connector opens connections and a Conn runs statements:
//
//	type Connector interface {
//	    Connect(ctx context.Context) (Conn, error)
//	    Dialect() string
//	    Close() error
//	}
//
//	type Conn interface {
//	    Exec(ctx context.Context, query string, args []any) (Result, error)
//	    Query(ctx context.Context, query string, args []any) (Rows, error)
//	    RawCmd(ctx context.Context, cmd string) error
//	    IsHealthy() bool
//	    Close() error
//	}
//
// The dialect/sql package implements both on top of database/sql.
//
// # Statement Text
//
// BeginStatement and VersionQuery return the dialect-specific text used by
// transactions and version lookups:
//
//	dialect.BeginStatement(dialect.MSSQL) // "BEGIN TRAN"
//	dialect.VersionQuery(dialect.MySQL)   // "SELECT @@GLOBAL.version version"
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver implementation, value codec, stats
//   - dialect/sql/sqlerr: native error mapping
package dialect

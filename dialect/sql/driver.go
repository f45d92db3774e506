package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/syssam/sqlweave/config"
	"github.com/syssam/sqlweave/dialect"
	"github.com/syssam/sqlweave/dialect/sql/sqlerr"
)

// Connector is a dialect.Connector over a database/sql handle. Every
// connection it opens is a dedicated *sql.Conn, so session state set up
// on connect stays with the connection.
type Connector struct {
	db      *sql.DB
	dialect string

	schema         string
	attach         string
	cacheSize      int
	connectTimeout time.Duration
}

// Option configures a Connector.
type Option func(*Connector)

// WithSchema sets the schema selected on every new connection: the
// search_path on Postgres, the attached database name on SQLite.
func WithSchema(schema string) Option {
	return func(c *Connector) {
		c.schema = schema
	}
}

// WithAttach attaches the SQLite file under the configured schema name.
func WithAttach(file string) Option {
	return func(c *Connector) {
		c.attach = file
	}
}

// WithStatementCache enables a prepared statement cache of the given size
// on every connection. Zero disables it.
func WithStatementCache(size int) Option {
	return func(c *Connector) {
		c.cacheSize = size
	}
}

// WithConnectTimeout bounds connection setup.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.connectTimeout = d
	}
}

// Open validates cfg and returns a Connector for it. No connection is
// made until Connect is called.
func Open(cfg *config.Config) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.DriverName(), dsn)
	if err != nil {
		return nil, sqlerr.MapConnect(fmt.Errorf("dialect/sql: open: %w", err))
	}
	// Connections are pooled by the caller. A closed Conn must close the
	// physical connection instead of parking it in database/sql.
	db.SetMaxIdleConns(0)
	opts := []Option{
		WithSchema(cfg.Schema),
		WithStatementCache(cfg.StatementCacheSize),
		WithConnectTimeout(cfg.ConnectTimeout),
	}
	if cfg.Dialect == dialect.SQLite && cfg.Schema != "" && cfg.Schema != "main" {
		file := cfg.File
		if file == "" {
			file = cfg.Database
		}
		opts = append(opts, WithAttach(file))
	}
	return OpenDB(cfg.Dialect, db, opts...), nil
}

// OpenDB wraps the given database/sql.DB with a Connector.
func OpenDB(name string, db *sql.DB, opts ...Option) *Connector {
	c := &Connector{db: db, dialect: dialect.Normalize(name)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DB returns the underlying *sql.DB instance.
func (c *Connector) DB() *sql.DB { return c.db }

// Dialect implements the dialect.Connector method.
func (c *Connector) Dialect() string { return c.dialect }

// Close closes the underlying database handle.
func (c *Connector) Close() error { return c.db.Close() }

// Connect opens a connection and runs the session setup of the dialect.
func (c *Connector) Connect(ctx context.Context) (dialect.Conn, error) {
	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}
	sc, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: connect: %w", sqlerr.MapConnect(err))
	}
	conn := &Conn{conn: sc, dialect: c.dialect}
	if c.cacheSize > 0 {
		conn.stmts, err = lru.NewWithEvict(c.cacheSize, func(_ string, st *sql.Stmt) {
			_ = st.Close()
		})
		if err != nil {
			_ = sc.Close()
			return nil, fmt.Errorf("dialect/sql: statement cache: %w", err)
		}
	}
	for _, cmd := range c.setup() {
		if _, err := sc.ExecContext(ctx, cmd); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("dialect/sql: session setup: %w", sqlerr.MapConnect(err))
		}
	}
	return conn, nil
}

// setup returns the statements that prepare a new session.
func (c *Connector) setup() []string {
	var cmds []string
	switch c.dialect {
	case dialect.Postgres:
		if c.schema != "" {
			cmds = append(cmds, fmt.Sprintf("SET search_path = %s", quoteIdent(c.schema)))
		}
		cmds = append(cmds, "SET NAMES 'UTF8'")
	case dialect.SQLite:
		cmds = append(cmds, "PRAGMA foreign_keys = ON")
		if c.attach != "" && c.schema != "" && c.schema != "main" {
			cmds = append(cmds, fmt.Sprintf("ATTACH DATABASE '%s' AS %s", strings.ReplaceAll(c.attach, "'", "''"), quoteIdent(c.schema)))
		}
	}
	return cmds
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Conn is a dialect.Conn over one *sql.Conn. It is not safe for concurrent
// use.
type Conn struct {
	conn    *sql.Conn
	dialect string
	stmts   *lru.Cache[string, *sql.Stmt]
	broken  atomic.Bool
	closed  atomic.Bool
}

var _ dialect.Conn = (*Conn)(nil)

// Dialect returns the dialect name of the connection.
func (c *Conn) Dialect() string { return c.dialect }

// Exec implements the dialect.Exec method.
func (c *Conn) Exec(ctx context.Context, query string, args []any) (dialect.Result, error) {
	st, err := c.prepare(ctx, query)
	if err != nil {
		return nil, c.fail("exec", err)
	}
	var res sql.Result
	if st != nil {
		res, err = st.ExecContext(ctx, args...)
	} else {
		res, err = c.conn.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return nil, c.fail("exec", err)
	}
	return res, nil
}

// Query implements the dialect.Query method.
func (c *Conn) Query(ctx context.Context, query string, args []any) (dialect.Rows, error) {
	st, err := c.prepare(ctx, query)
	if err != nil {
		return nil, c.fail("query", err)
	}
	var rows *sql.Rows
	if st != nil {
		rows, err = st.QueryContext(ctx, args...)
	} else {
		rows, err = c.conn.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, c.fail("query", err)
	}
	return &Rows{rows}, nil
}

// RawCmd runs cmd without arguments and without the statement cache.
func (c *Conn) RawCmd(ctx context.Context, cmd string) error {
	if _, err := c.conn.ExecContext(ctx, cmd); err != nil {
		return c.fail("raw command", err)
	}
	return nil
}

// prepare returns the cached statement for query, preparing it on a miss.
// It returns nil when the cache is disabled.
func (c *Conn) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if c.stmts == nil {
		return nil, nil
	}
	if st, ok := c.stmts.Get(query); ok {
		return st, nil
	}
	st, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.stmts.Add(query, st)
	return st, nil
}

// CachedStatements returns the number of prepared statements held.
func (c *Conn) CachedStatements() int {
	if c.stmts == nil {
		return 0
	}
	return c.stmts.Len()
}

// fail marks the connection broken on transport failures and normalizes err.
func (c *Conn) fail(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		sqlerr.IsNetwork(err) {
		c.broken.Store(true)
	}
	return fmt.Errorf("dialect/sql: %s: %w", op, sqlerr.Map(err))
}

// IsHealthy reports whether the connection can be reused.
func (c *Conn) IsHealthy() bool {
	return !c.closed.Load() && !c.broken.Load()
}

// Close releases the cached statements and the connection. It is safe to
// call more than once.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.stmts != nil {
		c.stmts.Purge()
	}
	return c.conn.Close()
}

// Rows wraps the sql.Rows to report database type names.
type Rows struct{ *sql.Rows }

// DatabaseTypes returns the database type name of each column.
func (r *Rows) DatabaseTypes() ([]string, error) {
	cts, err := r.ColumnTypes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cts))
	for i, ct := range cts {
		names[i] = ct.DatabaseTypeName()
	}
	return names, nil
}

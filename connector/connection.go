package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/config"
	"github.com/syssam/sqlweave/dialect"
	dsql "github.com/syssam/sqlweave/dialect/sql"
	"github.com/syssam/sqlweave/dialect/sql/sqlerr"
	"github.com/syssam/sqlweave/visitor"
)

// Queryable is implemented by Connection and Transaction.
type Queryable interface {
	// Query compiles q and returns its rows.
	Query(ctx context.Context, q ast.Query) (*ResultSet, error)
	// Execute compiles q and returns the number of affected rows.
	Execute(ctx context.Context, q ast.Query) (uint64, error)
	// QueryRaw runs sql with positional parameters and returns its rows.
	QueryRaw(ctx context.Context, sql string, params []ast.Value) (*ResultSet, error)
	// ExecuteRaw runs sql with positional parameters and returns the number
	// of affected rows.
	ExecuteRaw(ctx context.Context, sql string, params []ast.Value) (uint64, error)
	// RawCmd runs a statement that takes no parameters, such as DDL or
	// session commands that cannot be prepared.
	RawCmd(ctx context.Context, cmd string) error
	// Version returns the server version string as reported by the
	// database. The bool is false when the dialect has no version query.
	Version(ctx context.Context) (string, bool, error)

	Select(ctx context.Context, q *ast.Select) (*ResultSet, error)
	// Insert runs q. Inserts with returning columns return those rows.
	// Otherwise the set is empty and carries the last insert id when the
	// driver reports one.
	Insert(ctx context.Context, q *ast.Insert) (*ResultSet, error)
	Update(ctx context.Context, q *ast.Update) (uint64, error)
	Delete(ctx context.Context, q *ast.Delete) (uint64, error)
}

// Option configures a Connection.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	logQueries    bool
	socketTimeout time.Duration
	pgBouncer     bool
}

// WithLogger sets the logger used for query logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithQueryLog logs every statement at Info level with its parameters and
// duration.
func WithQueryLog(enabled bool) Option {
	return func(o *options) {
		o.logQueries = enabled
	}
}

// WithSocketTimeout bounds every statement, including reading its rows.
func WithSocketTimeout(d time.Duration) Option {
	return func(o *options) {
		o.socketTimeout = d
	}
}

// WithPgBouncer marks a Postgres connection as going through PgBouncer in
// transaction mode. Prepared statements are deallocated at the start of
// every transaction.
func WithPgBouncer(enabled bool) Option {
	return func(o *options) {
		o.pgBouncer = enabled
	}
}

// ConfigOptions returns the options described by cfg.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithQueryLog(cfg.LogQueries),
		WithSocketTimeout(cfg.SocketTimeout),
		WithPgBouncer(cfg.PgBouncer),
	}
}

// Connection runs AST queries on one database connection. It is not safe
// for concurrent use.
type Connection struct {
	conn    dialect.Conn
	visitor visitor.Visitor
	opts    options
	tx      *Transaction
}

var _ Queryable = (*Connection)(nil)

// New wraps conn, compiling queries with the visitor of the named dialect.
func New(conn dialect.Conn, name string, opts ...Option) (*Connection, error) {
	v, err := visitor.New(name)
	if err != nil {
		return nil, err
	}
	c := &Connection{conn: conn, visitor: v}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.opts.logger == nil {
		c.opts.logger = slog.Default()
	}
	return c, nil
}

// Connect opens a connection from c and wraps it.
func Connect(ctx context.Context, c dialect.Connector, opts ...Option) (*Connection, error) {
	conn, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	cc, err := New(conn, c.Dialect(), opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return cc, nil
}

// Dialect returns the dialect name of the connection.
func (c *Connection) Dialect() string { return c.visitor.Dialect() }

// Visitor returns the visitor queries are compiled with.
func (c *Connection) Visitor() visitor.Visitor { return c.visitor }

// Query implements the Queryable interface.
func (c *Connection) Query(ctx context.Context, q ast.Query) (*ResultSet, error) {
	cq, err := c.visitor.Compile(q)
	if err != nil {
		return nil, err
	}
	return c.query(ctx, cq)
}

// Execute implements the Queryable interface.
func (c *Connection) Execute(ctx context.Context, q ast.Query) (uint64, error) {
	cq, err := c.visitor.Compile(q)
	if err != nil {
		return 0, err
	}
	res, err := c.exec(ctx, cq)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

// QueryRaw implements the Queryable interface.
func (c *Connection) QueryRaw(ctx context.Context, sql string, params []ast.Value) (*ResultSet, error) {
	return c.Query(ctx, ast.RawSQL(sql, params...))
}

// ExecuteRaw implements the Queryable interface.
func (c *Connection) ExecuteRaw(ctx context.Context, sql string, params []ast.Value) (uint64, error) {
	return c.Execute(ctx, ast.RawSQL(sql, params...))
}

// RawCmd implements the Queryable interface.
func (c *Connection) RawCmd(ctx context.Context, cmd string) error {
	ctx, cancel := c.timeout(ctx)
	defer cancel()
	start := time.Now()
	err := c.conn.RawCmd(ctx, cmd)
	c.logQuery(ctx, cmd, nil, start)
	return c.mapErr(ctx, err)
}

// Version implements the Queryable interface.
func (c *Connection) Version(ctx context.Context) (string, bool, error) {
	q := dialect.VersionQuery(c.Dialect())
	if q == "" {
		return "", false, nil
	}
	rs, err := c.QueryRaw(ctx, q, nil)
	if err != nil {
		return "", false, err
	}
	row, ok := rs.First()
	if !ok {
		return "", false, nil
	}
	v, err := row.At(0)
	if err != nil {
		return "", false, err
	}
	s, ok := v.AsString()
	return s, ok, nil
}

// Select implements the Queryable interface.
func (c *Connection) Select(ctx context.Context, q *ast.Select) (*ResultSet, error) {
	return c.Query(ctx, q)
}

// Insert implements the Queryable interface.
func (c *Connection) Insert(ctx context.Context, q *ast.Insert) (*ResultSet, error) {
	cq, err := c.visitor.Compile(q)
	if err != nil {
		return nil, err
	}
	if len(q.Returning) > 0 {
		return c.query(ctx, cq)
	}
	res, err := c.exec(ctx, cq)
	if err != nil {
		return nil, err
	}
	rs := NewResultSet(nil, nil)
	switch c.Dialect() {
	case dialect.MySQL, dialect.SQLite:
		if id, err := res.LastInsertId(); err == nil && id > 0 {
			rs.SetLastInsertID(uint64(id))
		}
	}
	return rs, nil
}

// Update implements the Queryable interface.
func (c *Connection) Update(ctx context.Context, q *ast.Update) (uint64, error) {
	return c.Execute(ctx, q)
}

// Delete implements the Queryable interface.
func (c *Connection) Delete(ctx context.Context, q *ast.Delete) (uint64, error) {
	return c.Execute(ctx, q)
}

// BeginStatement returns the statement that opens a transaction.
func (c *Connection) BeginStatement() string {
	return dialect.BeginStatement(c.Dialect())
}

// ServerResetQuery runs at the start of every transaction. Behind
// PgBouncer it deallocates the prepared statements of the server session.
func (c *Connection) ServerResetQuery(ctx context.Context) error {
	if c.opts.pgBouncer && c.Dialect() == dialect.Postgres {
		return c.RawCmd(ctx, "DEALLOCATE ALL")
	}
	return nil
}

// StartTransaction opens a transaction. The connection must not be used
// directly until the transaction is committed or rolled back.
func (c *Connection) StartTransaction(ctx context.Context) (*Transaction, error) {
	if c.tx != nil {
		return nil, sqlweave.NewError(sqlweave.MalformedQuery{Message: "a transaction is already open on this connection"})
	}
	if err := c.RawCmd(ctx, c.BeginStatement()); err != nil {
		return nil, err
	}
	tx := &Transaction{conn: c}
	c.tx = tx
	if err := c.ServerResetQuery(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return tx, nil
}

// InTransaction reports whether a transaction is open on the connection.
func (c *Connection) InTransaction() bool { return c.tx != nil }

// AbortTransaction rolls back the open transaction, if any.
func (c *Connection) AbortTransaction(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	return c.tx.Rollback(ctx)
}

// IsHealthy reports whether the connection can be reused.
func (c *Connection) IsHealthy() bool { return c.conn.IsHealthy() }

// Close closes the underlying connection.
func (c *Connection) Close() error { return c.conn.Close() }

func (c *Connection) query(ctx context.Context, cq *visitor.CompiledQuery) (*ResultSet, error) {
	args, err := dsql.Args(c.Dialect(), cq.Params)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.timeout(ctx)
	defer cancel()
	start := time.Now()
	rows, err := c.conn.Query(ctx, cq.SQL, args)
	if err != nil {
		c.logQuery(ctx, cq.SQL, cq.Params, start)
		return nil, c.mapErr(ctx, err)
	}
	cols, values, err := dsql.ReadAll(rows)
	c.logQuery(ctx, cq.SQL, cq.Params, start)
	if err != nil {
		return nil, c.mapErr(ctx, err)
	}
	return NewResultSet(cols, values), nil
}

func (c *Connection) exec(ctx context.Context, cq *visitor.CompiledQuery) (dialect.Result, error) {
	args, err := dsql.Args(c.Dialect(), cq.Params)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.timeout(ctx)
	defer cancel()
	start := time.Now()
	res, err := c.conn.Exec(ctx, cq.SQL, args)
	c.logQuery(ctx, cq.SQL, cq.Params, start)
	if err != nil {
		return nil, c.mapErr(ctx, err)
	}
	return res, nil
}

func affected(res dialect.Result) (uint64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, sqlerr.Map(err)
	}
	return uint64(n), nil
}

func (c *Connection) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.socketTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.socketTimeout)
	}
	return ctx, func() {}
}

// mapErr normalizes err. A statement cut off by the socket timeout is a
// Timeout whatever the driver reported.
func (c *Connection) mapErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if c.opts.socketTimeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return sqlweave.NewError(sqlweave.Timeout{
			Message: fmt.Sprintf("socket timeout of %s exceeded: %v", c.opts.socketTimeout, err),
		})
	}
	return sqlerr.Map(err)
}

func (c *Connection) logQuery(ctx context.Context, query string, params []ast.Value, start time.Time) {
	if !c.opts.logQueries {
		return
	}
	c.opts.logger.InfoContext(ctx, "query",
		"query", query,
		"params", params,
		"duration", time.Since(start),
	)
}

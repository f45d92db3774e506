package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/sqlweave/dialect"
)

// DefaultSlowThreshold is the slow statement threshold of a StatsConnector
// created without WithSlowThreshold.
const DefaultSlowThreshold = 100 * time.Millisecond

// stmtKind tells the counters apart.
type stmtKind uint8

const (
	kindQuery stmtKind = iota
	kindExec
	kindCommand
)

// QueryStats counts the statements run over a StatsConnector. All fields
// are safe for concurrent use.
type QueryStats struct {
	Connects atomic.Int64
	Queries  atomic.Int64
	Execs    atomic.Int64
	// Commands counts RawCmd calls, such as session setup and transaction
	// statements.
	Commands atomic.Int64
	Errors   atomic.Int64
	Slow     atomic.Int64
	Duration atomic.Int64 // nanoseconds
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		Connects: s.Connects.Load(),
		Queries:  s.Queries.Load(),
		Execs:    s.Execs.Load(),
		Commands: s.Commands.Load(),
		Errors:   s.Errors.Load(),
		Slow:     s.Slow.Load(),
		Duration: time.Duration(s.Duration.Load()),
	}
}

// Reset zeroes the counters.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{&s.Connects, &s.Queries, &s.Execs, &s.Commands, &s.Errors, &s.Slow, &s.Duration} {
		c.Store(0)
	}
}

func (s *QueryStats) count(kind stmtKind) {
	switch kind {
	case kindQuery:
		s.Queries.Add(1)
	case kindExec:
		s.Execs.Add(1)
	default:
		s.Commands.Add(1)
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	Connects int64
	Queries  int64
	Execs    int64
	Commands int64
	Errors   int64
	Slow     int64
	Duration time.Duration
}

// Statements returns the number of statements of every kind.
func (s StatsSnapshot) Statements() int64 {
	return s.Queries + s.Execs + s.Commands
}

// AvgDuration returns the mean statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	n := s.Statements()
	if n == 0 {
		return 0
	}
	return s.Duration / time.Duration(n)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d commands=%d errors=%d slow=%d avg=%s connects=%d",
		s.Queries, s.Execs, s.Commands, s.Errors, s.Slow, s.AvgDuration(), s.Connects)
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, took time.Duration)

// StatsConnector wraps a Connector so that every connection it opens
// records into one QueryStats.
type StatsConnector struct {
	dialect.Connector
	stats     QueryStats
	threshold atomic.Int64
	hook      SlowQueryHook
}

// StatsOption configures a StatsConnector.
type StatsOption func(*StatsConnector)

// WithSlowThreshold sets the duration above which a statement is slow.
// A negative threshold marks every statement as slow.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsConnector) {
		s.threshold.Store(int64(d))
	}
}

// WithSlowQueryHook sets the function called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsConnector) {
		s.hook = hook
	}
}

// WithSlowQueryLog logs slow statements at Warn level to l, or to the
// default logger when l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, took time.Duration) {
		l.WarnContext(ctx, "slow query", "query", query, "params", len(args), "duration", took)
	})
}

// NewStatsConnector wraps c with statement statistics:
//
//	c, _ := sql.Open(cfg)
//	sc := sql.NewStatsConnector(c, sql.WithSlowThreshold(cfg.SlowQueryThreshold))
//	p := pool.New(sc)
//	...
//	fmt.Println(sc.QueryStats().Stats())
func NewStatsConnector(c dialect.Connector, opts ...StatsOption) *StatsConnector {
	s := &StatsConnector{Connector: c}
	s.threshold.Store(int64(DefaultSlowThreshold))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (s *StatsConnector) QueryStats() *QueryStats { return &s.stats }

// SlowThreshold returns the current slow statement threshold.
func (s *StatsConnector) SlowThreshold() time.Duration {
	return time.Duration(s.threshold.Load())
}

// SetSlowThreshold changes the slow statement threshold of open and future
// connections.
func (s *StatsConnector) SetSlowThreshold(d time.Duration) {
	s.threshold.Store(int64(d))
}

// Connect implements the dialect.Connector interface.
func (s *StatsConnector) Connect(ctx context.Context) (dialect.Conn, error) {
	c, err := s.Connector.Connect(ctx)
	if err != nil {
		s.stats.Errors.Add(1)
		return nil, err
	}
	s.stats.Connects.Add(1)
	return &StatsConn{Conn: c, connector: s}, nil
}

func (s *StatsConnector) record(ctx context.Context, kind stmtKind, query string, args []any, start time.Time, err error) {
	took := time.Since(start)
	s.stats.count(kind)
	s.stats.Duration.Add(int64(took))
	if err != nil {
		s.stats.Errors.Add(1)
	}
	if took <= s.SlowThreshold() {
		return
	}
	s.stats.Slow.Add(1)
	if s.hook != nil {
		s.hook(ctx, query, args, took)
	}
}

// StatsConn is a connection opened by a StatsConnector.
type StatsConn struct {
	dialect.Conn
	connector *StatsConnector
}

// Query implements the dialect.Conn interface.
func (c *StatsConn) Query(ctx context.Context, query string, args []any) (dialect.Rows, error) {
	start := time.Now()
	rows, err := c.Conn.Query(ctx, query, args)
	c.connector.record(ctx, kindQuery, query, args, start, err)
	return rows, err
}

// Exec implements the dialect.Conn interface.
func (c *StatsConn) Exec(ctx context.Context, query string, args []any) (dialect.Result, error) {
	start := time.Now()
	res, err := c.Conn.Exec(ctx, query, args)
	c.connector.record(ctx, kindExec, query, args, start, err)
	return res, err
}

// RawCmd implements the dialect.Conn interface.
func (c *StatsConn) RawCmd(ctx context.Context, cmd string) error {
	start := time.Now()
	err := c.Conn.RawCmd(ctx, cmd)
	c.connector.record(ctx, kindCommand, cmd, nil, start, err)
	return err
}

// DebugConnector wraps a Connector and logs every statement its
// connections run.
type DebugConnector struct {
	dialect.Connector
	log func(context.Context, ...any)
}

// DebugOption configures a DebugConnector.
type DebugOption func(*DebugConnector)

// DebugWithLog sets the log function.
func DebugWithLog(fn func(context.Context, ...any)) DebugOption {
	return func(d *DebugConnector) {
		d.log = fn
	}
}

// DebugWithLogger logs to l at Debug level, tagged with the dialect.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return func(d *DebugConnector) {
		l := l.With("dialect", d.Dialect())
		d.log = func(ctx context.Context, v ...any) {
			l.DebugContext(ctx, fmt.Sprint(v...))
		}
	}
}

// NewDebugConnector wraps c with statement logging. Without options it
// logs to the default slog logger.
func NewDebugConnector(c dialect.Connector, opts ...DebugOption) *DebugConnector {
	d := &DebugConnector{Connector: c}
	DebugWithLogger(slog.Default())(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Connect implements the dialect.Connector interface.
func (d *DebugConnector) Connect(ctx context.Context) (dialect.Conn, error) {
	c, err := d.Connector.Connect(ctx)
	if err != nil {
		d.log(ctx, "connect failed: ", err)
		return nil, err
	}
	d.log(ctx, "connect")
	return &DebugConn{Conn: c, log: d.log}, nil
}

// DebugConn is a connection opened by a DebugConnector.
type DebugConn struct {
	dialect.Conn
	log func(context.Context, ...any)
}

// Query implements the dialect.Conn interface.
func (c *DebugConn) Query(ctx context.Context, query string, args []any) (dialect.Rows, error) {
	c.log(ctx, fmt.Sprintf("query: %s args: %v", query, args))
	return c.Conn.Query(ctx, query, args)
}

// Exec implements the dialect.Conn interface.
func (c *DebugConn) Exec(ctx context.Context, query string, args []any) (dialect.Result, error) {
	c.log(ctx, fmt.Sprintf("exec: %s args: %v", query, args))
	return c.Conn.Exec(ctx, query, args)
}

// RawCmd implements the dialect.Conn interface.
func (c *DebugConn) RawCmd(ctx context.Context, cmd string) error {
	c.log(ctx, "raw: "+cmd)
	return c.Conn.RawCmd(ctx, cmd)
}

// Close implements the dialect.Conn interface.
func (c *DebugConn) Close() error {
	c.log(context.Background(), "close connection")
	return c.Conn.Close()
}

var (
	_ dialect.Connector = (*StatsConnector)(nil)
	_ dialect.Conn      = (*StatsConn)(nil)
	_ dialect.Connector = (*DebugConnector)(nil)
	_ dialect.Conn      = (*DebugConn)(nil)
)

// Package pool provides a bounded pool of database connections.
package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/config"
	"github.com/syssam/sqlweave/connector"
	"github.com/syssam/sqlweave/dialect"
	dsql "github.com/syssam/sqlweave/dialect/sql"
)

// maxCheckFailures is the number of failed health checks one checkout
// tolerates before it fails with ConnectionError.
const maxCheckFailures = 3

// Option configures a Pool.
type Option func(*options)

type options struct {
	limit           int
	maxIdle         int
	maxLifetime     time.Duration
	maxIdleLifetime time.Duration
	poolTimeout     time.Duration
	testOnCheckOut  bool
	checkInterval   time.Duration
	logger          *slog.Logger
	connOpts        []connector.Option
}

// WithConnectionLimit sets the maximum number of open connections.
// Default is config.DefaultConnectionLimit.
func WithConnectionLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithMaxIdle sets the maximum number of idle connections kept. Released
// connections beyond it are closed. Default is the connection limit.
func WithMaxIdle(n int) Option {
	return func(o *options) {
		o.maxIdle = n
	}
}

// WithMaxLifetime closes connections older than d when they are checked
// out or released.
func WithMaxLifetime(d time.Duration) Option {
	return func(o *options) {
		o.maxLifetime = d
	}
}

// WithMaxIdleLifetime closes connections that sat idle longer than d when
// they are checked out.
func WithMaxIdleLifetime(d time.Duration) Option {
	return func(o *options) {
		o.maxIdleLifetime = d
	}
}

// WithPoolTimeout sets the time CheckOut waits for a free slot.
// Zero waits until the context is done.
func WithPoolTimeout(d time.Duration) Option {
	return func(o *options) {
		o.poolTimeout = d
	}
}

// WithTestOnCheckOut runs a health query on connections before handing
// them out.
func WithTestOnCheckOut(enabled bool) Option {
	return func(o *options) {
		o.testOnCheckOut = enabled
	}
}

// WithHealthCheckInterval limits the checkout health query to once per
// interval per connection. It has no effect without WithTestOnCheckOut.
func WithHealthCheckInterval(d time.Duration) Option {
	return func(o *options) {
		o.checkInterval = d
	}
}

// WithLogger sets the logger for pool events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithConnectionOptions sets the options of every connection the pool opens.
func WithConnectionOptions(opts ...connector.Option) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, opts...)
	}
}

// ConfigOptions returns the pool options described by cfg.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithConnectionLimit(cfg.ConnectionLimit),
		WithMaxIdle(cfg.MaxIdle),
		WithMaxLifetime(cfg.MaxLifetime),
		WithMaxIdleLifetime(cfg.MaxIdleLifetime),
		WithPoolTimeout(cfg.PoolTimeout),
		WithTestOnCheckOut(cfg.TestOnCheckOut),
		WithHealthCheckInterval(cfg.HealthCheckInterval),
		WithConnectionOptions(connector.ConfigOptions(cfg)...),
	}
}

// State is a point-in-time view of the pool.
type State struct {
	MaxOpen int
	InUse   int
	Idle    int
}

// Pool hands out connections to one database, at most the connection
// limit at a time. Connections are created on demand and reused in LIFO
// order.
type Pool struct {
	mgr  manager
	sem  *semaphore.Weighted
	opts options
	log  *slog.Logger

	mu     sync.Mutex
	idle   []*entry
	inUse  int
	closed bool
}

// entry is a pooled connection with its bookkeeping.
type entry struct {
	conn      *connector.Connection
	created   time.Time
	idleSince time.Time
	checked   time.Time
}

// New returns a pool of connections opened by c.
func New(c dialect.Connector, opts ...Option) *Pool {
	o := options{limit: config.DefaultConnectionLimit()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit < 1 {
		o.limit = config.DefaultConnectionLimit()
	}
	if o.maxIdle <= 0 || o.maxIdle > o.limit {
		o.maxIdle = o.limit
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	connOpts := append([]connector.Option{connector.WithLogger(o.logger)}, o.connOpts...)
	return newPool(&connectorManager{c: c, opts: connOpts}, o)
}

func newPool(m manager, o options) *Pool {
	return &Pool{
		mgr:  m,
		sem:  semaphore.NewWeighted(int64(o.limit)),
		opts: o,
		log:  o.logger,
	}
}

// Open validates cfg and returns a pool for it. With a slow query
// threshold configured, slow statements are counted and logged.
func Open(cfg *config.Config, opts ...Option) (*Pool, error) {
	c, err := dsql.Open(cfg)
	if err != nil {
		return nil, err
	}
	all := append(ConfigOptions(cfg), opts...)
	var o options
	for _, opt := range all {
		opt(&o)
	}
	var dc dialect.Connector = c
	if cfg.SlowQueryThreshold > 0 {
		dc = dsql.NewStatsConnector(c,
			dsql.WithSlowThreshold(cfg.SlowQueryThreshold),
			dsql.WithSlowQueryLog(o.logger),
		)
	}
	o.logger = orDefault(o.logger)
	o.logger.Debug("starting a connection pool",
		"dialect", cfg.Dialect,
		"connection_limit", cfg.ConnectionLimit,
		"config", cfg.Redacted(),
	)
	return New(dc, all...), nil
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Dialect returns the dialect name of the pooled connections.
func (p *Pool) Dialect() string { return p.mgr.dialect() }

// Acquire returns a connection, waiting for a free slot until ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*PooledConnection, error) {
	return p.acquire(ctx, 0, false)
}

// AcquireWithTimeout returns a connection, waiting at most d for a free
// slot. It fails with PoolTimeout when no slot frees up in time. With
// d <= 0 it does not wait at all.
func (p *Pool) AcquireWithTimeout(ctx context.Context, d time.Duration) (*PooledConnection, error) {
	return p.acquire(ctx, d, true)
}

// CheckOut returns a connection, waiting at most the configured pool
// timeout for a free slot. Without a pool timeout it waits until ctx is
// done.
func (p *Pool) CheckOut(ctx context.Context) (*PooledConnection, error) {
	return p.acquire(ctx, p.opts.poolTimeout, p.opts.poolTimeout > 0)
}

func (p *Pool) acquire(ctx context.Context, timeout time.Duration, bounded bool) (*PooledConnection, error) {
	if p.isClosed() {
		return nil, sqlweave.ErrPoolClosed
	}
	if err := p.reserve(ctx, timeout, bounded); err != nil {
		return nil, err
	}
	e, err := p.get(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		_ = e.conn.Close()
		return nil, sqlweave.ErrPoolClosed
	}
	p.inUse++
	p.mu.Unlock()
	return &PooledConnection{Connection: e.conn, pool: p, entry: e}, nil
}

// reserve takes a slot of the semaphore. A bounded wait that runs out while
// ctx is still alive fails with PoolTimeout.
func (p *Pool) reserve(ctx context.Context, timeout time.Duration, bounded bool) error {
	if !bounded {
		return p.sem.Acquire(ctx, 1)
	}
	if timeout <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.sem.TryAcquire(1) {
			return nil
		}
		return p.poolTimeout(0)
	}
	wait, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.sem.Acquire(wait, 1); err != nil {
		if ctx.Err() == nil && errors.Is(wait.Err(), context.DeadlineExceeded) {
			return p.poolTimeout(timeout)
		}
		return err
	}
	return nil
}

func (p *Pool) poolTimeout(d time.Duration) error {
	st := p.State()
	return sqlweave.NewError(sqlweave.PoolTimeout{MaxOpen: st.MaxOpen, InUse: st.InUse, Timeout: d})
}

// get takes an idle connection or opens a new one. The caller holds a slot.
func (p *Pool) get(ctx context.Context) (*entry, error) {
	var (
		failures int
		lastErr  error
	)
	for failures < maxCheckFailures {
		e := p.pop()
		if e == nil {
			conn, err := p.mgr.connect(ctx)
			if err != nil {
				return nil, err
			}
			e = &entry{conn: conn, created: time.Now()}
		} else if reason := p.stale(e, time.Now()); reason != "" {
			p.log.DebugContext(ctx, "recycling connection", "reason", reason)
			_ = e.conn.Close()
			continue
		}
		if err := p.test(ctx, e); err != nil {
			p.log.WarnContext(ctx, "connection failed health check", "error", err)
			_ = e.conn.Close()
			failures++
			lastErr = err
			continue
		}
		return e, nil
	}
	return nil, sqlweave.NewError(sqlweave.ConnectionError{Err: lastErr})
}

func (p *Pool) pop() *entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.idle)
	if n == 0 {
		return nil
	}
	e := p.idle[n-1]
	p.idle[n-1] = nil
	p.idle = p.idle[:n-1]
	return e
}

// stale returns why e must not be reused, or an empty string.
func (p *Pool) stale(e *entry, now time.Time) string {
	switch {
	case !e.conn.IsHealthy():
		return "unhealthy"
	case p.opts.maxLifetime > 0 && now.Sub(e.created) >= p.opts.maxLifetime:
		return "max lifetime"
	case p.opts.maxIdleLifetime > 0 && !e.idleSince.IsZero() && now.Sub(e.idleSince) >= p.opts.maxIdleLifetime:
		return "max idle lifetime"
	}
	return ""
}

func (p *Pool) test(ctx context.Context, e *entry) error {
	if !p.opts.testOnCheckOut {
		return nil
	}
	now := time.Now()
	if p.opts.checkInterval > 0 && !e.checked.IsZero() && now.Sub(e.checked) < p.opts.checkInterval {
		return nil
	}
	if err := p.mgr.check(ctx, e.conn); err != nil {
		return err
	}
	e.checked = now
	return nil
}

// put returns e to the idle set, or closes it.
func (p *Pool) put(e *entry) {
	if e.conn.InTransaction() {
		if err := e.conn.AbortTransaction(context.Background()); err != nil {
			p.log.Warn("rolling back abandoned transaction", "error", err)
		}
	}
	now := time.Now()
	p.mu.Lock()
	p.inUse--
	keep := !p.closed && len(p.idle) < p.opts.maxIdle && p.stale(e, now) == ""
	if keep {
		e.idleSince = now
		p.idle = append(p.idle, e)
	}
	p.mu.Unlock()
	if !keep {
		_ = e.conn.Close()
	}
	p.sem.Release(1)
}

// State returns the current pool state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{MaxOpen: p.opts.limit, InUse: p.inUse, Idle: len(p.idle)}
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close closes the idle connections and the connector. Connections still
// checked out are closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()
	for _, e := range idle {
		_ = e.conn.Close()
	}
	return p.mgr.close()
}

// PooledConnection is a connection checked out of a Pool. It must be
// released exactly once; further calls to Release are no-ops.
type PooledConnection struct {
	*connector.Connection
	pool     *Pool
	entry    *entry
	released bool
}

// Release returns the connection to the pool. Unhealthy connections are
// closed instead, and an open transaction is rolled back.
func (pc *PooledConnection) Release() {
	if pc.released {
		return
	}
	pc.released = true
	pc.pool.put(pc.entry)
}

// Close releases the connection. The underlying connection stays open in
// the pool when it is healthy.
func (pc *PooledConnection) Close() error {
	pc.Release()
	return nil
}

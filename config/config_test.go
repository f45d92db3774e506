package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/dialect"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
dialect: postgresql
host: db.internal
port: 6432
user: app
database: shop
connection_limit: 8
pool_timeout: 2s
max_lifetime: 30m
test_on_check_out: true
health_check_interval: 15s
`))
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, cfg.Dialect)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6432, cfg.Port)
	assert.Equal(t, 8, cfg.ConnectionLimit)
	assert.Equal(t, 8, cfg.MaxIdle)
	assert.Equal(t, 2*time.Second, cfg.PoolTimeout)
	assert.Equal(t, 30*time.Minute, cfg.MaxLifetime)
	assert.True(t, cfg.TestOnCheckOut)
	assert.Equal(t, 15*time.Second, cfg.HealthCheckInterval)
	assert.Equal(t, DefaultStatementCacheSize, cfg.StatementCacheSize)
	assert.Equal(t, "public", cfg.Schema)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	require.NoError(t, cfg.Validate())

	_, err = Parse([]byte("dialect: [unterminated"))
	require.Error(t, err)
}

func TestPgBouncerDisablesStatementCache(t *testing.T) {
	cfg, err := Parse([]byte("dialect: postgres\nhost: x\npg_bouncer: true\nstatement_cache_size: 100\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.StatementCacheSize)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultConnectionLimit(), cfg.ConnectionLimit)
	assert.Greater(t, cfg.ConnectionLimit, 1)
	assert.Equal(t, DefaultStatementCacheSize, cfg.StatementCacheSize)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqlweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: mysql\nhost: localhost\nconnection_limit: 4\nsocket_timeout: 3s\n"), 0o600))

	t.Setenv("SQLWEAVE_CONNECTION_LIMIT", "12")
	t.Setenv("SQLWEAVE_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, cfg.Dialect)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 12, cfg.ConnectionLimit, "env overrides the file")
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3*time.Second, cfg.SocketTimeout)
	assert.Equal(t, DefaultStatementCacheSize, cfg.StatementCacheSize)
	assert.Equal(t, "xxxxx", cfg.Redacted().Password)
	assert.Equal(t, "secret", cfg.Password)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Dialect: dialect.Postgres, Host: "h", ConnectionLimit: 2, MaxIdle: 2}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown dialect", func(c *Config) { c.Dialect = "oracle" }},
		{"ansi", func(c *Config) { c.Dialect = dialect.ANSI }},
		{"no host", func(c *Config) { c.Host = "" }},
		{"sqlite without file", func(c *Config) { c.Dialect = dialect.SQLite; c.Host = "" }},
		{"port", func(c *Config) { c.Port = 70000 }},
		{"limit", func(c *Config) { c.ConnectionLimit = 0 }},
		{"idle", func(c *Config) { c.MaxIdle = 3 }},
		{"cache", func(c *Config) { c.StatementCacheSize = -1 }},
		{"bouncer", func(c *Config) { c.Dialect = dialect.MySQL; c.PgBouncer = true }},
		{"timeout", func(c *Config) { c.PoolTimeout = -time.Second }},
	}
	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			_, ok := sqlweave.AsKind[sqlweave.InvalidConnectionArguments](err)
			assert.True(t, ok, err.Error())
		})
	}
	sqlite := Config{Dialect: dialect.SQLite, File: "db.sqlite", ConnectionLimit: 1, MaxIdle: 1}
	assert.NoError(t, sqlite.Validate())
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "postgres", (&Config{Dialect: dialect.Postgres}).DriverName())
	assert.Equal(t, "pgx", (&Config{Dialect: dialect.Postgres, Driver: "pgx"}).DriverName())
	assert.Equal(t, "sqlite", (&Config{Dialect: dialect.SQLite}).DriverName())
	assert.Equal(t, "sqlserver", (&Config{Dialect: dialect.MSSQL}).DriverName())
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Dialect = dialect.SQLite
	cfg.File = "app.db"
	cfg.PoolTimeout = 750 * time.Millisecond
	out, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "pool_timeout: 750ms")

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.PoolTimeout, back.PoolTimeout)
	assert.Equal(t, cfg.File, back.File)
}

func TestRedacted(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://bob:hunter2@db:5432/app", "postgres://bob:xxxxx@db:5432/app"},
		{"sqlserver://sa@db:1433?database=shop&password=hunter2", "sqlserver://sa@db:1433?database=shop&password=xxxxx"},
		{"file:/tmp/app.db?_pragma=foreign_keys(1)", "file:/tmp/app.db?_pragma=foreign_keys(1)"},
		{"postgres://bob:hunter2@db:bad port/app", "xxxxx"},
	}
	for _, tt := range tests {
		cfg := Config{URL: tt.url, Password: "hunter2"}
		r := cfg.Redacted()
		assert.Equal(t, tt.want, r.URL)
		assert.NotContains(t, r.URL, "hunter2")
		assert.Equal(t, "xxxxx", r.Password)
		assert.Equal(t, tt.url, cfg.URL)
	}
}

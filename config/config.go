// Package config holds the connection and pool settings of a database.
//
// Settings load from a YAML file and SQLWEAVE_* environment variables with
// Load, or from YAML bytes with Parse. Both fill unset fields with defaults.
package config

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/dialect"
)

// DefaultStatementCacheSize is the number of prepared statements cached
// per connection.
const DefaultStatementCacheSize = 500

// Config represents the settings of one database.
type Config struct {
	// Dialect is one of postgres, mysql, sqlite or sqlserver. Aliases such
	// as postgresql or mariadb are accepted.
	Dialect string `mapstructure:"dialect" yaml:"dialect"`
	// Driver overrides the database/sql driver name, for example "pgx"
	// instead of "postgres".
	Driver string `mapstructure:"driver" yaml:"driver,omitempty"`
	// URL is a complete connection string. When set, the discrete
	// connection fields are ignored.
	URL string `mapstructure:"url" yaml:"url,omitempty"`

	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	User     string `mapstructure:"user" yaml:"user,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Schema   string `mapstructure:"schema" yaml:"schema,omitempty"`
	File     string `mapstructure:"file" yaml:"file,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`

	ConnectionLimit     int           `mapstructure:"connection_limit" yaml:"connection_limit,omitempty"`
	MaxIdle             int           `mapstructure:"max_idle" yaml:"max_idle,omitempty"`
	MaxLifetime         time.Duration `mapstructure:"max_lifetime" yaml:"max_lifetime,omitempty"`
	MaxIdleLifetime     time.Duration `mapstructure:"max_idle_lifetime" yaml:"max_idle_lifetime,omitempty"`
	PoolTimeout         time.Duration `mapstructure:"pool_timeout" yaml:"pool_timeout,omitempty"`
	TestOnCheckOut      bool          `mapstructure:"test_on_check_out" yaml:"test_on_check_out,omitempty"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval" yaml:"health_check_interval,omitempty"`

	SocketTimeout  time.Duration `mapstructure:"socket_timeout" yaml:"socket_timeout,omitempty"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout,omitempty"`

	StatementCacheSize int  `mapstructure:"statement_cache_size" yaml:"statement_cache_size"`
	PgBouncer          bool `mapstructure:"pg_bouncer" yaml:"pg_bouncer,omitempty"`

	LogQueries         bool          `mapstructure:"log_queries" yaml:"log_queries,omitempty"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold" yaml:"slow_query_threshold,omitempty"`
}

// DefaultConnectionLimit is the pool size used when none is configured.
func DefaultConnectionLimit() int { return runtime.NumCPU()*2 + 1 }

// Default returns a configuration with every default applied and no
// connection target.
func Default() Config {
	return Config{
		ConnectionLimit:    DefaultConnectionLimit(),
		StatementCacheSize: DefaultStatementCacheSize,
		ConnectTimeout:     5 * time.Second,
	}
}

// Load reads the configuration with the precedence env > file > defaults.
// An empty path skips the file. Environment variables are the upper-cased
// keys prefixed with SQLWEAVE_, such as SQLWEAVE_CONNECTION_LIMIT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SQLWEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("dialect", "")
	v.SetDefault("driver", "")
	v.SetDefault("url", "")

	v.SetDefault("host", "")
	v.SetDefault("port", 0)
	v.SetDefault("user", "")
	v.SetDefault("password", "")
	v.SetDefault("database", "")
	v.SetDefault("schema", "")
	v.SetDefault("file", "")
	v.SetDefault("sslmode", "")

	v.SetDefault("connection_limit", d.ConnectionLimit)
	v.SetDefault("max_idle", 0)
	v.SetDefault("max_lifetime", time.Duration(0))
	v.SetDefault("max_idle_lifetime", time.Duration(0))
	v.SetDefault("pool_timeout", time.Duration(0))
	v.SetDefault("test_on_check_out", false)
	v.SetDefault("health_check_interval", time.Duration(0))

	v.SetDefault("socket_timeout", time.Duration(0))
	v.SetDefault("connect_timeout", d.ConnectTimeout)

	v.SetDefault("statement_cache_size", d.StatementCacheSize)
	v.SetDefault("pg_bouncer", false)

	v.SetDefault("log_queries", false)
	v.SetDefault("slow_query_threshold", time.Duration(0))
}

// Parse decodes a YAML document over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// Marshal encodes c as YAML. The password is included.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// normalize resolves aliases and derived defaults.
func (c *Config) normalize() {
	c.Dialect = dialect.Normalize(c.Dialect)
	if c.ConnectionLimit <= 0 {
		c.ConnectionLimit = DefaultConnectionLimit()
	}
	if c.MaxIdle <= 0 {
		c.MaxIdle = c.ConnectionLimit
	}
	// Transaction-mode PgBouncer cannot keep prepared statements.
	if c.PgBouncer {
		c.StatementCacheSize = 0
	}
	if c.Dialect == dialect.Postgres && c.Schema == "" {
		c.Schema = "public"
	}
}

// Normalize applies derived defaults to a configuration built by hand.
// Load and Parse call it already.
func (c *Config) Normalize() { c.normalize() }

// Validate reports the first invalid setting as InvalidConnectionArguments.
func (c *Config) Validate() error {
	switch {
	case !dialect.Valid(c.Dialect):
		return invalid("unknown dialect %q", c.Dialect)
	case c.Dialect == dialect.ANSI:
		return invalid("the ansi dialect has no driver and cannot connect")
	case c.URL == "" && c.Dialect == dialect.SQLite && c.File == "" && c.Database == "":
		return invalid("sqlite needs a file")
	case c.URL == "" && c.Dialect != dialect.SQLite && c.Host == "":
		return invalid("%s needs a host", c.Dialect)
	case c.Port < 0 || c.Port > 65535:
		return invalid("port %d out of range", c.Port)
	case c.ConnectionLimit < 1:
		return invalid("connection_limit must be positive, got %d", c.ConnectionLimit)
	case c.MaxIdle > c.ConnectionLimit:
		return invalid("max_idle %d exceeds connection_limit %d", c.MaxIdle, c.ConnectionLimit)
	case c.StatementCacheSize < 0:
		return invalid("statement_cache_size must not be negative")
	case c.PgBouncer && c.Dialect != dialect.Postgres:
		return invalid("pg_bouncer applies to postgres only")
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"max_lifetime", c.MaxLifetime},
		{"max_idle_lifetime", c.MaxIdleLifetime},
		{"pool_timeout", c.PoolTimeout},
		{"health_check_interval", c.HealthCheckInterval},
		{"socket_timeout", c.SocketTimeout},
		{"connect_timeout", c.ConnectTimeout},
		{"slow_query_threshold", c.SlowQueryThreshold},
	} {
		if d.val < 0 {
			return invalid("%s must not be negative", d.name)
		}
	}
	return nil
}

// DriverName returns the database/sql driver name for the dialect.
func (c *Config) DriverName() string {
	if c.Driver != "" {
		return c.Driver
	}
	switch c.Dialect {
	case dialect.SQLite:
		return "sqlite"
	case dialect.MSSQL:
		return "sqlserver"
	}
	return c.Dialect
}

// Redacted returns a copy of c without passwords, for logging. Passwords
// in the URL userinfo or a password query parameter are masked too, and a
// URL that does not parse is masked whole.
func (c *Config) Redacted() Config {
	r := *c
	if r.Password != "" {
		r.Password = redacted
	}
	if r.URL != "" {
		r.URL = redactURL(r.URL)
	}
	return r
}

const redacted = "xxxxx"

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	q := u.Query()
	for key := range q {
		if strings.EqualFold(key, "password") {
			q.Set(key, redacted)
			u.RawQuery = q.Encode()
		}
	}
	return u.Redacted()
}

func invalid(format string, args ...any) error {
	return sqlweave.NewError(sqlweave.InvalidConnectionArguments{Message: fmt.Sprintf(format, args...)})
}

package sql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/sqlweave/config"
	"github.com/syssam/sqlweave/dialect"
)

// Default server ports.
const (
	postgresPort = 5432
	mysqlPort    = 3306
	mssqlPort    = 1433
)

// sqliteBusyTimeout is the busy_timeout pragma, in milliseconds.
const sqliteBusyTimeout = 5000

// DSN formats the driver data source name for cfg. A configured URL is
// returned as is.
func DSN(cfg *config.Config) (string, error) {
	if cfg.URL != "" {
		return cfg.URL, nil
	}
	switch cfg.Dialect {
	case dialect.Postgres:
		return postgresDSN(cfg), nil
	case dialect.MySQL:
		return mysqlDSN(cfg), nil
	case dialect.SQLite:
		return sqliteDSN(cfg), nil
	case dialect.MSSQL:
		return mssqlDSN(cfg), nil
	}
	return "", fmt.Errorf("dialect/sql: no driver for dialect %q", cfg.Dialect)
}

func hostPort(cfg *config.Config, port int) string {
	if cfg.Port != 0 {
		port = cfg.Port
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(port))
}

func userinfo(cfg *config.Config) *url.Userinfo {
	switch {
	case cfg.User == "":
		return nil
	case cfg.Password == "":
		return url.User(cfg.User)
	}
	return url.UserPassword(cfg.User, cfg.Password)
}

func postgresDSN(cfg *config.Config) string {
	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(seconds(cfg.ConnectTimeout.Seconds())))
	}
	// pgx would otherwise prepare every statement behind the bouncer's back.
	if cfg.PgBouncer && cfg.DriverName() == "pgx" {
		q.Set("default_query_exec_mode", "simple_protocol")
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userinfo(cfg),
		Host:     hostPort(cfg, postgresPort),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func mysqlDSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = hostPort(cfg, mysqlPort)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.SocketTimeout
	mc.WriteTimeout = cfg.SocketTimeout
	switch strings.ToLower(cfg.SSLMode) {
	case "", "disable":
	case "prefer", "preferred":
		mc.TLSConfig = "preferred"
	case "skip-verify", "allow":
		mc.TLSConfig = "skip-verify"
	default:
		mc.TLSConfig = "true"
	}
	return mc.FormatDSN()
}

func sqliteDSN(cfg *config.Config) string {
	path := cfg.File
	if path == "" {
		path = cfg.Database
	}
	path = strings.TrimPrefix(path, "file:")
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, sqliteBusyTimeout)
}

func mssqlDSN(cfg *config.Config) string {
	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(seconds(cfg.ConnectTimeout.Seconds())))
	}
	switch strings.ToLower(cfg.SSLMode) {
	case "":
	case "disable":
		q.Set("encrypt", "disable")
	default:
		q.Set("encrypt", "true")
	}
	u := url.URL{
		Scheme:   "sqlserver",
		User:     userinfo(cfg),
		Host:     hostPort(cfg, mssqlPort),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// seconds rounds a timeout up to whole seconds, the unit drivers accept.
func seconds(s float64) int {
	n := int(s)
	if float64(n) < s {
		n++
	}
	return n
}

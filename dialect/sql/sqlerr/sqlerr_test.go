package sqlerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/sqlite"

	"github.com/syssam/sqlweave"
)

func kindOf(t *testing.T, err error) (*sqlweave.Error, sqlweave.ErrorKind) {
	t.Helper()
	e, ok := sqlweave.AsError(Map(err))
	require.True(t, ok, "expected a *sqlweave.Error, got %T", err)
	return e, e.Kind()
}

func TestPostgres(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want sqlweave.ErrorKind
	}{
		{
			name: "unique from detail",
			err:  &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "users_email_key"`, Detail: `Key (email, "tenant")=(a@b, 1) already exists.`, Constraint: "users_email_key"},
			code: "23505",
			want: sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnFields("email", "tenant")},
		},
		{
			name: "unique without detail",
			err:  &pgconn.PgError{Code: "23505", Message: "duplicate key", ConstraintName: "users_pkey"},
			code: "23505",
			want: sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("users_pkey")},
		},
		{
			name: "not null",
			err:  &pgconn.PgError{Code: "23502", Message: `null value in column "name" of relation "users" violates not-null constraint`},
			code: "23502",
			want: sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields("name")},
		},
		{
			name: "foreign key by column",
			err:  &pq.Error{Code: "23503", Message: "fk", Column: "user_id"},
			code: "23503",
			want: sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ConstraintOnFields("user_id")},
		},
		{
			name: "foreign key by name",
			err:  &pgconn.PgError{Code: "23503", Message: "fk", ConstraintName: "posts_user_id_fkey"},
			code: "23503",
			want: sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("posts_user_id_fkey")},
		},
		{
			name: "length",
			err:  &pq.Error{Code: "22001", Message: "value too long for type character varying(3)"},
			code: "22001",
			want: sqlweave.LengthMismatch{},
		},
		{
			name: "range",
			err:  &pq.Error{Code: "22003", Message: "integer out of range"},
			code: "22003",
			want: sqlweave.ValueOutOfRange{Message: "integer out of range"},
		},
		{
			name: "missing database",
			err:  &pgconn.PgError{Code: "3D000", Message: `database "shop" does not exist`},
			code: "3D000",
			want: sqlweave.DatabaseDoesNotExist{Name: "shop"},
		},
		{
			name: "access denied",
			err:  &pgconn.PgError{Code: "28000", Message: `permission denied for database "shop"`},
			code: "28000",
			want: sqlweave.DatabaseAccessDenied{Name: "shop"},
		},
		{
			name: "authentication",
			err:  &pgconn.PgError{Code: "28P01", Message: `password authentication failed for user "app"`},
			code: "28P01",
			want: sqlweave.AuthenticationFailed{User: "app"},
		},
		{
			name: "missing table",
			err:  &pq.Error{Code: "42P01", Message: `relation "users" does not exist`},
			code: "42P01",
			want: sqlweave.TableDoesNotExist{Table: "users"},
		},
		{
			name: "missing column",
			err:  &pq.Error{Code: "42703", Message: `column "nmae" does not exist`},
			code: "42703",
			want: sqlweave.ColumnNotFound{Column: "nmae"},
		},
		{
			name: "database exists",
			err:  &pq.Error{Code: "42P04", Message: `database "shop" already exists`},
			code: "42P04",
			want: sqlweave.DatabaseAlreadyExists{Name: "shop"},
		},
		{
			name: "canceled statement",
			err:  &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"},
			code: "57014",
			want: sqlweave.Timeout{Message: "canceling statement due to statement timeout"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, kind := kindOf(t, fmt.Errorf("dialect/sql: exec: %w", tt.err))
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, tt.code, e.OriginalCode())
			assert.NotEmpty(t, e.OriginalMessage())
		})
	}
}

func TestPostgresFallback(t *testing.T) {
	e, kind := kindOf(t, &pq.Error{Code: "42601", Message: "syntax error at or near \"SELEC\""})
	_, ok := kind.(sqlweave.QueryError)
	require.True(t, ok)
	assert.Equal(t, "42601", e.OriginalCode())
	assert.Equal(t, "syntax error at or near \"SELEC\"", e.OriginalMessage())

	var pqe *pq.Error
	require.True(t, errors.As(e, &pqe))
	assert.Equal(t, pq.ErrorCode("42601"), pqe.Code)

	e, _ = kindOf(t, fmt.Errorf("dialect/sql: query: %w", &pgconn.PgError{Code: "42601", Message: "syntax error"}))
	var pge *pgconn.PgError
	require.True(t, errors.As(e, &pge))
	assert.Equal(t, "42601", pge.Code)
}

func TestNativeCauseKept(t *testing.T) {
	t.Run("mysql", func(t *testing.T) {
		e, kind := kindOf(t, &mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"})
		assert.IsType(t, sqlweave.QueryError{}, kind)
		var me *mysql.MySQLError
		require.True(t, errors.As(e, &me))
		assert.EqualValues(t, 1064, me.Number)
		assert.Equal(t, "1064", e.OriginalCode())
	})
	t.Run("mssql", func(t *testing.T) {
		e, kind := kindOf(t, mssqlTestError{102, "Incorrect syntax near 'SELEC'."})
		assert.IsType(t, sqlweave.QueryError{}, kind)
		var me mssqlTestError
		require.True(t, errors.As(e, &me))
		assert.EqualValues(t, 102, me.number)
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "syntax.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		_, err = db.ExecContext(context.Background(), "SELEC 1")
		require.Error(t, err)
		e, kind := kindOf(t, err)
		assert.IsType(t, sqlweave.QueryError{}, kind)
		var se *sqlite.Error
		require.True(t, errors.As(e, &se))
		assert.Equal(t, fmt.Sprint(se.Code()), e.OriginalCode())
	})
}

func TestMySQL(t *testing.T) {
	tests := []struct {
		number  uint16
		message string
		want    sqlweave.ErrorKind
	}{
		{1062, "Duplicate entry 'a@b' for key 'users.email'", sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("users.email")}},
		{1451, "Cannot delete or update a parent row: a foreign key constraint fails (`shop`.`posts`, CONSTRAINT `posts_user_fk` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`))", sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("posts_user_fk")}},
		{1452, "Cannot add or update a child row", sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ForeignKeyConstraint()}},
		{1048, "Column 'name' cannot be null", sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields("name")}},
		{1364, "Field 'name' doesn't have a default value", sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields("name")}},
		{1263, "Column set to default value; NULL supplied to NOT NULL column 'age' at row 1", sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields("age")}},
		{1264, "Out of range value for column 'age' at row 1", sqlweave.ValueOutOfRange{Message: "Out of range value for column 'age' at row 1"}},
		{1049, "Unknown database 'shop'", sqlweave.DatabaseDoesNotExist{Name: "shop"}},
		{1007, "Can't create database 'shop'; database exists", sqlweave.DatabaseAlreadyExists{Name: "shop"}},
		{1044, "Access denied for user 'app'@'%' to database 'shop'", sqlweave.DatabaseAccessDenied{Name: "shop"}},
		{1045, "Access denied for user 'app'@'localhost' (using password: YES)", sqlweave.AuthenticationFailed{User: "app"}},
		{1146, "Table 'shop.users' doesn't exist", sqlweave.TableDoesNotExist{Table: "shop.users"}},
		{1054, "Unknown column 'nmae' in 'field list'", sqlweave.ColumnNotFound{Column: "nmae"}},
		{1406, "Data too long for column 'name' at row 1", sqlweave.LengthMismatch{Column: "name"}},
		{3024, "Query execution was interrupted, maximum statement execution time exceeded", sqlweave.Timeout{Message: "Query execution was interrupted, maximum statement execution time exceeded"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.number), func(t *testing.T) {
			e, kind := kindOf(t, &mysql.MySQLError{Number: tt.number, Message: tt.message})
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, fmt.Sprint(tt.number), e.OriginalCode())
			assert.Equal(t, tt.message, e.OriginalMessage())
		})
	}
}

type mssqlTestError struct {
	number  int32
	message string
}

func (e mssqlTestError) Error() string           { return "mssql: " + e.message }
func (e mssqlTestError) SQLErrorNumber() int32   { return e.number }
func (e mssqlTestError) SQLErrorMessage() string { return e.message }

func TestMSSQL(t *testing.T) {
	tests := []struct {
		number  int32
		message string
		want    sqlweave.ErrorKind
	}{
		{18456, "Login failed for user 'sa'.", sqlweave.AuthenticationFailed{User: "sa"}},
		{4060, `Cannot open database "shop" requested by the login. The login failed.`, sqlweave.DatabaseDoesNotExist{Name: "shop"}},
		{515, "Cannot insert the value NULL into column 'name', table 'shop.dbo.users'; column does not allow nulls. INSERT fails.", sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields("name")}},
		{1801, "Database 'shop' already exists. Choose a different database name.", sqlweave.DatabaseAlreadyExists{Name: "shop"}},
		{2627, "Violation of UNIQUE KEY constraint 'UQ_users_email'. Cannot insert duplicate key in object 'dbo.users'.", sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("UQ_users_email")}},
		{2601, "Cannot insert duplicate key row in object 'dbo.users' with unique index 'ix_email'.", sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("ix_email")}},
		{547, `The INSERT statement conflicted with the FOREIGN KEY constraint "FK_posts_users". The conflict occurred in database "shop".`, sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ConstraintOnIndex("FK_posts_users")}},
		{2628, "String or binary data would be truncated in table 'shop.dbo.users', column 'name'.", sqlweave.LengthMismatch{Column: "name"}},
		{208, "Invalid object name 'users'.", sqlweave.TableDoesNotExist{Table: "users"}},
		{207, "Invalid column name 'nmae'.", sqlweave.ColumnNotFound{Column: "nmae"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.number), func(t *testing.T) {
			e, kind := kindOf(t, mssqlTestError{tt.number, tt.message})
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, fmt.Sprint(tt.number), e.OriginalCode())
			assert.Equal(t, tt.message, e.OriginalMessage())
		})
	}
}

func TestSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "errors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, stmt := range []string{
		"PRAGMA foreign_keys = ON",
		"CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE, name TEXT NOT NULL)",
		"CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users (id))",
		"INSERT INTO users (id, email, name) VALUES (1, 'a@b', 'a')",
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	tests := []struct {
		stmt string
		code string
		want sqlweave.ErrorKind
	}{
		{"INSERT INTO users (id, email, name) VALUES (2, 'a@b', 'b')", "2067", sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnFields("email")}},
		{"INSERT INTO users (id, email, name) VALUES (1, 'c@d', 'c')", "1555", sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnFields("id")}},
		{"INSERT INTO users (id, email, name) VALUES (3, 'e@f', NULL)", "1299", sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields("name")}},
		{"INSERT INTO posts (id, user_id) VALUES (1, 99)", "787", sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ForeignKeyConstraint()}},
		{"SELECT * FROM missing", "1", sqlweave.TableDoesNotExist{Table: "missing"}},
		{"SELECT nmae FROM users", "1", sqlweave.ColumnNotFound{Column: "nmae"}},
	}
	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.stmt)
			require.Error(t, err)
			e, kind := kindOf(t, err)
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, tt.code, e.OriginalCode())
			assert.Equal(t, err.Error(), e.OriginalMessage())
		})
	}
}

type netErr struct{}

func (netErr) Error() string   { return "read tcp: connection reset by peer" }
func (netErr) Timeout() bool   { return false }
func (netErr) Temporary() bool { return false }

var _ net.Error = netErr{}

func TestMapTransport(t *testing.T) {
	assert.Nil(t, Map(nil))
	assert.Nil(t, MapConnect(nil))

	_, kind := kindOf(t, context.DeadlineExceeded)
	assert.IsType(t, sqlweave.Timeout{}, kind)

	_, kind = kindOf(t, fmt.Errorf("query: %w", driver.ErrBadConn))
	assert.IsType(t, sqlweave.ConnectionError{}, kind)

	_, kind = kindOf(t, netErr{})
	assert.IsType(t, sqlweave.ConnectionError{}, kind)
	assert.True(t, IsNetwork(fmt.Errorf("wrapped: %w", netErr{})))

	_, kind = kindOf(t, errors.New("pq: SSL is not enabled on the server"))
	assert.IsType(t, sqlweave.TLSError{}, kind)

	_, kind = kindOf(t, errors.New("something odd"))
	qe, ok := kind.(sqlweave.QueryError)
	require.True(t, ok)
	assert.EqualError(t, qe.Err, "something odd")

	normalized := sqlweave.NewError(sqlweave.NotFound{})
	assert.Same(t, normalized, Map(normalized))

	err := MapConnect(fmt.Errorf("dial: %w", context.DeadlineExceeded))
	assert.True(t, sqlweave.IsTimeout(err))
	_, ok = sqlweave.AsKind[sqlweave.ConnectTimeout](err)
	assert.True(t, ok)

	err = MapConnect(errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))
	assert.True(t, sqlweave.IsConnectionError(err))

	err = MapConnect(&pgconn.PgError{Code: "28P01", Message: `password authentication failed for user "app"`})
	_, ok = sqlweave.AsKind[sqlweave.AuthenticationFailed](err)
	assert.True(t, ok)
}

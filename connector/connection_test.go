package connector

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
	"github.com/syssam/sqlweave/config"
	"github.com/syssam/sqlweave/dialect"
	dsql "github.com/syssam/sqlweave/dialect/sql"
)

func openSQLite(t *testing.T, opts ...Option) *Connection {
	t.Helper()
	cfg := config.Default()
	cfg.Dialect = dialect.SQLite
	cfg.File = filepath.Join(t.TempDir(), "connector.db")
	cfg.Normalize()
	c, err := dsql.Open(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	conn, err := Connect(ctx, c, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.RawCmd(ctx, `CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		age INTEGER
	)`))
	return conn
}

func TestSQLiteQueries(t *testing.T) {
	conn := openSQLite(t)
	ctx := context.Background()
	assert.Equal(t, dialect.SQLite, conn.Dialect())

	for i, name := range []string{"naukio", "musti", "pertti"} {
		rs, err := conn.Insert(ctx, ast.InsertInto("users").Value("name", name).Value("age", i+1))
		require.NoError(t, err)
		id, ok := rs.LastInsertID()
		require.True(t, ok)
		assert.EqualValues(t, i+1, id)
		assert.True(t, rs.IsEmpty())
	}

	rs, err := conn.Select(ctx, ast.SelectFrom("users").Where(ast.Col("name").Equals("naukio")))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, rs.Columns())
	row, err := rs.Single()
	require.NoError(t, err)
	name, err := row.Get("name")
	require.NoError(t, err)
	assert.True(t, ast.Text("naukio").Equal(name))
	assert.True(t, ast.Int(1).Equal(row.Map()["age"]))

	rs, err = conn.Select(ctx, ast.SelectFrom("users").Where(ast.Col("age").GreaterThan(1)).OrderBy(ast.Col("id").Desc()))
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	first, ok := rs.First()
	require.True(t, ok)
	v, err := first.At(1)
	require.NoError(t, err)
	assert.True(t, ast.Text("pertti").Equal(v))
	_, err = rs.Single()
	assert.True(t, sqlweave.IsNotSingular(err))

	n, err := conn.Update(ctx, ast.UpdateTable("users").Set("age", 10).Where(ast.Col("age").LessThan(3)))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = conn.Delete(ctx, ast.DeleteFrom("users").Where(ast.Col("name").Equals("musti")))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rs, err = conn.QueryRaw(ctx, "SELECT COUNT(*) AS n FROM users WHERE age = ?", []ast.Value{ast.Int(10)})
	require.NoError(t, err)
	row, err = rs.Single()
	require.NoError(t, err)
	count, err := row.Get("n")
	require.NoError(t, err)
	assert.True(t, ast.Int(1).Equal(count))

	n, err = conn.ExecuteRaw(ctx, "DELETE FROM users WHERE name <> ?", []ast.Value{ast.Text("nobody")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rs, err = conn.Select(ctx, ast.SelectFrom("users"))
	require.NoError(t, err)
	_, err = rs.Single()
	assert.True(t, sqlweave.IsNotFound(err))
}

func TestSQLiteErrors(t *testing.T) {
	conn := openSQLite(t)
	ctx := context.Background()

	_, err := conn.Insert(ctx, ast.InsertInto("users").Value("name", "naukio"))
	require.NoError(t, err)
	_, err = conn.Insert(ctx, ast.InsertInto("users").Value("name", "naukio"))
	v, ok := sqlweave.AsKind[sqlweave.UniqueConstraintViolation](err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, sqlweave.ConstraintOnFields("name"), v.Constraint)

	_, err = conn.Select(ctx, ast.SelectFrom("cats"))
	_, ok = sqlweave.AsKind[sqlweave.TableDoesNotExist](err)
	assert.True(t, ok, "got %v", err)

	rs, err := conn.Insert(ctx, ast.InsertInto("users").Value("name", "musti").WithReturning("id"))
	require.NoError(t, err)
	row, err := rs.Single()
	require.NoError(t, err)
	id, err := row.Get("id")
	require.NoError(t, err)
	assert.Equal(t, ast.KindInteger, id.Kind())

	_, err = row.Get("name")
	_, ok = sqlweave.AsKind[sqlweave.ColumnNotFound](err)
	assert.True(t, ok)
	_, err = row.At(5)
	_, ok = sqlweave.AsKind[sqlweave.ResultIndexOutOfBounds](err)
	assert.True(t, ok)

	rs, err = conn.Select(ctx, ast.SelectFrom("users").Columns(ast.Col("name")).Where(ast.Col("id").Equals(1)).Limit(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, rs.Columns())
	assert.True(t, conn.IsHealthy())
}

func TestSQLiteVersion(t *testing.T) {
	conn := openSQLite(t)
	version, ok, err := conn.Version(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^3\.\d+\.\d+`, version)
}

func TestTransaction(t *testing.T) {
	conn := openSQLite(t)
	ctx := context.Background()
	assert.Equal(t, "BEGIN", conn.BeginStatement())

	tx, err := conn.StartTransaction(ctx)
	require.NoError(t, err)
	assert.True(t, conn.InTransaction())
	_, err = conn.StartTransaction(ctx)
	require.Error(t, err, "nested transactions are rejected")

	_, err = tx.Insert(ctx, ast.InsertInto("users").Value("name", "naukio"))
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))
	assert.False(t, conn.InTransaction())
	assert.ErrorIs(t, tx.Commit(ctx), sqlweave.ErrTxDone)
	_, err = tx.Select(ctx, ast.SelectFrom("users"))
	assert.ErrorIs(t, err, sqlweave.ErrTxDone)

	rs, err := conn.Select(ctx, ast.SelectFrom("users"))
	require.NoError(t, err)
	assert.Zero(t, rs.Len(), "rolled back")

	tx, err = conn.StartTransaction(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, ast.InsertInto("users").Value("name", "naukio"))
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.ErrorIs(t, tx.Rollback(ctx), sqlweave.ErrTxDone)

	rs, err = conn.Select(ctx, ast.SelectFrom("users"))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	tx, err = conn.StartTransaction(ctx)
	require.NoError(t, err)
	_, err = tx.Delete(ctx, ast.DeleteFrom("users"))
	require.NoError(t, err)
	require.NoError(t, conn.AbortTransaction(ctx))
	require.NoError(t, conn.AbortTransaction(ctx), "no open transaction")
	rs, err = conn.Select(ctx, ast.SelectFrom("users"))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}

func TestQueryLog(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	conn := openSQLite(t, WithLogger(l), WithQueryLog(true))

	_, err := conn.Select(context.Background(), ast.SelectFrom("users").Where(ast.Col("name").Equals("naukio")))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "msg=query")
	assert.Contains(t, out, "SELECT `users`.* FROM `users` WHERE `name` = ?")
	assert.Contains(t, out, "duration=")
}

func newMock(t *testing.T, opts ...Option) (*Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectExec("SET NAMES 'UTF8'").WillReturnResult(sqlmock.NewResult(0, 0))

	conn, err := Connect(context.Background(), dsql.OpenDB(dialect.Postgres, db), opts...)
	require.NoError(t, err)
	return conn, mock
}

func TestPostgresReturning(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("id").OfType("INT8", int64(0)),
		).AddRow(int64(42)))
	mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`).
		WithArgs("bob", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	rs, err := conn.Insert(ctx, ast.InsertInto("users").Value("name", "alice").WithReturning("id"))
	require.NoError(t, err)
	row, err := rs.Single()
	require.NoError(t, err)
	id, err := row.Get("id")
	require.NoError(t, err)
	assert.True(t, ast.Int(42).Equal(id))
	_, ok := rs.LastInsertID()
	assert.False(t, ok)

	n, err := conn.Update(ctx, ast.UpdateTable("users").Set("name", "bob").Where(ast.Col("id").Equals(42)))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBouncerReset(t *testing.T) {
	conn, mock := newMock(t, WithPgBouncer(true))
	mock.ExpectExec("BEGIN").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DEALLOCATE ALL").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("COMMIT").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	tx, err := conn.StartTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVersion(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT version()").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16.2"))

	version, ok, err := conn.Version(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "PostgreSQL 16.2", version)
}

func TestSocketTimeout(t *testing.T) {
	conn, mock := newMock(t, WithSocketTimeout(20*time.Millisecond))
	mock.ExpectQuery("SELECT 1").WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))

	_, err := conn.QueryRaw(context.Background(), "SELECT 1", nil)
	_, ok := sqlweave.AsKind[sqlweave.Timeout](err)
	assert.True(t, ok, "got %v", err)
}

func TestCompileErrorsSkipTheDatabase(t *testing.T) {
	conn, mock := newMock(t)
	_, err := conn.Execute(context.Background(), ast.UpdateTable("users").Where(ast.Col("id").Equals(1)))
	_, ok := sqlweave.AsKind[sqlweave.MalformedQuery](err)
	assert.True(t, ok)

	_, err = conn.QueryRaw(context.Background(), "  ", nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewUnknownDialect(t *testing.T) {
	_, err := New(nil, "oracle")
	_, ok := sqlweave.AsKind[sqlweave.InvalidConnectionArguments](err)
	assert.True(t, ok)
}

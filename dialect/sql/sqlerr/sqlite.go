package sqlerr

import (
	"errors"
	"strconv"
	"strings"

	"modernc.org/sqlite"

	"github.com/syssam/sqlweave"
)

func sqliteErr(err error) *sqlweave.Error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return nil
	}
	return fromSQLite(err, se.Code(), se.Error())
}

// fromSQLite maps an extended result code. Messages look like
// "constraint failed: UNIQUE constraint failed: users.email (2067)".
func fromSQLite(err error, code int, message string) *sqlweave.Error {
	var kind sqlweave.ErrorKind
	switch code {
	case 2067, 1555:
		kind = sqlweave.UniqueConstraintViolation{Constraint: sqliteFields(message, "UNIQUE constraint failed: ")}
	case 1299:
		kind = sqlweave.NullConstraintViolation{Constraint: sqliteFields(message, "NOT NULL constraint failed: ")}
	case 787:
		kind = sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ForeignKeyConstraint()}
	case 5, 261, 517:
		kind = sqlweave.Timeout{Message: "database is busy"}
	default:
		if table, ok := after(message, "no such table: ", " "); ok {
			kind = sqlweave.TableDoesNotExist{Table: table}
		} else if column, ok := after(message, "no such column: ", " "); ok {
			kind = sqlweave.ColumnNotFound{Column: column}
		} else {
			kind = sqlweave.QueryError{Err: err}
		}
	}
	return sqlweave.NewNativeError(kind, strconv.Itoa(code), message)
}

// sqliteFields reads "tbl.a, tbl.b" after prefix and keeps the column names.
func sqliteFields(message, prefix string) sqlweave.DatabaseConstraint {
	list, ok := after(message, prefix, " (")
	if !ok || list == "" {
		return sqlweave.UnparsedConstraint()
	}
	fields := strings.Split(list, ", ")
	for i, f := range fields {
		if j := strings.LastIndexByte(f, '.'); j >= 0 {
			fields[i] = f[j+1:]
		}
	}
	return sqlweave.ConstraintOnFields(fields...)
}

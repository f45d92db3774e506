package sqlerr

import (
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/sqlweave"
)

func mysqlErr(err error) *sqlweave.Error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return nil
	}
	return fromMySQL(err, me.Number, me.Message)
}

// fromMySQL maps a server error number. Names are read from the
// single-quoted parts of the message, such as "Unknown column 'x'".
func fromMySQL(err error, number uint16, message string) *sqlweave.Error {
	var kind sqlweave.ErrorKind
	switch number {
	case 1062:
		// Duplicate entry 'a@b' for key 'users.email'
		kind = sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex(lastQuoted(message, '\''))}
	case 1451, 1452:
		c := sqlweave.ForeignKeyConstraint()
		if name, ok := after(message, "CONSTRAINT `", "`"); ok {
			c = sqlweave.ConstraintOnIndex(name)
		}
		kind = sqlweave.ForeignKeyConstraintViolation{Constraint: c}
	case 1263, 1364, 1048:
		field := quoted(message, '\'')
		if number == 1263 {
			field = lastQuoted(message, '\'')
		}
		kind = sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields(field)}
	case 1264:
		kind = sqlweave.ValueOutOfRange{Message: message}
	case 1049:
		kind = sqlweave.DatabaseDoesNotExist{Name: quoted(message, '\'')}
	case 1007:
		// Can't create database 'shop'; database exists
		name, _ := after(message, "database '", "'")
		kind = sqlweave.DatabaseAlreadyExists{Name: name}
	case 1044:
		kind = sqlweave.DatabaseAccessDenied{Name: lastQuoted(message, '\'')}
	case 1045:
		kind = sqlweave.AuthenticationFailed{User: quoted(message, '\'')}
	case 1146:
		kind = sqlweave.TableDoesNotExist{Table: quoted(message, '\'')}
	case 1054:
		kind = sqlweave.ColumnNotFound{Column: quoted(message, '\'')}
	case 1406:
		kind = sqlweave.LengthMismatch{Column: quoted(message, '\'')}
	case 3024:
		kind = sqlweave.Timeout{Message: message}
	default:
		kind = sqlweave.QueryError{Err: err}
	}
	return sqlweave.NewNativeError(kind, strconv.Itoa(int(number)), message)
}

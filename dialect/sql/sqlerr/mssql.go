package sqlerr

import (
	"strconv"

	"github.com/syssam/sqlweave"
)

// mssqlError is implemented by the errors of SQL Server drivers such as
// go-mssqldb.
type mssqlError interface {
	SQLErrorNumber() int32
	SQLErrorMessage() string
}

func mssqlErr(err error) *sqlweave.Error {
	e, ok := asError[mssqlError](err)
	if !ok {
		return nil
	}
	return fromMSSQL(err, e.SQLErrorNumber(), e.SQLErrorMessage())
}

func fromMSSQL(err error, number int32, message string) *sqlweave.Error {
	var kind sqlweave.ErrorKind
	switch number {
	case 18456:
		kind = sqlweave.AuthenticationFailed{User: quoted(message, '\'')}
	case 4060:
		kind = sqlweave.DatabaseDoesNotExist{Name: quoted(message, '"')}
	case 515:
		kind = sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields(quoted(message, '\''))}
	case 1801, 2714:
		kind = sqlweave.DatabaseAlreadyExists{Name: quoted(message, '\'')}
	case 2627:
		kind = sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex(quoted(message, '\''))}
	case 2601, 1505:
		kind = sqlweave.UniqueConstraintViolation{Constraint: sqlweave.ConstraintOnIndex(lastQuoted(message, '\''))}
	case 547:
		kind = sqlweave.ForeignKeyConstraintViolation{Constraint: sqlweave.ConstraintOnIndex(quoted(message, '"'))}
	case 2628:
		kind = sqlweave.LengthMismatch{Column: lastQuoted(message, '\'')}
	case 208:
		kind = sqlweave.TableDoesNotExist{Table: quoted(message, '\'')}
	case 207:
		kind = sqlweave.ColumnNotFound{Column: quoted(message, '\'')}
	default:
		if isTLS(err) {
			kind = sqlweave.TLSError{Message: message}
		} else {
			kind = sqlweave.QueryError{Err: err}
		}
	}
	return sqlweave.NewNativeError(kind, strconv.Itoa(int(number)), message)
}

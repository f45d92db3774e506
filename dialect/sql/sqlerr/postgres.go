package sqlerr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/syssam/sqlweave"
)

// pgFields is the subset of a Postgres error report used for mapping. Both
// lib/pq and pgx expose it.
type pgFields struct {
	code, message, detail, column, constraint string
}

func postgresErr(err error) *sqlweave.Error {
	var (
		pqe *pq.Error
		pge *pgconn.PgError
	)
	switch {
	case errors.As(err, &pqe):
		return fromPostgres(err, pgFields{
			code:       string(pqe.Code),
			message:    pqe.Message,
			detail:     pqe.Detail,
			column:     pqe.Column,
			constraint: pqe.Constraint,
		})
	case errors.As(err, &pge):
		return fromPostgres(err, pgFields{
			code:       pge.Code,
			message:    pge.Message,
			detail:     pge.Detail,
			column:     pge.ColumnName,
			constraint: pge.ConstraintName,
		})
	}
	return nil
}

// fromPostgres maps a SQLSTATE report. Unknown codes keep err as the
// cause.
func fromPostgres(err error, f pgFields) *sqlweave.Error {
	var kind sqlweave.ErrorKind
	switch f.code {
	case "22001":
		kind = sqlweave.LengthMismatch{Column: f.column}
	case "22003":
		kind = sqlweave.ValueOutOfRange{Message: f.message}
	case "23505":
		kind = sqlweave.UniqueConstraintViolation{Constraint: pgKey(f)}
	case "23502":
		column := f.column
		if column == "" {
			column = quoted(f.message, '"')
		}
		kind = sqlweave.NullConstraintViolation{Constraint: sqlweave.ConstraintOnFields(column)}
	case "23503":
		c := sqlweave.ForeignKeyConstraint()
		switch {
		case f.column != "":
			c = sqlweave.ConstraintOnFields(f.column)
		case f.constraint != "":
			c = sqlweave.ConstraintOnIndex(f.constraint)
		}
		kind = sqlweave.ForeignKeyConstraintViolation{Constraint: c}
	case "3D000":
		kind = sqlweave.DatabaseDoesNotExist{Name: quoted(f.message, '"')}
	case "28000":
		kind = sqlweave.DatabaseAccessDenied{Name: lastQuoted(f.message, '"')}
	case "28P01":
		kind = sqlweave.AuthenticationFailed{User: lastQuoted(f.message, '"')}
	case "42P01":
		kind = sqlweave.TableDoesNotExist{Table: quoted(f.message, '"')}
	case "42703":
		kind = sqlweave.ColumnNotFound{Column: quoted(f.message, '"')}
	case "42P04":
		kind = sqlweave.DatabaseAlreadyExists{Name: quoted(f.message, '"')}
	case "57014":
		kind = sqlweave.Timeout{Message: f.message}
	default:
		kind = sqlweave.QueryError{Err: err}
	}
	return sqlweave.NewNativeError(kind, f.code, f.message)
}

// pgKey reads the columns of a unique violation from a detail such as
// `Key (a, b)=(1, 2) already exists.`
func pgKey(f pgFields) sqlweave.DatabaseConstraint {
	if cols, ok := after(f.detail, "Key (", ")=("); ok && cols != "" {
		fields := strings.Split(strings.ReplaceAll(cols, `"`, ""), ", ")
		return sqlweave.ConstraintOnFields(fields...)
	}
	if f.constraint != "" {
		return sqlweave.ConstraintOnIndex(f.constraint)
	}
	return sqlweave.UnparsedConstraint()
}

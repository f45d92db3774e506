package sqlweave

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Standard sentinel errors.
var (
	// ErrTxDone is returned when committing or rolling back a transaction
	// that has already been finished.
	ErrTxDone = errors.New("sqlweave: transaction has already been committed or rolled back")

	// ErrPoolClosed is returned when acquiring from a closed pool.
	ErrPoolClosed = errors.New("sqlweave: pool is closed")
)

// Error is the error type returned by every fallible operation of the
// library. It carries a normalized ErrorKind and, when the failure was
// reported by a database driver, the driver's native code and message.
type Error struct {
	kind    ErrorKind
	code    string
	message string
}

// NewError returns an Error of the given kind without native details.
func NewError(kind ErrorKind) *Error {
	return &Error{kind: kind}
}

// NewNativeError returns an Error of the given kind that keeps the native
// error code and message reported by the driver.
func NewNativeError(kind ErrorKind, code, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

// Error returns the error string.
func (e *Error) Error() string {
	if e.kind == nil {
		return "sqlweave: unknown error"
	}
	return e.kind.Error()
}

// Kind returns the normalized error kind.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// OriginalCode returns the native error code, or an empty string.
func (e *Error) OriginalCode() string {
	return e.code
}

// OriginalMessage returns the native error message, or an empty string.
func (e *Error) OriginalMessage() string {
	return e.message
}

// Unwrap returns the error kind, so errors.As can match on kinds directly.
func (e *Error) Unwrap() error {
	return e.kind
}

// ErrorKind is the closed set of normalized failure categories.
type ErrorKind interface {
	error
	errorKind()
}

// ConstraintKind describes how a violated constraint was identified.
type ConstraintKind uint8

// Constraint kinds.
const (
	ConstraintCannotParse ConstraintKind = iota
	ConstraintFields
	ConstraintIndex
	ConstraintForeignKey
)

// DatabaseConstraint identifies the constraint that a statement violated.
type DatabaseConstraint struct {
	Kind   ConstraintKind
	Fields []string
	Index  string
}

// ConstraintOnFields returns a constraint identified by its column names.
func ConstraintOnFields(fields ...string) DatabaseConstraint {
	return DatabaseConstraint{Kind: ConstraintFields, Fields: fields}
}

// ConstraintOnIndex returns a constraint identified by an index or constraint name.
func ConstraintOnIndex(name string) DatabaseConstraint {
	return DatabaseConstraint{Kind: ConstraintIndex, Index: name}
}

// ForeignKeyConstraint returns an unnamed foreign key constraint.
func ForeignKeyConstraint() DatabaseConstraint {
	return DatabaseConstraint{Kind: ConstraintForeignKey}
}

// UnparsedConstraint returns a constraint that could not be identified.
func UnparsedConstraint() DatabaseConstraint {
	return DatabaseConstraint{Kind: ConstraintCannotParse}
}

// String returns the constraint description.
func (c DatabaseConstraint) String() string {
	switch c.Kind {
	case ConstraintFields:
		return strings.Join(c.Fields, ",")
	case ConstraintIndex:
		return c.Index
	case ConstraintForeignKey:
		return "FOREIGN KEY"
	default:
		return ""
	}
}

type (
	// QueryError is the fallback kind for unrecognized native failures.
	QueryError struct{ Err error }

	// InvalidConnectionArguments reports an invalid connection configuration.
	InvalidConnectionArguments struct{ Message string }

	// DatabaseDoesNotExist reports a missing database.
	DatabaseDoesNotExist struct{ Name string }

	// DatabaseAccessDenied reports missing privileges on a database.
	DatabaseAccessDenied struct{ Name string }

	// DatabaseAlreadyExists reports an attempt to create an existing database.
	DatabaseAlreadyExists struct{ Name string }

	// AuthenticationFailed reports rejected credentials.
	AuthenticationFailed struct{ User string }

	// TableDoesNotExist reports a reference to a missing table.
	TableDoesNotExist struct{ Table string }

	// ColumnNotFound reports a reference to a missing column, either on the
	// server or in a ResultRow.
	ColumnNotFound struct{ Column string }

	// UniqueConstraintViolation reports a duplicate key.
	UniqueConstraintViolation struct{ Constraint DatabaseConstraint }

	// NullConstraintViolation reports a NULL written to a NOT NULL column.
	NullConstraintViolation struct{ Constraint DatabaseConstraint }

	// ForeignKeyConstraintViolation reports a broken reference.
	ForeignKeyConstraintViolation struct{ Constraint DatabaseConstraint }

	// ConnectionError reports a failure to establish or keep a connection.
	ConnectionError struct{ Err error }

	// NotFound reports an empty result where one row was expected.
	NotFound struct{}

	// NotSingular reports more than one row where one row was expected.
	NotSingular struct{ Count int }

	// ResultIndexOutOfBounds reports a column index outside a ResultRow.
	ResultIndexOutOfBounds struct{ Index, Len int }

	// ResultTypeMismatch reports a value of an unexpected kind.
	ResultTypeMismatch struct{ Column, Expected, Actual string }

	// ConversionError reports a value that cannot be converted.
	ConversionError struct{ Message string }

	// LengthMismatch reports a value too long for its column.
	LengthMismatch struct{ Column string }

	// ValueOutOfRange reports a numeric value outside the column range.
	ValueOutOfRange struct{ Message string }

	// Timeout reports a statement that did not finish in time.
	Timeout struct{ Message string }

	// ConnectTimeout reports a connection that could not be opened in time.
	ConnectTimeout struct{ Message string }

	// PoolTimeout reports a pool checkout that waited too long for a slot.
	PoolTimeout struct {
		MaxOpen int
		InUse   int
		Timeout time.Duration
	}

	// TLSError reports a failed TLS negotiation.
	TLSError struct{ Message string }

	// UnsupportedFeature reports a query construct that a dialect cannot express.
	UnsupportedFeature struct{ Dialect, Feature string }

	// MalformedQuery reports an AST that violates its own invariants.
	MalformedQuery struct{ Message string }
)

func (e QueryError) Error() string {
	if e.Err == nil {
		return "sqlweave: query error"
	}
	return "sqlweave: query error: " + e.Err.Error()
}

// Unwrap returns the native error.
func (e QueryError) Unwrap() error { return e.Err }

func (e InvalidConnectionArguments) Error() string {
	return "sqlweave: invalid connection arguments: " + e.Message
}

func (e DatabaseDoesNotExist) Error() string {
	return fmt.Sprintf("sqlweave: database %q does not exist", e.Name)
}

func (e DatabaseAccessDenied) Error() string {
	return fmt.Sprintf("sqlweave: access denied to database %q", e.Name)
}

func (e DatabaseAlreadyExists) Error() string {
	return fmt.Sprintf("sqlweave: database %q already exists", e.Name)
}

func (e AuthenticationFailed) Error() string {
	return fmt.Sprintf("sqlweave: authentication failed for user %q", e.User)
}

func (e TableDoesNotExist) Error() string {
	return fmt.Sprintf("sqlweave: table %q does not exist", e.Table)
}

func (e ColumnNotFound) Error() string {
	return fmt.Sprintf("sqlweave: column %q not found", e.Column)
}

func (e UniqueConstraintViolation) Error() string {
	return "sqlweave: unique constraint failed: " + e.Constraint.String()
}

func (e NullConstraintViolation) Error() string {
	return "sqlweave: null constraint failed: " + e.Constraint.String()
}

func (e ForeignKeyConstraintViolation) Error() string {
	return "sqlweave: foreign key constraint failed: " + e.Constraint.String()
}

func (e ConnectionError) Error() string {
	if e.Err == nil {
		return "sqlweave: connection error"
	}
	return "sqlweave: connection error: " + e.Err.Error()
}

// Unwrap returns the underlying connection failure.
func (e ConnectionError) Unwrap() error { return e.Err }

func (NotFound) Error() string { return "sqlweave: record not found" }

func (e NotSingular) Error() string {
	return fmt.Sprintf("sqlweave: result not singular (got %d rows, expected 1)", e.Count)
}

func (e ResultIndexOutOfBounds) Error() string {
	return fmt.Sprintf("sqlweave: column index %d out of bounds (row has %d columns)", e.Index, e.Len)
}

func (e ResultTypeMismatch) Error() string {
	return fmt.Sprintf("sqlweave: column %q: expected %s, got %s", e.Column, e.Expected, e.Actual)
}

func (e ConversionError) Error() string {
	return "sqlweave: conversion error: " + e.Message
}

func (e LengthMismatch) Error() string {
	if e.Column == "" {
		return "sqlweave: value too long for column"
	}
	return fmt.Sprintf("sqlweave: value too long for column %q", e.Column)
}

func (e ValueOutOfRange) Error() string {
	return "sqlweave: value out of range: " + e.Message
}

func (e Timeout) Error() string {
	if e.Message == "" {
		return "sqlweave: operation timed out"
	}
	return "sqlweave: operation timed out: " + e.Message
}

func (e ConnectTimeout) Error() string {
	if e.Message == "" {
		return "sqlweave: timed out while connecting"
	}
	return "sqlweave: timed out while connecting: " + e.Message
}

func (e PoolTimeout) Error() string {
	return fmt.Sprintf(
		"sqlweave: timed out fetching a connection from the pool (connection limit: %d, in use: %d, timeout: %s)",
		e.MaxOpen, e.InUse, e.Timeout,
	)
}

func (e TLSError) Error() string {
	return "sqlweave: tls error: " + e.Message
}

func (e UnsupportedFeature) Error() string {
	return fmt.Sprintf("sqlweave: %s is not supported on %s", e.Feature, e.Dialect)
}

func (e MalformedQuery) Error() string {
	return "sqlweave: malformed query: " + e.Message
}

func (QueryError) errorKind()                    {}
func (InvalidConnectionArguments) errorKind()    {}
func (DatabaseDoesNotExist) errorKind()          {}
func (DatabaseAccessDenied) errorKind()          {}
func (DatabaseAlreadyExists) errorKind()         {}
func (AuthenticationFailed) errorKind()          {}
func (TableDoesNotExist) errorKind()             {}
func (ColumnNotFound) errorKind()                {}
func (UniqueConstraintViolation) errorKind()     {}
func (NullConstraintViolation) errorKind()       {}
func (ForeignKeyConstraintViolation) errorKind() {}
func (ConnectionError) errorKind()               {}
func (NotFound) errorKind()                      {}
func (NotSingular) errorKind()                   {}
func (ResultIndexOutOfBounds) errorKind()        {}
func (ResultTypeMismatch) errorKind()            {}
func (ConversionError) errorKind()               {}
func (LengthMismatch) errorKind()                {}
func (ValueOutOfRange) errorKind()               {}
func (Timeout) errorKind()                       {}
func (ConnectTimeout) errorKind()                {}
func (PoolTimeout) errorKind()                   {}
func (TLSError) errorKind()                      {}
func (UnsupportedFeature) errorKind()            {}
func (MalformedQuery) errorKind()                {}

// AsKind finds the first error kind of type K in err's chain.
//
//	if v, ok := sqlweave.AsKind[sqlweave.UniqueConstraintViolation](err); ok {
//	    log.Println("duplicate:", v.Constraint)
//	}
func AsKind[K ErrorKind](err error) (K, bool) {
	var k K
	if err == nil {
		return k, false
	}
	ok := errors.As(err, &k)
	return k, ok
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if err == nil {
		return nil, false
	}
	ok := errors.As(err, &e)
	return e, ok
}

// IsNotFound returns true if the error is a NotFound error.
func IsNotFound(err error) bool {
	_, ok := AsKind[NotFound](err)
	return ok
}

// IsNotSingular returns true if the error is a NotSingular error.
func IsNotSingular(err error) bool {
	_, ok := AsKind[NotSingular](err)
	return ok
}

// IsUniqueConstraintViolation returns true if the error is a unique constraint violation.
func IsUniqueConstraintViolation(err error) bool {
	_, ok := AsKind[UniqueConstraintViolation](err)
	return ok
}

// IsForeignKeyConstraintViolation returns true if the error is a foreign key violation.
func IsForeignKeyConstraintViolation(err error) bool {
	_, ok := AsKind[ForeignKeyConstraintViolation](err)
	return ok
}

// IsNullConstraintViolation returns true if the error is a null constraint violation.
func IsNullConstraintViolation(err error) bool {
	_, ok := AsKind[NullConstraintViolation](err)
	return ok
}

// IsConstraintViolation returns true if the error is any constraint violation.
func IsConstraintViolation(err error) bool {
	return IsUniqueConstraintViolation(err) ||
		IsForeignKeyConstraintViolation(err) ||
		IsNullConstraintViolation(err)
}

// IsPoolTimeout returns true if the error is a pool checkout timeout.
func IsPoolTimeout(err error) bool {
	_, ok := AsKind[PoolTimeout](err)
	return ok
}

// IsTimeout returns true for statement, connect and pool timeouts.
func IsTimeout(err error) bool {
	if _, ok := AsKind[Timeout](err); ok {
		return true
	}
	if _, ok := AsKind[ConnectTimeout](err); ok {
		return true
	}
	return IsPoolTimeout(err)
}

// IsUnsupported returns true if the error reports a construct the dialect cannot express.
func IsUnsupported(err error) bool {
	_, ok := AsKind[UnsupportedFeature](err)
	return ok
}

// IsConnectionError returns true if the error is a connection error.
func IsConnectionError(err error) bool {
	_, ok := AsKind[ConnectionError](err)
	return ok
}

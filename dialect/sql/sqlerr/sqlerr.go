// Package sqlerr converts native driver errors into *sqlweave.Error values.
//
// Every mapper keeps the driver's code and message verbatim, available as
// OriginalCode and OriginalMessage. Errors that match no known code become
// QueryError, which wraps the native error.
package sqlerr

import (
	"context"
	"crypto/tls"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/syssam/sqlweave"
)

// Map converts err into a *sqlweave.Error. It returns nil for nil, and err
// itself when it is already normalized.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := sqlweave.AsError(err); ok {
		return err
	}
	if e := native(err); e != nil {
		return e
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return sqlweave.NewError(sqlweave.Timeout{Message: err.Error()})
	case isTLS(err):
		return sqlweave.NewError(sqlweave.TLSError{Message: err.Error()})
	case errors.Is(err, driver.ErrBadConn), IsNetwork(err):
		return sqlweave.NewError(sqlweave.ConnectionError{Err: err})
	}
	return sqlweave.NewError(sqlweave.QueryError{Err: err})
}

// MapConnect is Map for failures while opening a connection. Deadlines
// become ConnectTimeout and unrecognized failures ConnectionError.
func MapConnect(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := sqlweave.AsError(err); ok {
		return err
	}
	if e := native(err); e != nil {
		return e
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return sqlweave.NewError(sqlweave.ConnectTimeout{Message: err.Error()})
	case isTLS(err):
		return sqlweave.NewError(sqlweave.TLSError{Message: err.Error()})
	}
	return sqlweave.NewError(sqlweave.ConnectionError{Err: err})
}

// IsNetwork reports whether err is a transport failure that leaves the
// connection unusable.
func IsNetwork(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}

// native tries the mapper of every registered driver.
func native(err error) *sqlweave.Error {
	for _, m := range []func(error) *sqlweave.Error{postgresErr, mysqlErr, sqliteErr, mssqlErr} {
		if e := m(err); e != nil {
			return e
		}
	}
	return nil
}

func isTLS(err error) bool {
	var (
		rec  tls.RecordHeaderError
		cert *tls.CertificateVerificationError
	)
	if errors.As(err, &rec) || errors.As(err, &cert) {
		return true
	}
	return containsAny(err.Error(),
		"tls: ",
		"TLS Handshake failed",
		"SSL is not enabled on the server",
		"server refused TLS connection",
	)
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// quoted returns the text between the first pair of q in s.
func quoted(s string, q byte) string {
	i := strings.IndexByte(s, q)
	if i < 0 {
		return ""
	}
	j := strings.IndexByte(s[i+1:], q)
	if j < 0 {
		return ""
	}
	return s[i+1 : i+1+j]
}

// lastQuoted returns the text between the last pair of q in s.
func lastQuoted(s string, q byte) string {
	j := strings.LastIndexByte(s, q)
	if j <= 0 {
		return ""
	}
	i := strings.LastIndexByte(s[:j], q)
	if i < 0 {
		return ""
	}
	return s[i+1 : j]
}

// after returns the text following prefix in s, cut at the first of the
// given terminators.
func after(s, prefix string, terminators ...string) (string, bool) {
	i := strings.Index(s, prefix)
	if i < 0 {
		return "", false
	}
	s = s[i+len(prefix):]
	for _, t := range terminators {
		if j := strings.Index(s, t); j >= 0 {
			s = s[:j]
		}
	}
	return s, true
}

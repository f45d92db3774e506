package connector

import (
	"context"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
)

// Transaction is an open transaction on a Connection. Every method fails
// with sqlweave.ErrTxDone once the transaction is committed or rolled back.
type Transaction struct {
	conn *Connection
	done bool
}

var _ Queryable = (*Transaction)(nil)

// Commit commits the transaction.
func (tx *Transaction) Commit(ctx context.Context) error {
	return tx.finish(ctx, "COMMIT")
}

// Rollback aborts the transaction.
func (tx *Transaction) Rollback(ctx context.Context) error {
	return tx.finish(ctx, "ROLLBACK")
}

func (tx *Transaction) finish(ctx context.Context, cmd string) error {
	if tx.done {
		return sqlweave.ErrTxDone
	}
	tx.done = true
	tx.conn.tx = nil
	return tx.conn.RawCmd(ctx, cmd)
}

func (tx *Transaction) check() error {
	if tx.done {
		return sqlweave.ErrTxDone
	}
	return nil
}

// Query implements the Queryable interface.
func (tx *Transaction) Query(ctx context.Context, q ast.Query) (*ResultSet, error) {
	if err := tx.check(); err != nil {
		return nil, err
	}
	return tx.conn.Query(ctx, q)
}

// Execute implements the Queryable interface.
func (tx *Transaction) Execute(ctx context.Context, q ast.Query) (uint64, error) {
	if err := tx.check(); err != nil {
		return 0, err
	}
	return tx.conn.Execute(ctx, q)
}

// QueryRaw implements the Queryable interface.
func (tx *Transaction) QueryRaw(ctx context.Context, sql string, params []ast.Value) (*ResultSet, error) {
	if err := tx.check(); err != nil {
		return nil, err
	}
	return tx.conn.QueryRaw(ctx, sql, params)
}

// ExecuteRaw implements the Queryable interface.
func (tx *Transaction) ExecuteRaw(ctx context.Context, sql string, params []ast.Value) (uint64, error) {
	if err := tx.check(); err != nil {
		return 0, err
	}
	return tx.conn.ExecuteRaw(ctx, sql, params)
}

// RawCmd implements the Queryable interface.
func (tx *Transaction) RawCmd(ctx context.Context, cmd string) error {
	if err := tx.check(); err != nil {
		return err
	}
	return tx.conn.RawCmd(ctx, cmd)
}

// Version implements the Queryable interface.
func (tx *Transaction) Version(ctx context.Context) (string, bool, error) {
	if err := tx.check(); err != nil {
		return "", false, err
	}
	return tx.conn.Version(ctx)
}

// Select implements the Queryable interface.
func (tx *Transaction) Select(ctx context.Context, q *ast.Select) (*ResultSet, error) {
	if err := tx.check(); err != nil {
		return nil, err
	}
	return tx.conn.Select(ctx, q)
}

// Insert implements the Queryable interface.
func (tx *Transaction) Insert(ctx context.Context, q *ast.Insert) (*ResultSet, error) {
	if err := tx.check(); err != nil {
		return nil, err
	}
	return tx.conn.Insert(ctx, q)
}

// Update implements the Queryable interface.
func (tx *Transaction) Update(ctx context.Context, q *ast.Update) (uint64, error) {
	if err := tx.check(); err != nil {
		return 0, err
	}
	return tx.conn.Update(ctx, q)
}

// Delete implements the Queryable interface.
func (tx *Transaction) Delete(ctx context.Context, q *ast.Delete) (uint64, error) {
	if err := tx.check(); err != nil {
		return 0, err
	}
	return tx.conn.Delete(ctx, q)
}

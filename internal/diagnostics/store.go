package diagnostics

import (
	"context"
	"database/sql"
	"log/slog"
)

// Store wraps the BaseDB with transaction support and the diagnostics audit
// methods. It provides the TransactionExecutor for automatic retry on
// serialization errors.
type Store struct {
	*BaseDB

	txExecutor *TransactionExecutor[*Queries]

	log *slog.Logger
}

// NewStore creates a new Store instance wrapping the given database
// connection.
func NewStore(db *sql.DB) *Store {
	return NewStoreWithLogger(db, slog.Default())
}

// NewStoreWithLogger creates a new Store instance with a custom logger.
func NewStoreWithLogger(db *sql.DB, log *slog.Logger) *Store {
	baseDB := NewBaseDB(db)

	createQuery := func(tx *sql.Tx) *Queries {
		return New(tx)
	}

	return &Store{
		BaseDB: baseDB,
		txExecutor: NewTransactionExecutor(
			baseDB, createQuery, log,
		),
		log: log,
	}
}

// Queries returns the underlying Queries for direct, non-transactional
// access.
func (s *Store) Queries() *Queries {
	return s.BaseDB.Queries
}

// ExecTx executes the given function within a database transaction with
// automatic retry on serialization errors. This is the preferred method for
// transactional operations.
func (s *Store) ExecTx(ctx context.Context, txOptions TxOptions,
	txBody func(*Queries) error,
) error {
	return s.txExecutor.ExecTx(ctx, txOptions, txBody)
}

// TxFunc is the function signature for transaction callbacks. The callback
// receives a Queries instance bound to the transaction.
type TxFunc func(ctx context.Context, q *Queries) error

// WithTx executes the given function within a database transaction with
// automatic retry on serialization errors. If the function returns an
// error, the transaction is rolled back. Otherwise, it is committed.
func (s *Store) WithTx(ctx context.Context, fn TxFunc) error {
	return s.ExecTx(ctx, WriteTxOption(), func(q *Queries) error {
		return fn(ctx, q)
	})
}

// WithReadTx executes the given function within a read-only database
// transaction.
func (s *Store) WithReadTx(ctx context.Context, fn TxFunc) error {
	return s.ExecTx(ctx, ReadTxOption(), func(q *Queries) error {
		return fn(ctx, q)
	})
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.BaseDB.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.BaseDB.DB
}

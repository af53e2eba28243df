package diagnostics

import (
	"context"
	"database/sql"
	"time"
)

// DefaultStoreTimeout is the default timeout used for any interaction with
// the diagnostics store.
var DefaultStoreTimeout = time.Second * 10

const (
	// DefaultNumTxRetries is the default number of times we'll retry a
	// transaction if it fails with an error that permits transaction
	// repetition.
	DefaultNumTxRetries = 10

	// DefaultInitialRetryDelay is the default initial delay between
	// retries. This will be used to generate a random delay between -50%
	// and +50% of this value. The retry will be doubled after each
	// attempt until we reach DefaultMaxRetryDelay.
	DefaultInitialRetryDelay = time.Millisecond * 40

	// DefaultMaxRetryDelay is the default maximum delay between retries.
	DefaultMaxRetryDelay = time.Second * 3
)

// TxOptions represents a set of options one can use to control what type of
// database transaction is created. Transaction can either be read or write.
type TxOptions interface {
	// ReadOnly returns true if the transaction should be read-only.
	ReadOnly() bool
}

// BaseTxOptions defines the set of db txn options the database understands.
type BaseTxOptions struct {
	readOnly bool
}

// ReadOnly returns true if the transaction should be read only.
func (a *BaseTxOptions) ReadOnly() bool {
	return a.readOnly
}

// ReadTxOption returns a TxOptions that indicates a read-only transaction.
func ReadTxOption() *BaseTxOptions {
	return &BaseTxOptions{readOnly: true}
}

// WriteTxOption returns a TxOptions that indicates a write transaction.
func WriteTxOption() *BaseTxOptions {
	return &BaseTxOptions{readOnly: false}
}

// QueryCreator is a generic function used to create a Queries instance bound
// to a single database transaction.
type QueryCreator[Q any] func(*sql.Tx) Q

// BatchedQuerier is a generic interface that allows callers to create a new
// database transaction given a TxOptions.
type BatchedQuerier interface {
	// BeginTx creates a new database transaction given the set of
	// transaction options.
	BeginTx(ctx context.Context, options TxOptions) (*sql.Tx, error)
}

// BaseDB is the base database struct that each implementation embeds to gain
// common functionality.
type BaseDB struct {
	*sql.DB

	*Queries
}

// NewBaseDB creates a new BaseDB instance from a sql.DB connection.
func NewBaseDB(db *sql.DB) *BaseDB {
	return &BaseDB{
		DB:      db,
		Queries: New(db),
	}
}

// BeginTx wraps the normal sql specific BeginTx method with the TxOptions
// interface.
func (s *BaseDB) BeginTx(ctx context.Context, opts TxOptions) (*sql.Tx, error) {
	sqlOptions := sql.TxOptions{ReadOnly: opts.ReadOnly()}
	return s.DB.BeginTx(ctx, &sqlOptions)
}

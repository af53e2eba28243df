package diagnostics

import (
	"context"
	"log/slog"
	"math"
	prand "math/rand"
	"time"
)

// txExecutorOptions is a struct that holds the options for the transaction
// executor. This can be used to do things like retry a transaction due to an
// error a certain amount of times.
type txExecutorOptions struct {
	numRetries        int
	initialRetryDelay time.Duration
	maxRetryDelay     time.Duration
}

// defaultTxExecutorOptions returns the default options for the transaction
// executor.
func defaultTxExecutorOptions() *txExecutorOptions {
	return &txExecutorOptions{
		numRetries:        DefaultNumTxRetries,
		initialRetryDelay: DefaultInitialRetryDelay,
		maxRetryDelay:     DefaultMaxRetryDelay,
	}
}

// randRetryDelay returns a random retry delay between -50% and +50% of the
// configured delay that is doubled for each attempt and capped at a max
// value.
func (t *txExecutorOptions) randRetryDelay(attempt int) time.Duration {
	halfDelay := t.initialRetryDelay / 2
	randDelay := prand.Int63n(int64(t.initialRetryDelay)) //nolint:gosec

	initialDelay := halfDelay + time.Duration(randDelay)

	if attempt == 0 {
		return initialDelay
	}

	factor := time.Duration(math.Pow(2, math.Min(float64(attempt), 32)))
	//nolint:durationcheck
	actualDelay := initialDelay * factor

	if actualDelay > t.maxRetryDelay {
		return t.maxRetryDelay
	}

	return actualDelay
}

// TxExecutorOption is a functional option that allows us to pass in optional
// arguments when creating the executor.
type TxExecutorOption func(*txExecutorOptions)

// WithTxRetries specifies the number of times a transaction should be
// retried if it fails with a repeatable error.
func WithTxRetries(numRetries int) TxExecutorOption {
	return func(o *txExecutorOptions) {
		o.numRetries = numRetries
	}
}

// WithTxRetryDelay specifies the delay to wait before a transaction is
// retried.
func WithTxRetryDelay(delay time.Duration) TxExecutorOption {
	return func(o *txExecutorOptions) {
		o.initialRetryDelay = delay
	}
}

// TransactionExecutor abstracts away the type of query a caller needs to run
// under a database transaction, and the set of options for that transaction.
type TransactionExecutor[Query any] struct {
	BatchedQuerier

	createQuery QueryCreator[Query]

	opts *txExecutorOptions

	log *slog.Logger
}

// NewTransactionExecutor creates a new instance of a TransactionExecutor
// given a query creator function and a concrete type for the kind of
// transactions it understands.
func NewTransactionExecutor[Querier any](db BatchedQuerier,
	createQuery QueryCreator[Querier], log *slog.Logger,
	opts ...TxExecutorOption,
) *TransactionExecutor[Querier] {
	txOpts := defaultTxExecutorOptions()
	for _, optFunc := range opts {
		optFunc(txOpts)
	}

	return &TransactionExecutor[Querier]{
		BatchedQuerier: db,
		createQuery:    createQuery,
		opts:           txOpts,
		log:            log,
	}
}

// ExecTx wraps txBody to abstract the creation and commit of a db
// transaction. The db transaction is embedded in a Query that txBody needs
// to use when executing each one of the statements that need to be applied
// atomically.
func (t *TransactionExecutor[Q]) ExecTx(ctx context.Context,
	txOptions TxOptions, txBody func(Q) error,
) error {
	waitBeforeRetry := func(attemptNumber int) {
		retryDelay := t.opts.randRetryDelay(attemptNumber)

		t.log.DebugContext(
			ctx,
			"Retrying transaction due to tx serialization or "+
				"deadlock error",
			"attempt_number", attemptNumber,
			"delay", retryDelay,
		)

		time.Sleep(retryDelay)
	}

	for i := 0; i < t.opts.numRetries; i++ {
		tx, err := t.BeginTx(ctx, txOptions)
		if err != nil {
			dbErr := MapSQLError(err)
			if IsSerializationOrDeadlockError(dbErr) {
				waitBeforeRetry(i)
				continue
			}

			return dbErr
		}

		defer func() {
			_ = tx.Rollback()
		}()

		if err := txBody(t.createQuery(tx)); err != nil {
			dbErr := MapSQLError(err)
			if IsSerializationOrDeadlockError(dbErr) {
				_ = tx.Rollback()
				waitBeforeRetry(i)
				continue
			}

			return dbErr
		}

		if err = tx.Commit(); err != nil {
			dbErr := MapSQLError(err)
			if IsSerializationOrDeadlockError(dbErr) {
				_ = tx.Rollback()
				waitBeforeRetry(i)
				continue
			}

			return dbErr
		}

		return nil
	}

	return ErrRetriesExceeded
}

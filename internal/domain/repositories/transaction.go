package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// ExecTx called with a context that already carries a transaction joins it
// instead of opening a nested one, so services can compose.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

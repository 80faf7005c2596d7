package repositories

import "context"

// TxFn is the unit of work run inside a transaction. The context it receives
// carries the transaction; repositories route their queries through it.
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work atomically. Version commits and
// lock transitions depend on it: read-then-write sequences under the
// document row lock must land or roll back as one.
type TransactionManager interface {
	// ExecTx runs fn inside a transaction, committing on nil and rolling
	// back on error.
	ExecTx(ctx context.Context, fn TxFn) error
}

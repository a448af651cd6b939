package port

import "context"

// Locker serializes ledger mutations per product across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

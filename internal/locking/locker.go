// Package locking serializes mutations of a single ticket, appointment or
// customer across request handlers and service instances.
package locking

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a key stays held past the wait budget.
var ErrLockTimeout = errors.New("lock wait timed out")

// Locker acquires an exclusive lock for key. The returned func releases it and
// is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Key builds a lock key for one entity.
func Key(kind, id string) string {
	return kind + ":" + id
}

// Package lock serializes critical sections, either inside one process or
// across processes sharing a Redis instance.
package lock

import (
	"context"
	"errors"
)

// ErrNotHeld is returned by an Unlock whose lock expired or was taken over.
var ErrNotHeld = errors.New("platform/lock: lock not held")

// Unlock releases a lock obtained from Acquire.
type Unlock func(ctx context.Context) error

// Locker hands out an exclusive lock. Acquire blocks until the lock is
// available or ctx is done.
type Locker interface {
	Acquire(ctx context.Context) (Unlock, error)
}

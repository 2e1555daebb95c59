package lock

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Locker.
type Memory struct {
	sem chan struct{}
}

// NewMemory constructs an unlocked Memory locker.
func NewMemory() *Memory {
	return &Memory{sem: make(chan struct{}, 1)}
}

// Acquire implements Locker.
func (m *Memory) Acquire(ctx context.Context) (Unlock, error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("platform/lock: acquire: %w", ctx.Err())
	}
	var once sync.Once
	return func(context.Context) error {
		released := false
		once.Do(func() {
			<-m.sem
			released = true
		})
		if !released {
			return ErrNotHeld
		}
		return nil
	}, nil
}

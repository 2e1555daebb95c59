package users

import (
	"context"
	"time"
)

// Store loads and saves the whole user collection. Implementations never
// expose a partially written collection to readers.
type Store interface {
	ReadAll(ctx context.Context) ([]User, error)
	WriteAll(ctx context.Context, users []User) error
}

// StoreObserver records the outcome of store operations.
type StoreObserver interface {
	ObserveStore(op string, elapsed time.Duration, err error)
}

type observedStore struct {
	next     Store
	observer StoreObserver
}

// Observe wraps store so every call is reported to observer.
func Observe(store Store, observer StoreObserver) Store {
	if observer == nil {
		return store
	}
	return &observedStore{next: store, observer: observer}
}

func (s *observedStore) ReadAll(ctx context.Context) ([]User, error) {
	start := time.Now()
	users, err := s.next.ReadAll(ctx)
	s.observer.ObserveStore("read_all", time.Since(start), err)
	return users, err
}

func (s *observedStore) WriteAll(ctx context.Context, users []User) error {
	start := time.Now()
	err := s.next.WriteAll(ctx, users)
	s.observer.ObserveStore("write_all", time.Since(start), err)
	return err
}

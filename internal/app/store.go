package app

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/userapi/internal/platform/db"
	"github.com/odyssey-erp/userapi/internal/platform/lock"
	"github.com/odyssey-erp/userapi/internal/users"
)

// CloseFunc releases a resource opened at startup.
type CloseFunc func() error

func noopClose() error { return nil }

// OpenStore builds the user store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *Config) (users.Store, CloseFunc, error) {
	switch cfg.StoreDriver {
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		store, err := users.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, func() error { pool.Close(); return nil }, nil
	case StoreSQLite:
		store, err := users.OpenSQLiteStore(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StoreFile:
		return users.NewFileStore(cfg.DataFile), noopClose, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
	}
}

// OpenLocker builds the write lock selected by LOCK_DRIVER.
func OpenLocker(ctx context.Context, cfg *Config) (lock.Locker, CloseFunc, error) {
	switch cfg.LockDriver {
	case LockRedis:
		client, err := lock.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		locker := lock.NewRedis(client, lock.RedisOptions{
			Key:   cfg.LockKey,
			TTL:   cfg.LockTTL,
			Retry: cfg.LockRetry,
		})
		return locker, client.Close, nil
	case LockMemory:
		return lock.NewMemory(), noopClose, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown lock driver %q", cfg.LockDriver)
	}
}

package users

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS users (
	id       INTEGER PRIMARY KEY,
	position INTEGER NOT NULL,
	name     TEXT    NOT NULL,
	age      INTEGER NOT NULL,
	email    TEXT    NOT NULL UNIQUE
)`

// rows per INSERT; keeps bound parameters under SQLite's limit
const sqliteInsertBatch = 100

// SQLiteStore keeps the collection in a SQLite table.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLiteStore opens dsn and ensures the users table exists.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	conn, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrStoreIO, err)
	}
	// a single writer connection avoids SQLITE_BUSY between our own goroutines
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: create schema: %w", ErrStoreIO, err)
	}
	return &SQLiteStore{db: conn}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReadAll returns users in insertion order.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]User, error) {
	query, args, err := sq.Select("id", "name", "age", "email").From("users").OrderBy("position").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %w", ErrStoreIO, err)
	}
	users := []User{}
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("%w: select users: %w", ErrStoreIO, err)
	}
	return users, nil
}

// WriteAll replaces the table contents in one transaction.
func (s *SQLiteStore) WriteAll(ctx context.Context, users []User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", ErrStoreIO, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := sq.Delete("users").ToSql()
	if err != nil {
		return fmt.Errorf("%w: build delete: %w", ErrStoreIO, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: clear users: %w", ErrStoreIO, err)
	}

	for start := 0; start < len(users); start += sqliteInsertBatch {
		end := min(start+sqliteInsertBatch, len(users))
		insert := sq.Insert("users").Columns(userColumns...)
		for i := start; i < end; i++ {
			u := users[i]
			insert = insert.Values(u.ID, i, u.Name, u.Age, u.Email)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("%w: build insert: %w", ErrStoreIO, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insert users: %w", ErrStoreIO, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStoreIO, err)
	}
	return nil
}

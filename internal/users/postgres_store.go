package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/userapi/internal/platform/db"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS users (
	id       BIGINT PRIMARY KEY,
	position BIGINT NOT NULL,
	name     TEXT   NOT NULL,
	age      BIGINT NOT NULL,
	email    TEXT   NOT NULL UNIQUE
)`

var userColumns = []string{"id", "position", "name", "age", "email"}

// PostgresStore keeps the collection in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore ensures the users table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("%w: create schema: %w", ErrStoreIO, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// ReadAll returns users in insertion order.
func (s *PostgresStore) ReadAll(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, age, email FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query users: %w", ErrStoreIO, err)
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Age, &user.Email); err != nil {
			return nil, fmt.Errorf("%w: scan user: %w", ErrStoreParse, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate users: %w", ErrStoreIO, err)
	}
	return users, nil
}

// WriteAll replaces the table contents in one transaction.
func (s *PostgresStore) WriteAll(ctx context.Context, users []User) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
			return err
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"users"}, userColumns, pgx.CopyFromSlice(len(users), func(i int) ([]any, error) {
			u := users[i]
			return []any{int64(u.ID), int64(i), u.Name, int64(u.Age), u.Email}, nil
		}))
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: replace users: %w", ErrStoreIO, err)
	}
	return nil
}

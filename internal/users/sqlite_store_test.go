package users

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreEmpty(t *testing.T) {
	store := openTestSQLite(t)

	users, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestSQLiteStoreReplacesCollection(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	require.NoError(t, store.WriteAll(ctx, []User{
		{ID: 1, Name: "Ana", Age: 30, Email: "a@x.com"},
		{ID: 2, Name: "Bo", Age: 22, Email: "b@x.com"},
	}))
	want := []User{
		{ID: 2, Name: "Bo", Age: 23, Email: "b@x.com"},
		{ID: 5, Name: "Eve", Age: 51, Email: "e@x.com"},
	}
	require.NoError(t, store.WriteAll(ctx, want))

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStoreBatchesLargeCollections(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	want := make([]User, 0, 250)
	for i := 250; i > 0; i-- {
		want = append(want, User{ID: i, Name: fmt.Sprintf("user-%d", i), Age: i % 90, Email: fmt.Sprintf("u%d@x.com", i)})
	}
	require.NoError(t, store.WriteAll(ctx, want))

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStoreRejectsDuplicateEmailAtomically(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)
	original := []User{{ID: 1, Name: "Ana", Age: 30, Email: "a@x.com"}}
	require.NoError(t, store.WriteAll(ctx, original))

	err := store.WriteAll(ctx, []User{
		{ID: 1, Name: "Ana", Age: 30, Email: "a@x.com"},
		{ID: 2, Name: "Dup", Age: 30, Email: "a@x.com"},
	})
	require.ErrorIs(t, err, ErrStoreIO)

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/asset-maintenance/internal/database"
)

// New returns a private, migrated in-memory database closed at test end.
func New(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
	return db
}

// Exec runs a statement and fails the test on error.
func Exec(t testing.TB, db *sql.DB, q string, args ...any) sql.Result {
	t.Helper()
	res, err := db.Exec(q, args...)
	require.NoError(t, err)
	return res
}

// InsertUser creates a user row and returns its id.
func InsertUser(t testing.TB, db *sql.DB, email string) uint64 {
	t.Helper()
	res := Exec(t, db, "INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)", "Test", email, "x")
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// InsertAsset creates an active asset owned by userID and returns its id.
func InsertAsset(t testing.TB, db *sql.DB, userID uint64, name string) uint64 {
	t.Helper()
	res := Exec(t, db, "INSERT INTO assets (user_id, name) VALUES (?, ?)", userID, name)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// Count returns SELECT COUNT(*) of the given query tail.
func Count(t testing.TB, db *sql.DB, q string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) "+q, args...).Scan(&n))
	return n
}

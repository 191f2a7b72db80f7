package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLiteIsRepeatable(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, DriverSQLite))
	require.NoError(t, Migrate(ctx, db, DriverSQLite))

	for _, table := range []string{"users", "refresh_tokens", "assets", "maintenance_types", "maintenance_records", "maintenance_schedules"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestSQLiteEnforcesScheduleConstraints(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db, DriverSQLite))

	_, err = db.Exec("INSERT INTO users (name, email, password_hash) VALUES ('a', 'a@x.io', 'h')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO assets (user_id, name) VALUES (1, 'pump')")
	require.NoError(t, err)

	ins := "INSERT INTO maintenance_schedules (asset_id, scheduled_date, frequency_type, frequency_value) VALUES (?, '2024-01-01', ?, ?)"
	_, err = db.Exec(ins, 1, "days", 0)
	assert.Error(t, err, "frequency_value must be positive")
	_, err = db.Exec(ins, 1, "fortnights", 1)
	assert.Error(t, err, "unknown frequency type")
	_, err = db.Exec(ins, 99, "days", 1)
	assert.Error(t, err, "asset must exist")
	_, err = db.Exec(ins, 1, "days", 1)
	assert.NoError(t, err)

	_, err = db.Exec("DELETE FROM assets WHERE id = 1")
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM maintenance_schedules").Scan(&n))
	assert.Zero(t, n, "schedules go with their asset")
}

func TestSchemaUnknownDriver(t *testing.T) {
	_, err := Schema("postgres")
	assert.Error(t, err)
	stmts, err := Schema(DriverMySQL)
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)
}

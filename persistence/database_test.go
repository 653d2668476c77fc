package persistence_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-school/persistence"
)

func TestNormalizeDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: persistence.DriverSQLite},
		{in: "sqlite3", want: persistence.DriverSQLite},
		{in: "SQLite", want: persistence.DriverSQLite},
		{in: "postgresql", want: persistence.DriverPostgres},
		{in: "pgx", want: persistence.DriverPostgres},
		{in: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := persistence.NormalizeDriver(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := persistence.Open(ctx, persistence.Options{
		Driver: "sqlite",
		DSN:    persistence.MemoryDSN(uuid.NewString()),
	})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, persistence.Migrate(ctx, db))
	// running twice is a no-op
	require.NoError(t, persistence.Migrate(ctx, db))

	version, err := persistence.MigrationVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	for _, table := range []string{"users", "teachers", "courses", "students", "course_students"} {
		var count int
		err := db.NewSelect().TableExpr(table).ColumnExpr("count(*)").Scan(ctx, &count)
		require.NoError(t, err, table)
		assert.Zero(t, count, table)
	}

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	require.NoError(t, persistence.Rollback(ctx, db))
	version, err = persistence.MigrationVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestMigrationsEmbedded(t *testing.T) {
	fsys := persistence.GetMigrationsFS()

	for _, dir := range []string{"sqlite", "postgres"} {
		entries, err := fsys.ReadDir("data/sql/migrations/" + dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2, dir)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := persistence.Open(context.Background(), persistence.Options{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()

	first, err := persistence.OpenMemory(ctx)
	require.NoError(t, err)
	defer first.Close()

	second, err := persistence.OpenMemory(ctx)
	require.NoError(t, err)
	defer second.Close()

	_, err = first.ExecContext(ctx, `INSERT INTO students (id, name, email) VALUES (?, ?, ?)`,
		uuid.NewString(), "Ada", "ada@example.com")
	require.NoError(t, err)

	var count int
	require.NoError(t, second.QueryRowContext(ctx, "SELECT count(*) FROM students").Scan(&count))
	assert.Zero(t, count, "memory databases must be isolated")
}

package persistence

import (
	"context"
	"embed"
	"path"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

const migrationsRoot = "data/sql/migrations"

// goose keeps its dialect and filesystem in package state
var gooseMu sync.Mutex

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationsDir returns the embedded directory holding the migrations for
// the dialect of db
func MigrationsDir(db *bun.DB) (string, string) {
	if db.Dialect().Name() == dialect.PG {
		return path.Join(migrationsRoot, "postgres"), "postgres"
	}
	return path.Join(migrationsRoot, "sqlite"), "sqlite3"
}

// Migrate applies every pending migration
func Migrate(ctx context.Context, db *bun.DB) error {
	dir, gooseDialect := MigrationsDir(db)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to set migration dialect")
	}

	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to apply migrations").
			WithMetadata(map[string]any{"dir": dir})
	}

	return nil
}

// Rollback reverts the most recent migration
func Rollback(ctx context.Context, db *bun.DB) error {
	dir, gooseDialect := MigrationsDir(db)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to set migration dialect")
	}

	if err := goose.DownContext(ctx, db.DB, dir); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to roll back migration")
	}

	return nil
}

// MigrationVersion returns the current schema version
func MigrationVersion(ctx context.Context, db *bun.DB) (int64, error) {
	_, gooseDialect := MigrationsDir(db)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(gooseDialect); err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to set migration dialect")
	}

	return goose.GetDBVersionContext(ctx, db.DB)
}

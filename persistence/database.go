package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection options
type Config interface {
	GetDriver() string
	GetDSN() string
}

// Options is a plain Config implementation
type Options struct {
	Driver string
	DSN    string
}

func (o Options) GetDriver() string { return o.Driver }
func (o Options) GetDSN() string    { return o.DSN }

// NormalizeDriver maps driver aliases to DriverSQLite or DriverPostgres
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx", "pg":
		return DriverPostgres, nil
	default:
		return "", errors.New("unsupported database driver", errors.CategoryBadInput).
			WithTextCode("UNSUPPORTED_DRIVER").
			WithMetadata(map[string]any{"driver": driver})
	}
}

// Open connects to the configured database and returns a bun handle with
// the matching dialect
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driver, err := NormalizeDriver(cfg.GetDriver())
	if err != nil {
		return nil, err
	}

	dsn := cfg.GetDSN()
	var db *bun.DB

	switch driver {
	case DriverPostgres:
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open postgres database")
		}
		sqldb.SetMaxOpenConns(10)
		sqldb.SetConnMaxIdleTime(5 * time.Minute)
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
		}
		// sqlite serializes writers and in memory databases live per connection
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to connect to database").
			WithMetadata(map[string]any{"driver": driver})
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to enable sqlite foreign keys")
		}
	}

	slog.Default().Debug("database connected", "module", "persistence", "driver", driver)

	return db, nil
}

// MemoryDSN returns the DSN of a private shared-cache in memory sqlite database
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// OpenMemory opens an isolated in memory sqlite database with every
// migration applied
func OpenMemory(ctx context.Context) (*bun.DB, error) {
	db, err := Open(ctx, Options{
		Driver: DriverSQLite,
		DSN:    MemoryDSN(uuid.NewString()),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrations embed.FS

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB opens a connection pool for driver and verifies it with a ping.
func NewDB(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch driver {
	case DriverMySQL:
		cfg, perr := mysql.ParseDSN(dsn)
		if perr != nil {
			return nil, fmt.Errorf("parsing mysql dsn: %w", perr)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.ClientFoundRows = true
		db, err = sqlx.Open("mysql", cfg.FormatDSN())
	case DriverSQLite:
		db, err = sqlx.Open("sqlite", dsn)
	case DriverPostgres:
		db, err = sqlx.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One connection keeps :memory: databases alive and serialises writers.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}

	return db, nil
}

// Migrate applies every pending embedded migration for the db's dialect.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch db.DriverName() {
	case "mysql":
		dialect, dir = goose.DialectMySQL, "migrations/mysql"
	case "sqlite":
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case "pgx":
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Debug("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gchang12/aenir/internal/db/migrations"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// RunMigrations opens dsn with the given driver and applies every
// pending migration.
func RunMigrations(ctx context.Context, driver, dsn string) error {
	sqlName, dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}
	sqlDB, err := sql.Open(sqlName, dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return Migrate(ctx, sqlDB, dialect)
}

// Migrate applies every pending migration on an open handle.
func Migrate(ctx context.Context, sqlDB *sql.DB, dialect goose.Dialect) error {
	p, err := goose.NewProvider(dialect, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

func dialectFor(driver string) (sqlName string, dialect goose.Dialect, err error) {
	switch driver {
	case DriverPostgres:
		return "pgx", goose.DialectPostgres, nil
	case DriverSQLite:
		return "sqlite", goose.DialectSQLite3, nil
	default:
		return "", "", fmt.Errorf("unsupported driver %q", driver)
	}
}

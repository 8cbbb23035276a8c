package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"catalog-service/internal/logger"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

var gooseDialects = map[string]string{
	DriverSQLite:   "sqlite3",
	DriverPostgres: "postgres",
}

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration for the database's driver.
func Migrate(ctx context.Context, d *DB) error {
	dialect, ok := gooseDialects[d.Driver]
	if !ok {
		return fmt.Errorf("db: no migrations for driver %q", d.Driver)
	}

	dir, err := fs.Sub(migrations, "migrations/"+d.Driver)
	if err != nil {
		return fmt.Errorf("db: migrations dir: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(dir)
	goose.SetLogger(logger.Default())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("db: goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, d.DB, "."); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}

	logger.Info("database migrated", map[string]any{
		"driver": d.Driver,
	})

	return nil
}

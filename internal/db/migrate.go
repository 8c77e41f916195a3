package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/Spok95/school-records/internal/db/migrations"
)

// Migrate накатывает встроенные миграции до последней версии.
func Migrate(ctx context.Context, database *sql.DB, logger goose.Logger) error {
	return RunMigrations(ctx, database, logger, "up")
}

// RunMigrations executes a goose command (up, down, status, redo, version, ...)
// against the embedded migration set.
func RunMigrations(ctx context.Context, database *sql.DB, logger goose.Logger, command string, args ...string) error {
	goose.SetBaseFS(migrations.FS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, database, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

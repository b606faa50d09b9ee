package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
)

// migrationsDir is where the SQL migrations live relative to the repository
// root, which is also the expected working directory of the server.
const migrationsDir = "migrations"

// migrationTableName keeps the goose bookkeeping table name stable across
// tooling and tests.
const migrationTableName = "schema_migrations"

// runMigrations applies any pending SQL migrations before the server starts.
func runMigrations(db *sql.DB) error {
	dir, err := resolveMigrationsDir()
	if err != nil {
		return err
	}

	goose.SetLogger(&slogGooseLogger{})
	goose.SetTableName(migrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// resolveMigrationsDir finds the migrations directory from the working
// directory, walking up so the server also starts from cmd/server during
// development.
func resolveMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, migrationsDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory %q not found", migrationsDir)
		}
		dir = parent
	}
}

// slogGooseLogger forwards goose output to the structured logger.
type slogGooseLogger struct{}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

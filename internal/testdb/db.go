// Package testdb provides database helpers for integration tests: opening a
// connection from the environment, applying migrations, and running each test
// inside a rolled-back transaction.
package testdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
)

// IsIntegrationTestEnvironment reports whether a test database is available.
// Integration tests skip themselves when it is not.
func IsIntegrationTestEnvironment() bool {
	return len(GetTestDatabaseURL()) > 0
}

// GetTestDatabaseURL returns the connection string for the test database.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("SNAPLEAD_TEST_DB_URL")
}

// GetTestDBWithT opens the test database, applies migrations, and registers
// cleanup. The calling test is skipped when no test database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("no test database configured (set DATABASE_URL or SNAPLEAD_TEST_DB_URL)")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	SetupTestDatabaseSchema(t, db)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// SetupTestDatabaseSchema applies all migrations to the test database.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	migrationsDir, err := findMigrationsDir()
	if err != nil {
		t.Fatalf("failed to locate migrations: %v", err)
	}

	goose.SetLogger(&testGooseLogger{t: t})
	goose.SetTableName("schema_migrations")
	goose.SetBaseFS(os.DirFS(migrationsDir))

	if err := goose.Up(db, "."); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never leak rows into each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	fn(t, tx)
}

// findMigrationsDir walks up from the working directory looking for the
// repository's migrations directory.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found above %s", dir)
		}
		dir = parent
	}
}

// testGooseLogger routes goose output through the test log.
type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...interface{}) {
	l.t.Logf(format, v...)
}

func (l *testGooseLogger) Fatalf(format string, v ...interface{}) {
	l.t.Fatalf(format, v...)
}

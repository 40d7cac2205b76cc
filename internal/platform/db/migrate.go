package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose dialect name and migration directory per driver.
var dialects = map[string]string{
	DriverPostgres: "postgres",
	DriverSQLite:   "sqlite3",
}

func configure(driver string) (string, error) {
	dialect, ok := dialects[driver]
	if !ok {
		return "", fmt.Errorf("migrate: unsupported driver %q", driver)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("migrate: set dialect %q: %w", dialect, err)
	}

	return path.Join("migrations", driver), nil
}

// Migrate applies every pending schema migration for driver.
func Migrate(db *sql.DB, driver string) error {
	if db == nil {
		return errors.New("migrate: DB is nil")
	}

	dir, err := configure(driver)
	if err != nil {
		return err
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migrate: apply %s migrations: %w", driver, err)
	}

	return nil
}

// Version reports the schema version currently applied.
func Version(db *sql.DB, driver string) (int64, error) {
	if db == nil {
		return 0, errors.New("migrate version: DB is nil")
	}

	if _, err := configure(driver); err != nil {
		return 0, err
	}

	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}

	return v, nil
}

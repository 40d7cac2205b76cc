package repositories

import (
	"fmt"
	"package-tracking-service/internal/platform/db"
	"package-tracking-service/internal/ports"
)

// OpenPackageRepository opens the configured store and brings its schema up to date.
// The returned close func releases the connection pool.
func OpenPackageRepository(driver, dsn string) (ports.PackageRepository, func() error, error) {
	var dialect Dialect
	switch driver {
	case db.DriverMemory:
		return NewMemoryPackageRepository(), func() error { return nil }, nil
	case db.DriverPostgres:
		dialect = PostgresDialect
	case db.DriverSQLite:
		dialect = SQLiteDialect
	default:
		return nil, nil, fmt.Errorf("open package repository: unsupported driver %q", driver)
	}

	conn, err := db.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open package repository: %w", err)
	}

	if err := db.Migrate(conn, driver); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open package repository: %w", err)
	}

	return NewSQLPackageRepository(conn, dialect), conn.Close, nil
}

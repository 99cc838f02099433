package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// RunMigrations applies all pending migrations from source (for example
// "file://internal/infrastructure/postgres/migrations") and reports the
// resulting schema version. No pending migrations is not an error.
func RunMigrations(dsn string, source string) (uint, error) {
	m, err := migrate.New(source, dsn)
	if err != nil {
		return 0, fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("postgres: run migrations up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("postgres: read migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("postgres: schema version %d is dirty", version)
	}
	return version, nil
}

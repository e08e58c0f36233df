package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all embedded up migrations to the database at path.
// It migrates over its own connection, which is closed before returning, so
// it must run before Open hands out the shared handle.
func RunMigrations(dbPath string) error {
	m, err := newMigrate(dbPath)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// SchemaVersion reports the applied migration version and whether the last
// migration left the schema dirty.
func SchemaVersion(dbPath string) (uint, bool, error) {
	m, err := newMigrate(dbPath)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// newMigrate hands the driver a connection from Open instead of a URL, so the
// path reaches sqlite exactly as given. Closing the Migrate closes it.
func newMigrate(dbPath string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	db, err := Open(dbPath)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = db.Close()
		_ = src.Close()
		return nil, fmt.Errorf("init migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = driver.Close()
		_ = src.Close()
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

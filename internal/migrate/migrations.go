package migrate

import (
	"embed"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*/*.sql
var migrationsFS embed.FS

// goose keeps dialect and filesystem in package globals.
var mu sync.Mutex

// dialectFor maps a driver name to the goose dialect and its migration directory.
func dialectFor(driver string) (string, string, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return "sqlite3", "sql/sqlite", nil
	case "postgres":
		return "postgres", "sql/postgres", nil
	default:
		return "", "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
}

// Migrate applies embedded migrations in order.
func Migrate(db *sqlx.DB) error {
	dialect, dir, err := dialectFor(db.DriverName())
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db.DB, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Version returns the applied schema version.
func Version(db *sqlx.DB) (int64, error) {
	dialect, _, err := dialectFor(db.DriverName())
	if err != nil {
		return 0, err
	}
	mu.Lock()
	defer mu.Unlock()
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db.DB)
}

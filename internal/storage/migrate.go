package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
)

// Migrate applies the schema to the configured database. Statements are
// idempotent, so running it repeatedly is safe.
func Migrate(ctx context.Context, cfg config.DatabaseConfig) error {
	var db *sql.DB
	var err error
	var provider string

	switch cfg.Provider {
	case "postgres":
		provider = "postgres"
		db, err = sql.Open(driverPostgres, cfg.DSN)
	case "sqlite":
		provider = "sqlite"
		db, err = sql.Open(driverSQLite, cfg.Path+"?_foreign_keys=on")
	default:
		return fmt.Errorf("unsupported database provider: %s", cfg.Provider)
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	for _, stmt := range Schema(provider) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}
	return nil
}

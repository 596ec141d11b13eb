package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/vncsmyrnk/elections/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/elections/internal/config"
)

// Usage: migrations <name>, where name selects one embedded file
// (e.g. "0001_elections.up") or is "all" to apply every up migration.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "a migration name is required.")
		os.Exit(1)
	}
	migrationName := os.Args[1]

	cfg, err := config.Load(os.Getenv("ELECTIONS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database.DSN(), postgres.PoolConfig{MaxOpenConns: 1})
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := apply(ctx, db, migrationName); err != nil {
		logger.Error("migration failed", "event", "elections_migration_failed", "migration", migrationName, "error", err)
		os.Exit(1)
	}

	logger.Info("migration executed successfully", "event", "elections_migration_applied", "migration", migrationName)
}

func apply(ctx context.Context, db *sql.DB, name string) error {
	if name == "all" {
		return postgres.Migrate(ctx, db)
	}
	content, err := postgres.Migration(name)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, content); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}
	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"bookstore/internal/config"
	"bookstore/internal/logger"
	"bookstore/internal/store"

	"github.com/pressly/goose/v3"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Format: cfg.LogFormat, Environment: cfg.Environment, Level: cfg.LogLevel})

	if err := run(context.Background(), cfg, opts, log); err != nil {
		log.Error("migration failed", "command", opts.command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log *slog.Logger) error {
	if opts.command == "create" {
		if err := goose.Create(nil, cfg.MigrationsDir, opts.name, "sql"); err != nil {
			return err
		}
		log.Info("migration created", "name", opts.name, "dir", cfg.MigrationsDir)
		return nil
	}

	gw, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to %s (%s): %w", cfg.Driver, config.RedactDSN(cfg.DSN), err)
	}
	defer gw.Close()

	db, err := store.StdDB(gw)
	if err != nil {
		return err
	}
	dialect, err := store.Dialect(cfg.Driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return migrate(ctx, db, opts.command, cfg.MigrationsDir, log)
}

func migrate(ctx context.Context, db *sql.DB, command, dir string, log *slog.Logger) error {
	switch command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		log.Info("migration rolled back successfully")
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			return fmt.Errorf("check migration status: %w", err)
		}
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

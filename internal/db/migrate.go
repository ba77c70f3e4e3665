package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/elemcore/internal/db/migrations"
)

func openMigrator(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	return sqlDB, nil
}

// RunMigrations applies every pending migration on the given DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := openMigrator(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	slog.Info("migrations applied", "version", version)
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, dsn string) error {
	sqlDB, err := openMigrator(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.DownContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	return nil
}

// SchemaVersion returns the current goose schema version.
func SchemaVersion(ctx context.Context, dsn string) (int64, error) {
	sqlDB, err := openMigrator(dsn)
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close()

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

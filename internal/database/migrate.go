package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mahectf/ctfboard/internal/database/migrations"
)

// Migrate applies every pending embedded migration.
func (db *DB) Migrate(ctx context.Context) error {
	return db.withSQL(func(conn *sql.DB) error {
		slog.Info("applying migrations")
		if err := goose.UpContext(ctx, conn, "."); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		slog.Info("migrations applied")
		return nil
	})
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	return db.withSQL(func(conn *sql.DB) error {
		if err := goose.DownContext(ctx, conn, "."); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		return nil
	})
}

// MigrationStatus logs applied and pending migrations.
func (db *DB) MigrationStatus(ctx context.Context) error {
	return db.withSQL(func(conn *sql.DB) error {
		if err := goose.StatusContext(ctx, conn, "."); err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}
		return nil
	})
}

// withSQL opens a database/sql handle for goose, which does not speak pgxpool.
func (db *DB) withSQL(fn func(*sql.DB) error) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configuring goose: %w", err)
	}

	conn, err := sql.Open("pgx", db.dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

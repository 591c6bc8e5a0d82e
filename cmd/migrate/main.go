// Command migrate applies or rolls back the embedded database migrations.
//
// Usage: migrate [up|down|status]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/mahectf/ctfboard/internal/database"
)

type migrateConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var cfg migrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := run(context.Background(), cfg.DatabaseURL, cmd); err != nil {
		slog.Error("migration failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, cmd string) error {
	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	switch cmd {
	case "up":
		return db.Migrate(ctx)
	case "down":
		return db.MigrateDown(ctx)
	case "status":
		return db.MigrationStatus(ctx)
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", cmd)
	}
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"backend-socialfeed/internal/config"
	"backend-socialfeed/internal/logger"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

var openDBFn = goose.OpenDBWithDriver

// Migrations exposes the schema files with the migrations directory as root.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate brings the Users, Posts and Follows schema up to date, retrying the
// initial connection until cfg.MigrateTimeout elapses.
func Migrate(ctx context.Context, cfg config.Config, log logger.Logger) error {
	sqlDB, err := openDBFn("pgx", cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("failed to open a connection to the datastore: %w", err)
	}
	defer sqlDB.Close()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.MigrateTimeout
	err = backoff.Retry(func() error {
		return sqlDB.PingContext(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("failed to initialize database connection: %w", err)
	}

	return RunMigrations(ctx, sqlDB, log)
}

func RunMigrations(ctx context.Context, sqlDB *sql.DB, log logger.Logger) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, Migrations())
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration))
	}
	if len(results) == 0 {
		log.Info("schema already up to date")
	}
	return nil
}

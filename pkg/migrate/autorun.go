package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/logger"
)

// AutoRunEnabled reports whether the API applies pending migrations on boot.
// Only the dev environment does, and only with LOJA_AUTO_MIGRATE set.
func AutoRunEnabled(cfg *config.Config) bool {
	return cfg != nil && cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}

// MaybeRunDev applies pending migrations from DefaultDir when AutoRunEnabled.
// The directory is validated first so a malformed file fails before goose touches the schema.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !AutoRunEnabled(cfg) {
		return nil
	}
	if client == nil {
		return fmt.Errorf("auto-migrate: db client is required")
	}
	if err := ValidateDir(DefaultDir); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("auto-migrate: extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "migrations_dir": DefaultDir})
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("auto-migrate: read schema version: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"schema_version": version}), "migrate.auto_applied")
	return nil
}

package migrate

import (
	"context"
	"fmt"

	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/db"
	"github.com/rkdoors/storefront-backend/pkg/db/models"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

// MaybeRunDev migrates the schema at startup when the auto-migrate flag is
// set. Postgres runs the goose migrations in dev only; the SQLite file
// database is always shaped from the gorm models since the SQL targets
// Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})

	if client.Dialect() == db.DialectSQLite {
		logg.Info(ctx, "auto-migrating sqlite schema")
		if err := AutoMigrateModels(ctx, client); err != nil {
			return err
		}
		return nil
	}

	if !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrateModels creates the tables from the gorm models.
func AutoMigrateModels(ctx context.Context, client *db.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	return nil
}

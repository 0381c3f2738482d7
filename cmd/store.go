package cmd

import (
	"context"
	"fmt"

	"drawbot/config"
	"drawbot/database"
	"drawbot/domain/interfaces"
	"drawbot/repository"

	log "github.com/sirupsen/logrus"
)

// openStore opens the configured lottery store. The postgres backend is migrated first.
func openStore(ctx context.Context, cfg *config.Config) (interfaces.LotteryStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		url := cfg.GetDatabaseURL()

		log.Info("Running database migrations...")
		if err := database.MigrateUp(url); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		db, err := database.NewConnection(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")
		return repository.NewPostgresStore(db), nil

	case config.StoreBackendJSON:
		store, err := repository.NewJSONStore(cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open state file: %w", err)
		}
		log.WithField("path", store.Path()).Info("Using JSON state file")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

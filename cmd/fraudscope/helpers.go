package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"fraudscope/internal/api"
	"fraudscope/internal/config"
	"fraudscope/internal/service"
	"fraudscope/internal/storage"
)

// newClient builds the API client from the effective configuration.
func newClient() (*api.Client, error) {
	return api.New(api.Config{
		BaseURL: viper.GetString("backend.url"),
		Timeout: viper.GetDuration("backend.timeout"),
	})
}

// initStorage initializes the run history store with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

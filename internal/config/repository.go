package config

import (
	"fmt"
	"os"

	"focus-tracker/internal/repository/sqlite"
)

// CreateRepository opens the session store described by the configuration,
// creating the database directory when needed.
func CreateRepository(config *Config) (*sqlite.Store, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}

	if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	repo, err := sqlite.NewWithOptions(config.GetDatabasePath(), sqlite.Options{
		QueryTimeout: config.GetQueryTimeout(),
		WriteTimeout: config.GetWriteTimeout(),
		Location:     loc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

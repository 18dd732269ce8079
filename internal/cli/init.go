// Package cli holds the initialization steps shared by the server and
// worker binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"expensex/internal/config"
	"expensex/internal/log"
	"expensex/internal/storage"
)

// Bootstrap loads the .env file, sets up the default logger scoped to
// component and returns the validated configuration. It exits the process
// when the configuration is unusable, there is nothing to fall back to.
func Bootstrap(component string) (*log.Logger, *config.Config) {
	// Ignore a missing .env, it only exists in local development.
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: log.LevelFromEnv(), Component: component})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return logger, cfg
}

// OpenStore opens the SQLite store and exits on failure, logging the path
// so a bad mount is obvious.
func OpenStore(logger *log.Logger, cfg *config.Config) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	return store
}

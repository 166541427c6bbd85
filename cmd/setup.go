package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the configuration file, data directory, and cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.writePlain("✓ Config file created at %s\n", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.config = config
	r.configPath = configPath

	dataDir, err := shared.DataDir()
	if err != nil {
		return err
	}
	r.logger.Info("data directory ready", "path", dataDir)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := repositories.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)

	if config.Credentials.Spotify.ClientID == "" {
		r.writePlainln("Set credentials.spotify.client_id in %s, then run: spx auth login", configPath)
	} else {
		r.writePlainln("Next: spx auth login")
	}

	return nil
}

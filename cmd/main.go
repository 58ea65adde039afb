package main

import (
	"context"
	"os"

	"github.com/kestrelworks/trackset/internal/auth"
	"github.com/kestrelworks/trackset/internal/services"
	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var manager *auth.Manager
	if store, err := auth.NewStore(config.Auth.BundlePath); err == nil {
		manager, err = auth.NewManager(
			store,
			config.Credentials.OAuth.ClientID,
			config.Credentials.OAuth.ClientSecret,
			auth.WithProbe(services.ProbeSession),
		)
		if err != nil {
			logger.Warn("failed to load session bundle", "error", err)
		}
	} else {
		logger.Warn("failed to open session store", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Manager:    manager,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "trackset",
		Usage:    "Turn song descriptions into a YouTube Music playlist",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

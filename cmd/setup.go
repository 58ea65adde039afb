package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
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
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupBrowser imports a browser session from DevTools headers.
//
// Accepts a cURL command, a file containing one, or a raw header block.
// The parsed headers are probed against the live service before being
// persisted as the active session.
func (r *Runner) SetupBrowser(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireManager(); err != nil {
		return err
	}

	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	headersFile := cmd.String("headers-file")

	sources := 0
	for _, s := range []string{curlCmd, curlFile, headersFile} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return fmt.Errorf("%w: one of --curl, --curl-file or --headers-file must be provided", shared.ErrMissingArgument)
	}
	if sources > 1 {
		return fmt.Errorf("%w: --curl, --curl-file and --headers-file are mutually exclusive", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	switch {
	case curlFile != "":
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	case curlCmd != "":
		curlHeaders, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	default:
		data, err := os.ReadFile(headersFile)
		if err != nil {
			return fmt.Errorf("failed to read headers file: %w", err)
		}
		curlHeaders, err = shared.ParseRawHeaders(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse headers: %w", err)
		}
		r.logger.Info("parsed raw headers", "file", headersFile)
	}

	headers := curlHeaders.ToHeaderMap()

	r.logger.Info("probing browser session", "headers", len(headers))
	if err := r.manager.ImportBrowserSession(ctx, headers); err != nil {
		return fmt.Errorf("browser session rejected: %w", err)
	}

	r.writePlain("✓ Browser session imported\n")
	r.writePlain("Run 'trackset resolve \"your song\"' to test it.\n")
	return nil
}

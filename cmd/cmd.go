// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles session lifecycle operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Start the device authorization flow",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Poll until the device is authorized",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the verification URL in a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "complete",
				Usage:  "Check once whether the pending device authorization was approved",
				Action: r.AuthComplete,
			},
			{
				Name:  "status",
				Usage: "Show the active backend and session state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "probe",
						Usage: "Validate the session against the live service",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Discard the persisted session",
				Action: r.AuthLogout,
			},
		},
	}
}

// resolveCommand resolves queries without creating a playlist
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve song descriptions to tracks and print the candidates",
		ArgsUsage: "[query ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "File with one query per line",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the resolution cache",
			},
		},
		Action: r.Resolve,
	}
}

// playlistCommand handles playlist assembly operations
func playlistCommand(r *Runner) *cli.Command {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Aliases:  []string{"t"},
			Usage:    "Playlist title",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
			Usage:   "Playlist description",
		},
		&cli.StringFlag{
			Name:  "privacy",
			Usage: "Playlist privacy (private, unlisted, public)",
			Value: "private",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "File with one entry per line",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write an outcome report (json, csv, markdown, txt)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report file path",
		},
	}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Create playlists from queries or track ids",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Resolve song descriptions and build a playlist from them",
				ArgsUsage: "[query ...]",
				Flags:     commonFlags,
				Action:    r.PlaylistCreate,
			},
			{
				Name:      "create-ids",
				Usage:     "Build a playlist from known track ids",
				ArgsUsage: "[id ...]",
				Flags:     commonFlags,
				Action:    r.PlaylistCreateIDs,
			},
		},
	}
}

// setupCommand handles setup operations for database and browser sessions.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "browser",
				Usage: "Import a browser session from DevTools headers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "headers-file",
						Usage: "Path to file with raw 'Key: Value' header lines",
					},
				},
				Action: r.SetupBrowser,
			},
		},
	}
}

// cacheCommand inspects and clears the resolution cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the resolution cache",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "List cached query resolutions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached resolutions",
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Review resolutions interactively before building the playlist",
		ArgsUsage: "[query ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Playlist title",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "Playlist description",
			},
			&cli.StringFlag{
				Name:  "privacy",
				Usage: "Playlist privacy (private, unlisted, public)",
				Value: "private",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "File with one query per line",
			},
		},
		Action: r.TUI,
	}
}

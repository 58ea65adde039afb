package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/kestrelworks/trackset/internal/tasks"
	"github.com/kestrelworks/trackset/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for reviewing resolutions and
// building the playlist.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	queries, err := collectEntries(cmd)
	if err != nil {
		return err
	}

	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	cache, db, err := r.openCache()
	if err != nil {
		r.logger.Warn("resolution cache unavailable", "error", err)
		cache = nil
	} else if db != nil {
		defer db.Close()
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/trackset-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	resolver := tasks.NewResolver(catalog, r.resolverPolicy(), cache)
	assembler := tasks.NewAssembler(catalog, resolver)

	model := ui.NewModel(ctx, resolver, assembler, ui.BuildRequest{
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		Privacy:     cmd.String("privacy"),
		Queries:     queries,
		Timeout:     time.Duration(r.config.Resolver.TimeoutSeconds) * time.Second,
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

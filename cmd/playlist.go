package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelworks/trackset/internal/formatter"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate resolves song descriptions and builds a playlist from them.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	return r.runAssembly(ctx, cmd, func(ctx context.Context, assembler *tasks.Assembler, entries []string, progress chan tasks.ProgressUpdate) (*models.PlaylistOutcome, error) {
		return assembler.CreateFromQueries(ctx, cmd.String("title"), cmd.String("description"), cmd.String("privacy"), entries, progress)
	})
}

// PlaylistCreateIDs builds a playlist from known track ids, skipping resolution.
func (r *Runner) PlaylistCreateIDs(ctx context.Context, cmd *cli.Command) error {
	return r.runAssembly(ctx, cmd, func(ctx context.Context, assembler *tasks.Assembler, entries []string, progress chan tasks.ProgressUpdate) (*models.PlaylistOutcome, error) {
		return assembler.CreateFromIDs(ctx, cmd.String("title"), cmd.String("description"), cmd.String("privacy"), entries, progress)
	})
}

type assemblyFunc func(ctx context.Context, assembler *tasks.Assembler, entries []string, progress chan tasks.ProgressUpdate) (*models.PlaylistOutcome, error)

// runAssembly wires the catalog, cache and assembler, streams progress lines
// to the output, and renders the outcome.
func (r *Runner) runAssembly(ctx context.Context, cmd *cli.Command, run assemblyFunc) error {
	entries, err := collectEntries(cmd)
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

	resolver := tasks.NewResolver(catalog, r.resolverPolicy(), cache)
	assembler := tasks.NewAssembler(catalog, resolver)

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	ctx, cancel := r.operationContext(ctx)
	defer cancel()

	outcome, runErr := run(ctx, assembler, entries, progress)
	close(progress)
	wg.Wait()

	if outcome != nil {
		r.renderOutcome(outcome)

		if format := cmd.String("report"); format != "" {
			path := cmd.String("output")
			if path == "" {
				path = fmt.Sprintf("%s_report.%s", outcome.PlaylistID, reportExtension(format))
			}
			if err := formatter.WriteOutcomeReport(outcome, format, path); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			r.writePlain("Report written to %s\n", path)
		}
	}

	if runErr != nil {
		return fmt.Errorf("playlist build incomplete: %w", runErr)
	}
	return nil
}

func (r *Runner) renderOutcome(outcome *models.PlaylistOutcome) {
	r.writePlainln("✓ Playlist created: %s", outcome.Title)
	r.writePlain("  URL: %s\n", outcome.PlaylistURL)
	r.writePlain("  Added: %d of %d\n", outcome.TotalAdded, outcome.TotalRequested)

	if len(outcome.Skipped) > 0 {
		r.writePlain("  Skipped:\n")
		for _, skip := range outcome.Skipped {
			r.writePlain("    ✗ %s (%s)\n", skip.Query, skip.Reason)
		}
	}
}

func reportExtension(format string) string {
	switch format {
	case "markdown", "md":
		return "md"
	case "csv":
		return "csv"
	case "txt", "text":
		return "txt"
	default:
		return "json"
	}
}

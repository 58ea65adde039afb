package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/kestrelworks/trackset/internal/tasks"
	"github.com/urfave/cli/v3"
)

// collectEntries gathers queries or ids from the positional arguments and,
// if set, the --file flag (one entry per line, blank lines skipped).
func collectEntries(cmd *cli.Command) ([]string, error) {
	entries := append([]string{}, cmd.Args().Slice()...)

	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read entries file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				entries = append(entries, line)
			}
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no queries given - pass them as arguments or via --file", shared.ErrMissingArgument)
	}

	return entries, nil
}

// Resolve resolves queries and prints the full per-query candidate sets as JSON.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	queries, err := collectEntries(cmd)
	if err != nil {
		return err
	}

	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	var cache tasks.ResolutionCache
	if !cmd.Bool("no-cache") {
		opened, db, err := r.openCache()
		if err != nil {
			r.logger.Warn("resolution cache unavailable", "error", err)
		} else {
			cache = opened
			if db != nil {
				defer db.Close()
			}
		}
	}

	resolver := tasks.NewResolver(catalog, r.resolverPolicy(), cache)

	r.logger.Info("resolving queries", "count", len(queries), "catalog", catalog.Name())

	ctx, cancel := r.operationContext(ctx)
	defer cancel()

	results, err := resolver.Resolve(ctx, queries, nil)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	return r.writeJSON(results, cmd.Bool("pretty"))
}

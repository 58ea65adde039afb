package main

import (
	"context"
	"fmt"

	"github.com/kestrelworks/trackset/internal/repositories"
	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/urfave/cli/v3"
)

// openRepository opens the resolution repository over the configured database.
// The caller must invoke the returned closer.
func (r *Runner) openRepository() (*repositories.ResolutionRepository, func() error, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return repositories.NewResolutionRepository(db), db.Close, nil
}

// cachedEntry is the flat serialization of one cache row for display.
type cachedEntry struct {
	Sequence int    `json:"sequence"`
	Query    string `json:"query"`
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Channel  string `json:"channel"`
}

// CacheShow lists cached query resolutions.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	repo, closer, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closer()

	resolutions, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list cached resolutions: %w", err)
	}

	if cmd.Bool("json") {
		entries := make([]cachedEntry, 0, len(resolutions))
		for _, res := range resolutions {
			candidate := res.Candidate()
			entries = append(entries, cachedEntry{
				Sequence: res.Sequence(),
				Query:    res.Query(),
				VideoID:  candidate.ID,
				Title:    candidate.Title,
				Channel:  candidate.Channel,
			})
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(resolutions) == 0 {
		return r.writePlain("Cache is empty.\n")
	}

	for _, res := range resolutions {
		candidate := res.Candidate()
		r.writePlain("#%d %q → %s (%s, %s)\n",
			res.Sequence(), res.Query(), candidate.ID, candidate.Title, candidate.Channel)
	}
	return r.writePlain("%d cached resolutions\n", len(resolutions))
}

// CacheClear deletes all cached resolutions.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closer, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closer()

	count, err := repo.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("cache cleared", "count", count)
	return r.writePlain("✓ Cleared %d cached resolutions\n", count)
}

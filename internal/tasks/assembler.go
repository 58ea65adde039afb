package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/services"
	"github.com/kestrelworks/trackset/internal/shared"
)

const playlistURLFormat = "https://music.youtube.com/playlist?list=%s"

// Assembler builds remote playlists from resolved selections or raw video
// ids. Creation is a single all-or-nothing request; track adds after that
// are individually non-fatal.
type Assembler struct {
	catalog  services.Catalog
	resolver *Resolver
	logger   *log.Logger
}

// NewAssembler creates an assembler over the given catalog and resolver.
func NewAssembler(catalog services.Catalog, resolver *Resolver) *Assembler {
	return &Assembler{
		catalog:  catalog,
		resolver: resolver,
		logger:   shared.NewLogger(nil),
	}
}

// CreateFromQueries resolves queries, creates the playlist and adds every
// selected track. Unresolved queries land in the outcome's Skipped list
// with their resolution reason; add-time rejections land there as
// "rejected by service".
func (a *Assembler) CreateFromQueries(ctx context.Context, title, description, privacy string, queries []string, progress chan<- ProgressUpdate) (*models.PlaylistOutcome, error) {
	if a.catalog == nil || a.resolver == nil {
		return nil, fmt.Errorf("%w: assembler not initialized", shared.ErrServiceUnavailable)
	}

	results, err := a.resolver.Resolve(ctx, queries, progress)
	if err != nil {
		return nil, err
	}

	var ids []string
	queryByID := make(map[string]string, len(results))
	var skipped []models.SkippedTrack
	for _, result := range results {
		if result.Selected == nil {
			skipped = append(skipped, models.SkippedTrack{Query: result.Query, Reason: result.Reason})
			continue
		}
		ids = append(ids, result.Selected.ID)
		queryByID[result.Selected.ID] = result.Query
	}

	// The playlist is created even when nothing resolved; the caller gets it
	// back empty with every query under Skipped.
	return a.assemble(ctx, title, description, privacy, ids, skipped, len(queries), progress, func(id string) string {
		return queryByID[id]
	})
}

// CreateFromIDs creates a playlist from raw video ids, skipping resolution.
// Each id must match the service's id shape; malformed ids are skipped
// before any request goes out.
func (a *Assembler) CreateFromIDs(ctx context.Context, title, description, privacy string, ids []string, progress chan<- ProgressUpdate) (*models.PlaylistOutcome, error) {
	if a.catalog == nil {
		return nil, fmt.Errorf("%w: assembler not initialized", shared.ErrServiceUnavailable)
	}

	var valid []string
	var skipped []models.SkippedTrack
	for _, id := range ids {
		if !shared.ValidVideoID(id) {
			skipped = append(skipped, models.SkippedTrack{Query: id, Reason: shared.ErrInvalidID.Error()})
			continue
		}
		valid = append(valid, id)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no well-formed video ids to add", shared.ErrInvalidArgument)
	}

	return a.assemble(ctx, title, description, privacy, valid, skipped, len(ids), progress, func(id string) string {
		return id
	})
}

// assemble runs the shared create-then-add path. label maps a video id back
// to the caller-facing name recorded for skips.
func (a *Assembler) assemble(ctx context.Context, title, description, privacy string, ids []string, skipped []models.SkippedTrack, totalRequested int, progress chan<- ProgressUpdate, label func(string) string) (*models.PlaylistOutcome, error) {
	sendProgress(progress, creatingPlaylistUpdate(title))

	playlistID, err := a.catalog.CreatePlaylist(ctx, title, description, privacy)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	sendProgress(progress, playlistCreatedUpdate(title, playlistID))

	outcome := &models.PlaylistOutcome{
		PlaylistID:     playlistID,
		PlaylistURL:    fmt.Sprintf(playlistURLFormat, playlistID),
		Title:          title,
		Skipped:        skipped,
		TotalRequested: totalRequested,
	}

	var addResults []services.AddResult
	var addErr error
	if len(ids) > 0 {
		addResults, addErr = a.catalog.AddTracks(ctx, playlistID, ids)
	}
	for i, res := range addResults {
		sendProgress(progress, addedTrackUpdate(i+1, len(ids), res.VideoID, res.Added))
		if res.Added {
			outcome.Added = append(outcome.Added, res.VideoID)
			continue
		}
		a.logger.Warn("track skipped", "video_id", res.VideoID, "reason", res.Reason)
		outcome.Skipped = append(outcome.Skipped, models.SkippedTrack{
			Query:  label(res.VideoID),
			Reason: "rejected by service",
		})
	}
	outcome.TotalAdded = len(outcome.Added)

	// The playlist exists at this point, so an add-phase error is returned
	// alongside the outcome rather than instead of it.
	if addErr != nil {
		return outcome, fmt.Errorf("playlist created but adds were interrupted: %w", addErr)
	}

	return outcome, nil
}

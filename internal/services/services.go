// package services defines interface Catalog for the music catalog backends
package services

import (
	"context"

	"github.com/kestrelworks/trackset/internal/models"
)

// Catalog is the common surface of both catalog backends. The read path
// searches for candidates; the write path creates playlists and adds tracks.
type Catalog interface {
	// Search returns up to limit normalized candidates for a free-text query.
	// Zero candidates is not an error.
	Search(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error)

	// CreatePlaylist creates an empty playlist and returns its id. Privacy
	// is one of "private", "unlisted", "public".
	CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error)

	// AddTracks adds the given video ids to a playlist, one outcome per id.
	// Individual rejections are recorded, not returned as errors.
	AddTracks(ctx context.Context, playlistID string, ids []string) ([]AddResult, error)

	// Validate performs a cheap authenticated call to confirm the session is
	// still accepted by the service.
	Validate(ctx context.Context) error

	// Name returns the backend name for logs and reports.
	Name() string
}

// AddResult is the per-id outcome of a playlist add.
type AddResult struct {
	VideoID string
	Added   bool
	Reason  string
}

// package models defines the data model for track resolution and playlist assembly
package models

import (
	"time"

	"github.com/kestrelworks/trackset/internal/shared"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// SearchCandidate is one catalog search result for a query, prior to selection.
//
// Candidates are produced by a catalog client and are immutable once returned.
// The boolean flags are heuristics computed from the upstream title text at
// normalization time.
type SearchCandidate struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	Duration     int       `json:"duration_seconds"` // Duration in seconds
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	PublishedAt  time.Time `json:"published_at"`
	IsRemix      bool      `json:"is_remix"`
	IsRemaster   bool      `json:"is_remaster"`
	IsFullAlbum  bool      `json:"is_full_album"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// ResolutionResult pairs one input query with the outcome of resolving it.
//
// Selected is nil when no candidate was chosen; Reason then explains why
// ("no matches", a transport error, a deadline). Candidates holds the full
// ranked set so callers can second-guess the selection.
type ResolutionResult struct {
	Query      string            `json:"query"`
	Selected   *SearchCandidate  `json:"selected,omitempty"`
	Candidates []SearchCandidate `json:"candidates,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// SkippedTrack records one query or track id that did not make it into the
// playlist, with the reason it was skipped.
type SkippedTrack struct {
	Query  string `json:"query"`
	Reason string `json:"reason"`
}

// PlaylistOutcome is the final structured report of one playlist-creation
// call. It is terminal: never mutated after construction.
type PlaylistOutcome struct {
	PlaylistID     string         `json:"playlist_id"`
	PlaylistURL    string         `json:"playlist_url"`
	Title          string         `json:"title"`
	Added          []string       `json:"added"`
	Skipped        []SkippedTrack `json:"skipped"`
	TotalRequested int            `json:"total_requested"`
	TotalAdded     int            `json:"total_added"`
}

// CachedResolution is a persisted query → candidate selection.
//
// Rows memoize the resolver's choice so repeated playlist builds skip the
// outbound search for queries already seen.
type CachedResolution struct {
	id        string
	sequence  int
	query     string
	candidate SearchCandidate
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedResolution creates a CachedResolution for the given query and
// selected candidate.
func NewCachedResolution(sequence int, query string, candidate SearchCandidate) *CachedResolution {
	now := time.Now()
	return &CachedResolution{
		sequence:  sequence,
		query:     query,
		candidate: candidate,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *CachedResolution) ID() string                 { return c.id }
func (c *CachedResolution) SetID(id string)            { c.id = id }
func (c *CachedResolution) Sequence() int              { return c.sequence }
func (c *CachedResolution) Query() string              { return c.query }
func (c *CachedResolution) Candidate() SearchCandidate { return c.candidate }
func (c *CachedResolution) CreatedAt() time.Time       { return c.createdAt }
func (c *CachedResolution) UpdatedAt() time.Time       { return c.updatedAt }
func (c *CachedResolution) SetUpdatedAt(t time.Time)   { c.updatedAt = t }
func (c *CachedResolution) DeletedAt() *time.Time      { return c.deletedAt }
func (c *CachedResolution) SetDeletedAt(t *time.Time)  { c.deletedAt = t }
func (c *CachedResolution) SetCreatedAt(t time.Time)   { c.createdAt = t }

// Validate checks that the cached resolution has a query and a candidate id.
func (c *CachedResolution) Validate() error {
	if c.query == "" {
		return shared.ErrEmptyQuery
	}
	if c.candidate.ID == "" {
		return shared.ErrInvalidID
	}
	return nil
}

package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/shared"
)

// ResolutionRepository implements models.Repository[*models.CachedResolution]
// for the resolution cache.
//
// Rows memoize query → candidate selections with soft delete support. The
// query column is unique, so re-resolving a query updates its row instead of
// stacking duplicates.
type ResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a new ResolutionRepository with the given database connection
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// Create inserts a new [models.CachedResolution] into the database with generated ID and sequence
func (r *ResolutionRepository) Create(resolution *models.CachedResolution) error {
	sequence, err := NextSequence(r.db, "resolutions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	resolution.SetID(id)

	if err := resolution.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	candidate := resolution.Candidate()
	query := `
		INSERT INTO resolutions (id, sequence, query, video_id, title, channel, duration, view_count, like_count, is_remix, is_remaster, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		resolution.Query(),
		candidate.ID,
		candidate.Title,
		candidate.Channel,
		candidate.Duration,
		candidate.ViewCount,
		candidate.LikeCount,
		candidate.IsRemix,
		candidate.IsRemaster,
		resolution.CreatedAt(),
		resolution.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resolution: %w", err)
	}

	return nil
}

// Get retrieves a resolution by ID, excluding soft-deleted rows
func (r *ResolutionRepository) Get(id string) (*models.CachedResolution, error) {
	query := `
		SELECT id, sequence, query, video_id, title, channel, duration, view_count, like_count, is_remix, is_remaster, created_at, updated_at, deleted_at
		FROM resolutions
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByQuery retrieves a resolution by its exact query text
func (r *ResolutionRepository) GetByQuery(text string) (*models.CachedResolution, error) {
	query := `
		SELECT id, sequence, query, video_id, title, channel, duration, view_count, like_count, is_remix, is_remaster, created_at, updated_at, deleted_at
		FROM resolutions
		WHERE query = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, text))
}

// Update modifies an existing resolution in the database
func (r *ResolutionRepository) Update(resolution *models.CachedResolution) error {
	if err := resolution.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	resolution.SetUpdatedAt(now)

	candidate := resolution.Candidate()
	query := `
		UPDATE resolutions
		SET video_id = ?, title = ?, channel = ?, duration = ?, view_count = ?, like_count = ?, is_remix = ?, is_remaster = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		candidate.ID,
		candidate.Title,
		candidate.Channel,
		candidate.Duration,
		candidate.ViewCount,
		candidate.LikeCount,
		candidate.IsRemix,
		candidate.IsRemaster,
		now,
		resolution.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update resolution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("resolution not found or already deleted: %s", resolution.ID())
	}

	return nil
}

// Delete soft-deletes a resolution by ID
func (r *ResolutionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE resolutions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete resolution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("resolution not found or already deleted: %s", id)
	}

	return nil
}

// Clear soft-deletes every cached resolution and reports how many rows it touched
func (r *ResolutionRepository) Clear() (int64, error) {
	result, err := r.db.Exec("UPDATE resolutions SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear resolutions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// List retrieves all resolutions matching the given criteria, excluding soft-deleted rows
func (r *ResolutionRepository) List(criteria map[string]any) ([]*models.CachedResolution, error) {
	query := `
		SELECT id, sequence, query, video_id, title, channel, duration, view_count, like_count, is_remix, is_remaster, created_at, updated_at, deleted_at
		FROM resolutions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if videoID, ok := criteria["video_id"].(string); ok && videoID != "" {
		query += " AND video_id = ?"
		args = append(args, videoID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var resolutions []*models.CachedResolution
	for rows.Next() {
		resolution, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, resolution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return resolutions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanOne scans a single [sql.Row] into a [models.CachedResolution]
func (r *ResolutionRepository) scanOne(row *sql.Row) (*models.CachedResolution, error) {
	resolution, err := scanResolution(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resolution not found")
	}
	return resolution, err
}

// scanResolution scans one row into a [models.CachedResolution]
func scanResolution(row rowScanner) (*models.CachedResolution, error) {
	var (
		id         string
		sequence   int
		queryText  string
		videoID    string
		title      string
		channel    string
		duration   int
		viewCount  int64
		likeCount  int64
		isRemix    bool
		isRemaster bool
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &queryText, &videoID, &title, &channel, &duration, &viewCount, &likeCount, &isRemix, &isRemaster, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resolution: %w", err)
	}

	candidate := models.SearchCandidate{
		ID:         videoID,
		Title:      title,
		Channel:    channel,
		Duration:   duration,
		ViewCount:  viewCount,
		LikeCount:  likeCount,
		IsRemix:    isRemix,
		IsRemaster: isRemaster,
	}

	resolution := models.NewCachedResolution(sequence, queryText, candidate)
	resolution.SetID(id)
	resolution.SetCreatedAt(createdAt)
	resolution.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		resolution.SetDeletedAt(&deletedAt.Time)
	}

	return resolution, nil
}

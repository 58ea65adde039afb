package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelworks/trackset/internal/models"
)

// ResolutionCacheAdapter implements tasks.ResolutionCache using ResolutionRepository.
//
// Lookups are read-through: a miss is reported as (nil, nil) so the resolver
// falls back to a live search. Stores update the existing row when the query
// was already cached.
type ResolutionCacheAdapter struct {
	repo *ResolutionRepository
}

// NewResolutionCacheAdapter creates a new ResolutionCacheAdapter with the given repository
func NewResolutionCacheAdapter(repo *ResolutionRepository) *ResolutionCacheAdapter {
	return &ResolutionCacheAdapter{repo: repo}
}

// Lookup returns the cached selection for a query, or nil on a miss.
func (a *ResolutionCacheAdapter) Lookup(_ context.Context, query string) (*models.SearchCandidate, error) {
	resolution, err := a.repo.GetByQuery(query)
	if err != nil {
		return nil, nil
	}

	candidate := resolution.Candidate()
	return &candidate, nil
}

// Store records a selection for a query, replacing any previous row for the
// same query text.
func (a *ResolutionCacheAdapter) Store(_ context.Context, query string, candidate *models.SearchCandidate) error {
	if candidate == nil {
		return nil
	}

	if existing, err := a.repo.GetByQuery(query); err == nil && existing != nil {
		updated := models.NewCachedResolution(existing.Sequence(), query, *candidate)
		updated.SetID(existing.ID())
		updated.SetCreatedAt(existing.CreatedAt())
		return a.repo.Update(updated)
	}

	resolution := models.NewCachedResolution(0, query, *candidate)
	if err := a.repo.Create(resolution); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache resolution: %w", err)
	}

	return nil
}

package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/services"
	"github.com/kestrelworks/trackset/internal/shared"
	"golang.org/x/time/rate"
)

// ResolutionCache persists query → selection pairs so repeat resolutions
// skip the outbound search. Implementations must be safe for concurrent use.
type ResolutionCache interface {
	// Lookup returns the cached selection for a query, or nil on a miss.
	Lookup(ctx context.Context, query string) (*models.SearchCandidate, error)

	// Store records a selection for a query.
	Store(ctx context.Context, query string, candidate *models.SearchCandidate) error
}

// Policy sets the knobs of the resolution run. The zero value resolves with
// sensible defaults; the tie-break order itself is fixed, only the toggles
// vary.
type Policy struct {
	CandidatesPerQuery int     // Candidates fetched per query (default: 5)
	NumWorkers         int     // Concurrent workers (default: 4)
	RateLimit          float64 // Searches per second (default: 5)
}

func (p Policy) withDefaults() Policy {
	if p.CandidatesPerQuery < 1 {
		p.CandidatesPerQuery = 5
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.NumWorkers > 10 {
		p.NumWorkers = 10
	}
	if p.RateLimit <= 0 {
		p.RateLimit = 5.0
	}
	return p
}

// Resolver turns free-text queries into concrete track selections.
type Resolver struct {
	catalog services.Catalog
	policy  Policy
	cache   ResolutionCache
	logger  *log.Logger
}

// NewResolver creates a resolver over the given catalog. A nil cache
// disables caching.
func NewResolver(catalog services.Catalog, policy Policy, cache ResolutionCache) *Resolver {
	return &Resolver{
		catalog: catalog,
		policy:  policy.withDefaults(),
		cache:   cache,
		logger:  shared.NewLogger(nil),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type resolveJob struct {
	index int
	query string
}

// Resolve resolves every query concurrently and returns one result per
// query, in input order. Per-query failures land in the result's Reason;
// the batch itself only fails on nil dependencies. When ctx expires,
// still-pending queries are reported as failed rather than left out.
func (r *Resolver) Resolve(ctx context.Context, queries []string, progress chan<- ProgressUpdate) ([]models.ResolutionResult, error) {
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	total := len(queries)
	results := make([]models.ResolutionResult, total)
	if total == 0 {
		return results, nil
	}

	sendProgress(progress, resolveStartUpdate(total))

	limiter := rate.NewLimiter(rate.Limit(r.policy.RateLimit), 1)
	jobs := make(chan resolveJob, total)
	done := make(chan int, total)
	processed := make([]bool, total)

	var wg sync.WaitGroup
	for range r.policy.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[job.index] = r.resolveOne(ctx, limiter, job.query)
				processed[job.index] = true
				done <- job.index
			}
		}()
	}

	for i, query := range queries {
		jobs <- resolveJob{index: i, query: query}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for index := range done {
		completed++
		sendProgress(progress, resolvedUpdate(completed, total, &results[index]))
	}

	// Workers bail out on ctx expiry; whatever they never touched is
	// reported as failed instead of returned zero-valued.
	for i, query := range queries {
		if !processed[i] {
			results[i] = models.ResolutionResult{
				Query:  query,
				Reason: fmt.Sprintf("resolution aborted: %v", ctx.Err()),
			}
		}
	}

	return results, nil
}

// resolveOne searches and scores a single query.
func (r *Resolver) resolveOne(ctx context.Context, limiter *rate.Limiter, query string) models.ResolutionResult {
	result := models.ResolutionResult{Query: query}

	if strings.TrimSpace(query) == "" {
		result.Reason = shared.ErrEmptyQuery.Error()
		return result
	}

	if r.cache != nil {
		if cached, err := r.cache.Lookup(ctx, query); err == nil && cached != nil {
			result.Selected = cached
			result.Candidates = []models.SearchCandidate{*cached}
			return result
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		result.Reason = fmt.Sprintf("resolution aborted: %v", err)
		return result
	}

	candidates, err := r.catalog.Search(ctx, query, r.policy.CandidatesPerQuery)
	if err != nil {
		r.logger.Warn("search failed", "query", query, "error", err)
		result.Reason = fmt.Sprintf("search failed: %v", err)
		return result
	}

	result.Candidates = candidates
	if len(candidates) == 0 {
		result.Reason = "no matches"
		return result
	}

	selected := selectCandidate(query, candidates)
	result.Selected = &selected

	if r.cache != nil {
		if err := r.cache.Store(ctx, query, &selected); err != nil {
			r.logger.Debug("cache store failed", "query", query, "error", err)
		}
	}

	return result
}

// queryPrefs captures what the query text itself asks for. A query that
// names a remix suspends the bias against remixes, and so on.
type queryPrefs struct {
	wantsAlbum    bool
	wantsRemix    bool
	wantsRemaster bool
}

func prefsFor(query string) queryPrefs {
	lower := strings.ToLower(query)
	return queryPrefs{
		wantsAlbum:    strings.Contains(lower, "album"),
		wantsRemix:    strings.Contains(lower, "remix"),
		wantsRemaster: strings.Contains(lower, "remaster"),
	}
}

// selectCandidate applies the scoring policy: full-album disqualification,
// then remix, remaster, channel authority, view count and like count as
// successive tie-breaks. When every candidate is disqualified the best
// disqualified one is returned rather than nothing.
func selectCandidate(query string, candidates []models.SearchCandidate) models.SearchCandidate {
	prefs := prefsFor(query)

	var eligible, disqualified []models.SearchCandidate
	for _, c := range candidates {
		if c.IsFullAlbum && !prefs.wantsAlbum {
			disqualified = append(disqualified, c)
		} else {
			eligible = append(eligible, c)
		}
	}

	pool := eligible
	if len(pool) == 0 {
		pool = disqualified
	}

	best := pool[0]
	for _, c := range pool[1:] {
		if ranksAbove(c, best, query, prefs) {
			best = c
		}
	}

	return best
}

// ranksAbove reports whether a outranks b under the tie-break order.
func ranksAbove(a, b models.SearchCandidate, query string, prefs queryPrefs) bool {
	if !prefs.wantsRemix && a.IsRemix != b.IsRemix {
		return !a.IsRemix
	}
	if !prefs.wantsRemaster && a.IsRemaster != b.IsRemaster {
		return !a.IsRemaster
	}

	aOfficial := channelAuthority(query, a.Channel)
	bOfficial := channelAuthority(query, b.Channel)
	if aOfficial != bOfficial {
		return aOfficial
	}

	if a.ViewCount != b.ViewCount {
		return a.ViewCount > b.ViewCount
	}
	return a.LikeCount > b.LikeCount
}

// channelAuthority heuristically flags official uploads: auto-generated
// topic channels, VEVO and official channels, or a channel named after the
// artist in the query.
func channelAuthority(query, channel string) bool {
	if channel == "" {
		return false
	}
	lower := strings.ToLower(channel)

	if strings.Contains(lower, "- topic") || strings.Contains(lower, "vevo") || strings.Contains(lower, "official") {
		return true
	}

	for _, token := range strings.Fields(strings.ToLower(query)) {
		if len(token) > 2 && strings.Contains(lower, token) {
			return true
		}
	}

	return false
}

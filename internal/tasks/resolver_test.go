package tasks

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kestrelworks/trackset/internal/models"
	mocks "github.com/kestrelworks/trackset/internal/testing"
)

func candidate(id, title, channel string, views, likes int64) models.SearchCandidate {
	return models.SearchCandidate{
		ID:          id,
		Title:       title,
		Channel:     channel,
		Duration:    240,
		ViewCount:   views,
		LikeCount:   likes,
		IsRemix:     strings.Contains(strings.ToLower(title), "remix"),
		IsRemaster:  strings.Contains(strings.ToLower(title), "remaster"),
		IsFullAlbum: strings.Contains(strings.ToLower(title), "full album"),
	}
}

func TestSelectCandidate(t *testing.T) {
	t.Run("official original beats remix, remaster and full album", func(t *testing.T) {
		candidates := []models.SearchCandidate{
			candidate("remix000001", "Bohemian Rhapsody (Tiesto Remix)", "DJ Uploads", 90_000_000, 500_000),
			candidate("album000001", "A Night at the Opera (Full Album)", "Queen Official", 200_000_000, 900_000),
			candidate("remaster001", "Bohemian Rhapsody (Remastered 2011)", "Queen Official", 80_000_000, 600_000),
			candidate("original001", "Bohemian Rhapsody (Official Video)", "Queen Official", 1_900_000_000, 12_000_000),
		}

		got := selectCandidate("Queen Bohemian Rhapsody", candidates)
		if got.ID != "original001" {
			t.Errorf("expected original001, got %s (%s)", got.ID, got.Title)
		}
	})

	t.Run("remix never outranks an otherwise equal original", func(t *testing.T) {
		candidates := []models.SearchCandidate{
			candidate("remix000001", "Song Title (Remix)", "Artist", 1_000_000, 1000),
			candidate("original001", "Song Title", "Artist", 1_000_000, 1000),
		}

		got := selectCandidate("Artist Song Title", candidates)
		if got.ID != "original001" {
			t.Errorf("expected the original, got %s", got.ID)
		}
	})

	t.Run("remix bias is suspended when the query asks for one", func(t *testing.T) {
		candidates := []models.SearchCandidate{
			candidate("original001", "Around the World", "Daft Punk - Topic", 500_000_000, 2_000_000),
			candidate("remix000001", "Around the World (MTV Remix)", "Daft Punk - Topic", 600_000_000, 3_000_000),
		}

		got := selectCandidate("Daft Punk Around the World remix", candidates)
		if got.ID != "remix000001" {
			t.Errorf("expected the remix on view count, got %s", got.ID)
		}
	})

	t.Run("full album is disqualified unless the query asks for one", func(t *testing.T) {
		candidates := []models.SearchCandidate{
			candidate("album000001", "Discovery (Full Album)", "Daft Punk - Topic", 900_000_000, 4_000_000),
			candidate("single00001", "One More Time", "randomchannel", 100, 1),
		}

		if got := selectCandidate("Daft Punk One More Time", candidates); got.ID != "single00001" {
			t.Errorf("expected the single despite low views, got %s", got.ID)
		}
		if got := selectCandidate("Daft Punk Discovery full album", candidates); got.ID != "album000001" {
			t.Errorf("expected the album when asked for, got %s", got.ID)
		}
	})

	t.Run("all disqualified falls back to the best disqualified", func(t *testing.T) {
		candidates := []models.SearchCandidate{
			candidate("album000001", "Record A (Full Album)", "Label", 500, 5),
			candidate("album000002", "Record B (Full Album)", "Label", 900, 9),
		}

		got := selectCandidate("some song", candidates)
		if got.ID != "album000002" {
			t.Errorf("expected the higher-viewed fallback, got %s", got.ID)
		}
	})

	t.Run("channel authority breaks view count", func(t *testing.T) {
		candidates := []models.SearchCandidate{
			candidate("unofficial1", "Song Title (HQ)", "lyricsuploader42", 9_000_000, 10_000),
			candidate("official001", "Song Title", "ArtistVEVO", 2_000_000, 50_000),
		}

		got := selectCandidate("Artist Song Title", candidates)
		if got.ID != "official001" {
			t.Errorf("expected the VEVO upload, got %s", got.ID)
		}
	})
}

func TestChannelAuthority(t *testing.T) {
	cases := []struct {
		query, channel string
		want           bool
	}{
		{"Queen Bohemian Rhapsody", "Queen - Topic", true},
		{"Queen Bohemian Rhapsody", "QueenVEVO", true},
		{"Queen Bohemian Rhapsody", "Queen Official", true},
		{"Queen Bohemian Rhapsody", "Queen", true},
		{"Queen Bohemian Rhapsody", "randomuploads99", false},
		{"Queen Bohemian Rhapsody", "", false},
	}
	for _, c := range cases {
		if got := channelAuthority(c.query, c.channel); got != c.want {
			t.Errorf("channelAuthority(%q, %q) = %v, want %v", c.query, c.channel, got, c.want)
		}
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("results preserve input order under concurrency", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				// Later queries return faster to shuffle completion order.
				if strings.HasPrefix(query, "query-0") {
					time.Sleep(20 * time.Millisecond)
				}
				return []models.SearchCandidate{candidate("vid"+query[len(query)-4:], query, "Artist - Topic", 100, 10)}, nil
			},
		}

		queries := make([]string, 8)
		for i := range queries {
			queries[i] = fmt.Sprintf("query-%04d", i)
		}

		resolver := NewResolver(catalog, Policy{NumWorkers: 4, RateLimit: 1000}, nil)
		results, err := resolver.Resolve(ctx, queries, nil)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if len(results) != len(queries) {
			t.Fatalf("expected %d results, got %d", len(queries), len(results))
		}
		for i, result := range results {
			if result.Query != queries[i] {
				t.Errorf("result %d out of order: got query %q", i, result.Query)
			}
			if result.Selected == nil {
				t.Errorf("result %d has no selection", i)
			}
		}
	})

	t.Run("zero candidates yields no matches reason", func(t *testing.T) {
		catalog := &mocks.MockCatalog{}

		resolver := NewResolver(catalog, Policy{RateLimit: 1000}, nil)
		results, err := resolver.Resolve(ctx, []string{"obscure b-side"}, nil)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if results[0].Selected != nil {
			t.Error("expected no selection")
		}
		if results[0].Reason != "no matches" {
			t.Errorf("expected reason %q, got %q", "no matches", results[0].Reason)
		}
	})

	t.Run("one failing query does not abort the batch", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				if query == "broken" {
					return nil, fmt.Errorf("connection reset")
				}
				return []models.SearchCandidate{candidate("fJ9rUzIMcZQ", query, "Artist - Topic", 100, 10)}, nil
			},
		}

		resolver := NewResolver(catalog, Policy{RateLimit: 1000}, nil)
		results, err := resolver.Resolve(ctx, []string{"good one", "broken", "another good"}, nil)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}

		if results[0].Selected == nil || results[2].Selected == nil {
			t.Error("expected surrounding queries to resolve")
		}
		if results[1].Selected != nil {
			t.Error("expected the failing query to stay unresolved")
		}
		if !strings.Contains(results[1].Reason, "connection reset") {
			t.Errorf("expected the transport error in the reason, got %q", results[1].Reason)
		}
	})

	t.Run("expired context reports pending queries as failed", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		catalog := &mocks.MockCatalog{}
		resolver := NewResolver(catalog, Policy{NumWorkers: 1, RateLimit: 1000}, nil)
		results, err := resolver.Resolve(cancelled, []string{"one", "two", "three"}, nil)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		for i, result := range results {
			if result.Selected != nil {
				t.Errorf("result %d resolved after cancellation", i)
			}
			if result.Reason == "" {
				t.Errorf("result %d missing a failure reason", i)
			}
		}
	})

	t.Run("cache hit skips the outbound search", func(t *testing.T) {
		cache := mocks.NewMockCache()
		cached := candidate("fJ9rUzIMcZQ", "Bohemian Rhapsody", "Queen Official", 100, 10)
		cache.Store(ctx, "Queen Bohemian Rhapsody", &cached)

		catalog := &mocks.MockCatalog{}
		resolver := NewResolver(catalog, Policy{RateLimit: 1000}, cache)
		results, err := resolver.Resolve(ctx, []string{"Queen Bohemian Rhapsody"}, nil)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if results[0].Selected == nil || results[0].Selected.ID != "fJ9rUzIMcZQ" {
			t.Fatalf("expected the cached selection, got %+v", results[0].Selected)
		}
		if len(catalog.SearchCalls) != 0 {
			t.Errorf("expected no outbound search, got %d", len(catalog.SearchCalls))
		}
	})

	t.Run("fresh selections are written to the cache", func(t *testing.T) {
		cache := mocks.NewMockCache()
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				return []models.SearchCandidate{candidate("dQw4w9WgXcQ", query, "Artist - Topic", 100, 10)}, nil
			},
		}

		resolver := NewResolver(catalog, Policy{RateLimit: 1000}, cache)
		if _, err := resolver.Resolve(ctx, []string{"some song"}, nil); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if cache.Stores != 1 {
			t.Errorf("expected one cache store, got %d", cache.Stores)
		}
	})

	t.Run("progress updates arrive per resolved query", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				return []models.SearchCandidate{candidate("fJ9rUzIMcZQ", query, "Artist", 1, 1)}, nil
			},
		}

		progress := make(chan ProgressUpdate, 16)
		resolver := NewResolver(catalog, Policy{RateLimit: 1000}, nil)
		if _, err := resolver.Resolve(ctx, []string{"a", "b"}, progress); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		close(progress)

		resolved := 0
		for update := range progress {
			if update.Phase == ResolveTracks && update.Step > 0 {
				resolved++
			}
		}
		if resolved != 2 {
			t.Errorf("expected 2 per-query updates, got %d", resolved)
		}
	})

	t.Run("empty query list returns immediately", func(t *testing.T) {
		resolver := NewResolver(&mocks.MockCatalog{}, Policy{}, nil)
		results, err := resolver.Resolve(ctx, nil, nil)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})
}

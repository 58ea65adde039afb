package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/services"
	mocks "github.com/kestrelworks/trackset/internal/testing"
)

func newAssembler(catalog *mocks.MockCatalog) *Assembler {
	resolver := NewResolver(catalog, Policy{RateLimit: 1000}, nil)
	return NewAssembler(catalog, resolver)
}

func TestCreateFromQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved tracks are added and unresolved queries skipped", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				if query == "unfindable song" {
					return nil, nil
				}
				return []models.SearchCandidate{candidate("fJ9rUzIMcZQ", query, "Artist - Topic", 100, 10)}, nil
			},
		}

		asm := newAssembler(catalog)
		outcome, err := asm.CreateFromQueries(ctx, "Mix", "desc", "private", []string{"good song", "unfindable song"}, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if outcome.PlaylistID != "PLmock00000" {
			t.Errorf("unexpected playlist id %q", outcome.PlaylistID)
		}
		if outcome.PlaylistURL != "https://music.youtube.com/playlist?list=PLmock00000" {
			t.Errorf("unexpected playlist url %q", outcome.PlaylistURL)
		}
		if outcome.TotalRequested != 2 || outcome.TotalAdded != 1 {
			t.Errorf("unexpected totals: %+v", outcome)
		}
		if len(outcome.Skipped) != 1 || outcome.Skipped[0].Query != "unfindable song" {
			t.Errorf("unexpected skips: %+v", outcome.Skipped)
		}
		if outcome.Skipped[0].Reason != "no matches" {
			t.Errorf("expected resolution reason on the skip, got %q", outcome.Skipped[0].Reason)
		}
	})

	t.Run("nothing resolved still creates an empty playlist", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(context.Context, string, int) ([]models.SearchCandidate, error) {
				return nil, nil
			},
		}

		asm := newAssembler(catalog)
		outcome, err := asm.CreateFromQueries(ctx, "Mix", "", "private", []string{"nope", "also nope"}, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if len(catalog.CreatedTitles) != 1 {
			t.Fatalf("expected exactly one create call, got %v", catalog.CreatedTitles)
		}
		if outcome.PlaylistID != "PLmock00000" {
			t.Errorf("unexpected playlist id %q", outcome.PlaylistID)
		}
		if outcome.TotalRequested != 2 || outcome.TotalAdded != 0 {
			t.Errorf("unexpected totals: %+v", outcome)
		}
		if len(outcome.Skipped) != 2 {
			t.Fatalf("expected every query skipped, got %+v", outcome.Skipped)
		}
		for _, skip := range outcome.Skipped {
			if skip.Reason != "no matches" {
				t.Errorf("unexpected skip reason %q", skip.Reason)
			}
		}
		if len(catalog.AddedIDs) != 0 {
			t.Error("expected no add calls for an empty selection")
		}
	})

	t.Run("create failure aborts before any adds", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				return []models.SearchCandidate{candidate("fJ9rUzIMcZQ", query, "Artist", 1, 1)}, nil
			},
			CreatePlaylistFunc: func(context.Context, string, string, string) (string, error) {
				return "", fmt.Errorf("server error")
			},
		}

		asm := newAssembler(catalog)
		_, err := asm.CreateFromQueries(ctx, "Mix", "", "private", []string{"a song"}, nil)
		if err == nil {
			t.Fatal("expected an error")
		}
		if len(catalog.AddedIDs) != 0 {
			t.Error("expected no add calls after failed create")
		}
	})

	t.Run("add-time rejections are skipped with the service reason", func(t *testing.T) {
		catalog := &mocks.MockCatalog{
			SearchFunc: func(_ context.Context, query string, _ int) ([]models.SearchCandidate, error) {
				id := "fJ9rUzIMcZQ"
				if query == "deleted video song" {
					id = "gonegonegon"
				}
				return []models.SearchCandidate{candidate(id, query, "Artist - Topic", 100, 10)}, nil
			},
			AddTracksFunc: func(_ context.Context, _ string, ids []string) ([]services.AddResult, error) {
				results := make([]services.AddResult, len(ids))
				for i, id := range ids {
					results[i] = services.AddResult{VideoID: id, Added: id != "gonegonegon"}
					if id == "gonegonegon" {
						results[i].Reason = "Video not found"
					}
				}
				return results, nil
			},
		}

		asm := newAssembler(catalog)
		outcome, err := asm.CreateFromQueries(ctx, "Mix", "", "private", []string{"fine song", "deleted video song"}, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if outcome.TotalAdded != 1 {
			t.Errorf("expected 1 added, got %d", outcome.TotalAdded)
		}
		if len(outcome.Skipped) != 1 {
			t.Fatalf("expected 1 skip, got %+v", outcome.Skipped)
		}
		skip := outcome.Skipped[0]
		if skip.Query != "deleted video song" || skip.Reason != "rejected by service" {
			t.Errorf("unexpected skip: %+v", skip)
		}
	})
}

func TestCreateFromIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("one rejected id still adds the rest", func(t *testing.T) {
		ids := []string{"fJ9rUzIMcZQ", "dQw4w9WgXcQ", "gonegonegon"}
		catalog := &mocks.MockCatalog{
			AddTracksFunc: func(_ context.Context, _ string, ids []string) ([]services.AddResult, error) {
				results := make([]services.AddResult, len(ids))
				for i, id := range ids {
					results[i] = services.AddResult{VideoID: id, Added: id != "gonegonegon"}
				}
				return results, nil
			},
		}

		asm := newAssembler(catalog)
		outcome, err := asm.CreateFromIDs(ctx, "Picks", "", "private", ids, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if outcome.TotalRequested != 3 || outcome.TotalAdded != 2 {
			t.Errorf("expected 2 of 3 added, got %+v", outcome)
		}
		if len(outcome.Skipped) != 1 || outcome.Skipped[0].Reason != "rejected by service" {
			t.Errorf("unexpected skips: %+v", outcome.Skipped)
		}
	})

	t.Run("malformed ids never reach the service", func(t *testing.T) {
		catalog := &mocks.MockCatalog{}

		asm := newAssembler(catalog)
		outcome, err := asm.CreateFromIDs(ctx, "Picks", "", "private", []string{"fJ9rUzIMcZQ", "not valid!", ""}, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if outcome.TotalAdded != 1 {
			t.Errorf("expected only the valid id added, got %d", outcome.TotalAdded)
		}
		if len(outcome.Skipped) != 2 {
			t.Errorf("expected 2 skips, got %+v", outcome.Skipped)
		}
		for _, id := range catalog.AddedIDs {
			if id != "fJ9rUzIMcZQ" {
				t.Errorf("malformed id sent to the service: %q", id)
			}
		}
	})

	t.Run("all malformed ids fail without creating a playlist", func(t *testing.T) {
		catalog := &mocks.MockCatalog{}

		asm := newAssembler(catalog)
		_, err := asm.CreateFromIDs(ctx, "Picks", "", "private", []string{"bad", "also-bad!"}, nil)
		if err == nil {
			t.Fatal("expected an error")
		}
		if len(catalog.CreatedTitles) != 0 {
			t.Error("expected no playlist for all-invalid input")
		}
	})

	t.Run("interrupted adds return the outcome and the error", func(t *testing.T) {
		quotaErr := errors.New("quota exceeded")
		catalog := &mocks.MockCatalog{
			AddTracksFunc: func(_ context.Context, _ string, ids []string) ([]services.AddResult, error) {
				results := []services.AddResult{
					{VideoID: ids[0], Added: true},
					{VideoID: ids[1], Reason: "quota exceeded"},
				}
				return results, quotaErr
			},
		}

		asm := newAssembler(catalog)
		outcome, err := asm.CreateFromIDs(ctx, "Picks", "", "private", []string{"fJ9rUzIMcZQ", "dQw4w9WgXcQ"}, nil)
		if !errors.Is(err, quotaErr) {
			t.Fatalf("expected the add error surfaced, got %v", err)
		}
		if outcome == nil || outcome.TotalAdded != 1 {
			t.Fatalf("expected a partial outcome, got %+v", outcome)
		}
	})

	t.Run("progress covers create and add phases", func(t *testing.T) {
		catalog := &mocks.MockCatalog{}
		progress := make(chan ProgressUpdate, 16)

		asm := newAssembler(catalog)
		if _, err := asm.CreateFromIDs(ctx, "Picks", "", "private", []string{"fJ9rUzIMcZQ"}, progress); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		close(progress)

		var phases []string
		for update := range progress {
			phases = append(phases, update.Phase.String())
		}
		joined := strings.Join(phases, ",")
		if !strings.Contains(joined, "create_playlist") || !strings.Contains(joined, "add_tracks") {
			t.Errorf("expected create and add phases, got %v", phases)
		}
	})
}

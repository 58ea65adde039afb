package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testCandidate(id, title string) models.SearchCandidate {
	return models.SearchCandidate{
		ID:        id,
		Title:     title,
		Channel:   "Queen Official",
		Duration:  354,
		ViewCount: 1_900_000_000,
		LikeCount: 12_000_000,
	}
}

func TestResolutionRepository(t *testing.T) {
	t.Run("create and get roundtrip", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		resolution := models.NewCachedResolution(0, "Queen Bohemian Rhapsody", testCandidate("fJ9rUzIMcZQ", "Bohemian Rhapsody"))
		if err := repo.Create(resolution); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if resolution.ID() == "" {
			t.Fatal("expected a generated id")
		}

		got, err := repo.Get(resolution.ID())
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Query() != "Queen Bohemian Rhapsody" {
			t.Errorf("unexpected query %q", got.Query())
		}
		candidate := got.Candidate()
		if candidate.ID != "fJ9rUzIMcZQ" || candidate.ViewCount != 1_900_000_000 {
			t.Errorf("unexpected candidate: %+v", candidate)
		}
		if got.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", got.Sequence())
		}
	})

	t.Run("get by query", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		resolution := models.NewCachedResolution(0, "some song", testCandidate("dQw4w9WgXcQ", "Some Song"))
		if err := repo.Create(resolution); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		got, err := repo.GetByQuery("some song")
		if err != nil {
			t.Fatalf("get by query failed: %v", err)
		}
		if got.Candidate().ID != "dQw4w9WgXcQ" {
			t.Errorf("unexpected candidate id %q", got.Candidate().ID)
		}

		if _, err := repo.GetByQuery("never cached"); err == nil {
			t.Error("expected an error for an unknown query")
		}
	})

	t.Run("duplicate query violates unique constraint", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		first := models.NewCachedResolution(0, "dup query", testCandidate("fJ9rUzIMcZQ", "A"))
		if err := repo.Create(first); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		second := models.NewCachedResolution(0, "dup query", testCandidate("dQw4w9WgXcQ", "B"))
		if err := repo.Create(second); err == nil {
			t.Error("expected a constraint error")
		}
	})

	t.Run("update replaces the candidate", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		resolution := models.NewCachedResolution(0, "a query", testCandidate("fJ9rUzIMcZQ", "Old"))
		if err := repo.Create(resolution); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		updated := models.NewCachedResolution(resolution.Sequence(), "a query", testCandidate("dQw4w9WgXcQ", "New"))
		updated.SetID(resolution.ID())
		if err := repo.Update(updated); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		got, err := repo.GetByQuery("a query")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Candidate().ID != "dQw4w9WgXcQ" {
			t.Errorf("expected the new candidate, got %q", got.Candidate().ID)
		}
	})

	t.Run("delete soft-deletes", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		resolution := models.NewCachedResolution(0, "going away", testCandidate("fJ9rUzIMcZQ", "X"))
		if err := repo.Create(resolution); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := repo.Delete(resolution.ID()); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if _, err := repo.Get(resolution.ID()); err == nil {
			t.Error("expected deleted row to be invisible")
		}
		if err := repo.Delete(resolution.ID()); err == nil {
			t.Error("expected second delete to fail")
		}
	})

	t.Run("clear removes every row", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		for _, q := range []string{"one", "two", "three"} {
			if err := repo.Create(models.NewCachedResolution(0, q, testCandidate("fJ9rUzIMcZQ", q))); err != nil {
				t.Fatalf("create failed: %v", err)
			}
		}

		cleared, err := repo.Clear()
		if err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if cleared != 3 {
			t.Errorf("expected 3 cleared, got %d", cleared)
		}

		rows, err := repo.List(nil)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected empty cache, got %d rows", len(rows))
		}
	})

	t.Run("list orders by sequence and filters by video id", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		if err := repo.Create(models.NewCachedResolution(0, "first", testCandidate("fJ9rUzIMcZQ", "A"))); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := repo.Create(models.NewCachedResolution(0, "second", testCandidate("dQw4w9WgXcQ", "B"))); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 2 || all[0].Query() != "first" || all[1].Query() != "second" {
			t.Errorf("unexpected order: %+v", all)
		}

		filtered, err := repo.List(map[string]any{"video_id": "dQw4w9WgXcQ"})
		if err != nil {
			t.Fatalf("filtered list failed: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Query() != "second" {
			t.Errorf("unexpected filter result: %+v", filtered)
		}
	})

	t.Run("validation failures are rejected", func(t *testing.T) {
		repo := NewResolutionRepository(newTestDB(t))

		noQuery := models.NewCachedResolution(0, "", testCandidate("fJ9rUzIMcZQ", "X"))
		if err := repo.Create(noQuery); err == nil {
			t.Error("expected validation error for empty query")
		}

		noCandidate := models.NewCachedResolution(0, "a query", models.SearchCandidate{})
		if err := repo.Create(noCandidate); err == nil {
			t.Error("expected validation error for empty candidate id")
		}
	})
}

func TestResolutionCacheAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("miss reports nil without error", func(t *testing.T) {
		adapter := NewResolutionCacheAdapter(NewResolutionRepository(newTestDB(t)))

		got, err := adapter.Lookup(ctx, "never cached")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil on a miss, got %+v", got)
		}
	})

	t.Run("store then lookup roundtrip", func(t *testing.T) {
		adapter := NewResolutionCacheAdapter(NewResolutionRepository(newTestDB(t)))

		candidate := testCandidate("fJ9rUzIMcZQ", "Bohemian Rhapsody")
		if err := adapter.Store(ctx, "Queen Bohemian Rhapsody", &candidate); err != nil {
			t.Fatalf("store failed: %v", err)
		}

		got, err := adapter.Lookup(ctx, "Queen Bohemian Rhapsody")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got == nil || got.ID != "fJ9rUzIMcZQ" {
			t.Errorf("unexpected lookup result: %+v", got)
		}
	})

	t.Run("restore replaces the previous selection", func(t *testing.T) {
		adapter := NewResolutionCacheAdapter(NewResolutionRepository(newTestDB(t)))

		old := testCandidate("fJ9rUzIMcZQ", "Old")
		if err := adapter.Store(ctx, "a query", &old); err != nil {
			t.Fatalf("store failed: %v", err)
		}
		fresh := testCandidate("dQw4w9WgXcQ", "New")
		if err := adapter.Store(ctx, "a query", &fresh); err != nil {
			t.Fatalf("second store failed: %v", err)
		}

		got, err := adapter.Lookup(ctx, "a query")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got.ID != "dQw4w9WgXcQ" {
			t.Errorf("expected replacement, got %q", got.ID)
		}
	})

	t.Run("nil candidate is a no-op", func(t *testing.T) {
		adapter := NewResolutionCacheAdapter(NewResolutionRepository(newTestDB(t)))
		if err := adapter.Store(ctx, "a query", nil); err != nil {
			t.Errorf("expected no-op, got %v", err)
		}
	})
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/kestrelworks/trackset/internal/auth"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog].
// Unset functions return benign zero values.
type MockCatalog struct {
	SearchFunc         func(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error)
	CreatePlaylistFunc func(ctx context.Context, title, description, privacy string) (string, error)
	AddTracksFunc      func(ctx context.Context, playlistID string, ids []string) ([]services.AddResult, error)
	ValidateFunc       func(ctx context.Context) error

	mu            sync.Mutex
	SearchCalls   []string
	CreatedTitles []string
	AddedIDs      []string
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, query)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	m.mu.Lock()
	m.CreatedTitles = append(m.CreatedTitles, title)
	m.mu.Unlock()

	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, title, description, privacy)
	}
	return "PLmock00000", nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, ids []string) ([]services.AddResult, error) {
	m.mu.Lock()
	m.AddedIDs = append(m.AddedIDs, ids...)
	m.mu.Unlock()

	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, playlistID, ids)
	}

	results := make([]services.AddResult, len(ids))
	for i, id := range ids {
		results[i] = services.AddResult{VideoID: id, Added: true}
	}
	return results, nil
}

func (m *MockCatalog) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockSessions is a test double for [services.SessionSource].
type MockSessions struct {
	Handle *auth.SessionHandle
	Err    error
}

func (m *MockSessions) EnsureReady(context.Context) (*auth.SessionHandle, error) {
	return m.Handle, m.Err
}

// MockCache is an in-memory [tasks.ResolutionCache] double.
type MockCache struct {
	mu      sync.Mutex
	entries map[string]*models.SearchCandidate
	Lookups int
	Stores  int
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string]*models.SearchCandidate)}
}

func (m *MockCache) Lookup(_ context.Context, query string) (*models.SearchCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	return m.entries[query], nil
}

func (m *MockCache) Store(_ context.Context, query string, candidate *models.SearchCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stores++
	m.entries[query] = candidate
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Music web [Catalog] implementation
//
// Talks to the music site's internal youtubei/v1 endpoints with an imported
// browser session. These endpoints are quota-free but undocumented, so
// response parsing is tolerant by construction.
package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kestrelworks/trackset/internal/auth"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/shared"
)

const (
	defaultMusicWebBaseURL = "https://music.youtube.com/youtubei/v1"
	musicWebOrigin         = "https://music.youtube.com"

	webRemixClientName    = "WEB_REMIX"
	webRemixClientVersion = "1.20250310.01.00"

	// Search filter params restricting results to songs.
	songsFilterParams = "EgWKAQIIAWoKEAkQBRAKEAMQBA%3D%3D"
)

// MusicWebClient implements [Catalog] against the internal web endpoints.
type MusicWebClient struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
	logger     *log.Logger
	now        func() time.Time
}

// MusicWebOption configures a [MusicWebClient].
type MusicWebOption func(*MusicWebClient)

// WithMusicWebBaseURL overrides the youtubei base URL.
func WithMusicWebBaseURL(baseURL string) MusicWebOption {
	return func(c *MusicWebClient) { c.baseURL = baseURL }
}

// WithMusicWebHTTPClient overrides the HTTP client.
func WithMusicWebHTTPClient(client *http.Client) MusicWebOption {
	return func(c *MusicWebClient) { c.httpClient = client }
}

// NewMusicWebClient creates a web client drawing browser headers from
// sessions.
func NewMusicWebClient(sessions SessionSource, opts ...MusicWebOption) *MusicWebClient {
	c := &MusicWebClient{
		baseURL:    defaultMusicWebBaseURL,
		httpClient: http.DefaultClient,
		sessions:   sessions,
		logger:     shared.NewLogger(nil),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the backend name.
func (c *MusicWebClient) Name() string {
	return "YouTube Music (web)"
}

// sapisidFromCookie pulls the SAPISID value the authorization hash is
// derived from.
func sapisidFromCookie(cookie string) string {
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		for _, name := range []string{"SAPISID=", "__Secure-3PAPISID="} {
			if v, ok := strings.CutPrefix(part, name); ok {
				return v
			}
		}
	}
	return ""
}

// sapisidHash computes the SAPISIDHASH authorization value: a SHA-1 over
// the unix timestamp, the SAPISID cookie and the origin, prefixed with the
// same timestamp.
func sapisidHash(sapisid, origin string, at time.Time) string {
	ts := at.Unix()
	sum := sha1.Sum(fmt.Appendf(nil, "%d %s %s", ts, sapisid, origin))
	return fmt.Sprintf("SAPISIDHASH %d_%x", ts, sum)
}

// doRequest posts one youtubei call with the session's headers and the
// per-request authorization hash.
func (c *MusicWebClient) doRequest(ctx context.Context, endpoint string, payload map[string]any, result any) error {
	handle, err := c.sessions.EnsureReady(ctx)
	if err != nil {
		return err
	}
	if handle.Backend() != auth.BackendBrowser {
		return fmt.Errorf("%w: music web client requires the browser backend", shared.ErrNotAuthenticated)
	}

	headers := handle.Headers()
	cookie := headers["Cookie"]
	if cookie == "" {
		cookie = headers["cookie"]
	}
	sapisid := sapisidFromCookie(cookie)
	if sapisid == "" {
		return fmt.Errorf("%w: session cookie missing SAPISID", shared.ErrInvalidCredentials)
	}

	payload["context"] = map[string]any{
		"client": map[string]any{
			"clientName":    webRemixClientName,
			"clientVersion": webRemixClientVersion,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cookie)
	req.Header.Set("Authorization", sapisidHash(sapisid, musicWebOrigin, c.now()))
	req.Header.Set("X-Origin", musicWebOrigin)
	req.Header.Set("Origin", musicWebOrigin)
	if ua, ok := headers["User-Agent"]; ok {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthRevoked, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search posts a songs-filtered search and extracts candidates from the
// renderer tree. The tree's exact shape is not stable, so extraction walks
// it and skips anything it cannot read.
func (c *MusicWebClient) Search(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, shared.ErrEmptyQuery
	}
	if limit < 1 {
		limit = 5
	}

	payload := map[string]any{
		"query":  query,
		"params": songsFilterParams,
	}

	var raw map[string]any
	if err := c.doRequest(ctx, "/search", payload, &raw); err != nil {
		return nil, err
	}

	candidates := extractCandidates(raw)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// extractCandidates collects every musicResponsiveListItemRenderer in the
// response tree and normalizes the readable ones.
func extractCandidates(tree map[string]any) []models.SearchCandidate {
	var candidates []models.SearchCandidate

	var walk func(node any)
	walk = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			if renderer, ok := v["musicResponsiveListItemRenderer"].(map[string]any); ok {
				if candidate, ok := parseListItem(renderer); ok {
					candidates = append(candidates, candidate)
				}
				return
			}
			for _, child := range v {
				walk(child)
			}
		case []any:
			for _, child := range v {
				walk(child)
			}
		}
	}
	walk(tree)

	return candidates
}

// parseListItem reads one search result renderer. Flex column zero holds
// the title; column one holds artist, album and duration runs.
func parseListItem(renderer map[string]any) (models.SearchCandidate, bool) {
	var candidate models.SearchCandidate

	if data, ok := renderer["playlistItemData"].(map[string]any); ok {
		candidate.ID, _ = data["videoId"].(string)
	}
	if candidate.ID == "" {
		return candidate, false
	}

	columns, _ := renderer["flexColumns"].([]any)
	for i, col := range columns {
		runs := columnRuns(col)
		switch i {
		case 0:
			if len(runs) > 0 {
				candidate.Title = runs[0]
			}
		case 1:
			for _, run := range runs {
				if run == " • " || run == "" {
					continue
				}
				if secs := parseClockDuration(run); secs > 0 {
					candidate.Duration = secs
					continue
				}
				if candidate.Channel == "" {
					candidate.Channel = run
				}
			}
		}
	}
	if candidate.Title == "" {
		return candidate, false
	}

	walk := func(keys ...string) any {
		var node any = renderer
		for _, key := range keys {
			m, ok := node.(map[string]any)
			if !ok {
				return nil
			}
			node = m[key]
		}
		return node
	}
	if thumbs, ok := walk("thumbnail", "musicThumbnailRenderer", "thumbnail", "thumbnails").([]any); ok && len(thumbs) > 0 {
		if thumb, ok := thumbs[0].(map[string]any); ok {
			candidate.ThumbnailURL, _ = thumb["url"].(string)
		}
	}

	candidate.IsRemix = titleIsRemix(candidate.Title)
	candidate.IsRemaster = titleIsRemaster(candidate.Title)
	candidate.IsFullAlbum = looksLikeFullAlbum(candidate.Title, candidate.Duration)

	return candidate, true
}

// columnRuns flattens one flex column's text runs.
func columnRuns(col any) []string {
	m, ok := col.(map[string]any)
	if !ok {
		return nil
	}
	renderer, ok := m["musicResponsiveListItemFlexColumnRenderer"].(map[string]any)
	if !ok {
		return nil
	}
	text, ok := renderer["text"].(map[string]any)
	if !ok {
		return nil
	}
	runs, ok := text["runs"].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(runs))
	for _, run := range runs {
		if rm, ok := run.(map[string]any); ok {
			if s, ok := rm["text"].(string); ok {
				out = append(out, s)
			}
		}
	}

	return out
}

// CreatePlaylist creates an empty playlist via playlist/create.
func (c *MusicWebClient) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("%w: playlist title", shared.ErrMissingArgument)
	}

	payload := map[string]any{
		"title":         title,
		"description":   description,
		"privacyStatus": strings.ToUpper(privacy),
	}
	if privacy == "" {
		payload["privacyStatus"] = "PRIVATE"
	}

	var created struct {
		PlaylistID string `json:"playlistId"`
	}
	if err := c.doRequest(ctx, "/playlist/create", payload, &created); err != nil {
		return "", err
	}
	if created.PlaylistID == "" {
		return "", fmt.Errorf("%w: create response missing playlist id", shared.ErrAPIRequest)
	}

	c.logger.Info("playlist created", "id", created.PlaylistID, "title", title)

	return created.PlaylistID, nil
}

// AddTracks appends ids through browse/edit_playlist, one action per id so
// a rejected video does not sink the whole batch.
func (c *MusicWebClient) AddTracks(ctx context.Context, playlistID string, ids []string) ([]AddResult, error) {
	results := make([]AddResult, 0, len(ids))

	for _, id := range ids {
		payload := map[string]any{
			"playlistId": playlistID,
			"actions": []map[string]any{
				{"action": "ACTION_ADD_VIDEO", "addedVideoId": id},
			},
		}

		var edit struct {
			Status string `json:"status"`
		}
		err := c.doRequest(ctx, "/browse/edit_playlist", payload, &edit)
		switch {
		case err != nil && ctx.Err() != nil:
			results = append(results, AddResult{VideoID: id, Reason: err.Error()})
			return results, err
		case err != nil:
			c.logger.Warn("track rejected", "video_id", id, "error", err)
			results = append(results, AddResult{VideoID: id, Reason: err.Error()})
		case edit.Status != "" && edit.Status != "STATUS_SUCCEEDED":
			results = append(results, AddResult{VideoID: id, Reason: edit.Status})
		default:
			results = append(results, AddResult{VideoID: id, Added: true})
		}
	}

	return results, nil
}

// Validate probes the session with a one-result search. A live search is
// the only reliable signal a browser session still works.
func (c *MusicWebClient) Validate(ctx context.Context) error {
	_, err := c.Search(ctx, "test", 1)
	return err
}

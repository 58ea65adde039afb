// Official Data API v3 [Catalog] implementation
//
// Quota-metered: every search costs 100 units and every playlist insert 50,
// against a 10k daily default. The client rate-limits itself and surfaces
// quota exhaustion as a typed error so the caller can fall back to the
// browser backend.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kestrelworks/trackset/internal/auth"
	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/shared"
	"golang.org/x/time/rate"
)

const defaultDataAPIBaseURL = "https://www.googleapis.com/youtube/v3"

// SessionSource yields a validated session handle per call. Token refresh
// happens inside the source, so clients never hold a credential across calls.
type SessionSource interface {
	EnsureReady(ctx context.Context) (*auth.SessionHandle, error)
}

// DataAPIClient implements [Catalog] against the official Data API v3.
type DataAPIClient struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
	limiter    *rate.Limiter
	logger     *log.Logger
}

// DataAPIOption configures a [DataAPIClient].
type DataAPIOption func(*DataAPIClient)

// WithDataAPIBaseURL overrides the API base URL.
func WithDataAPIBaseURL(baseURL string) DataAPIOption {
	return func(c *DataAPIClient) { c.baseURL = baseURL }
}

// WithDataAPIHTTPClient overrides the HTTP client.
func WithDataAPIHTTPClient(client *http.Client) DataAPIOption {
	return func(c *DataAPIClient) { c.httpClient = client }
}

// WithDataAPIRateLimit overrides the requests-per-second ceiling.
func WithDataAPIRateLimit(rps float64) DataAPIOption {
	return func(c *DataAPIClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewDataAPIClient creates a Data API client drawing bearer tokens from
// sessions.
func NewDataAPIClient(sessions SessionSource, opts ...DataAPIOption) *DataAPIClient {
	c := &DataAPIClient{
		baseURL:    defaultDataAPIBaseURL,
		httpClient: http.DefaultClient,
		sessions:   sessions,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     shared.NewLogger(nil),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the backend name.
func (c *DataAPIClient) Name() string {
	return "YouTube Data API"
}

type dataAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// mapAPIError translates an error response body into the shared taxonomy.
func mapAPIError(status int, body []byte) error {
	var apiErr dataAPIError
	reason := ""
	message := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		message = apiErr.Error.Message
		if len(apiErr.Error.Errors) > 0 {
			reason = apiErr.Error.Errors[0].Reason
		}
	}

	switch {
	case reason == "quotaExceeded" || reason == "dailyLimitExceeded":
		return fmt.Errorf("%w: %s", shared.ErrQuotaExceeded, message)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrAuthRevoked, message)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrForbidden, message)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, message)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, message)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, status, message)
	}
}

// doRequest performs one authenticated, rate-limited API call and decodes a
// 2xx JSON body into result.
func (c *DataAPIClient) doRequest(ctx context.Context, method, endpoint string, query url.Values, payload, result any) error {
	handle, err := c.sessions.EnsureReady(ctx)
	if err != nil {
		return err
	}
	if handle.Backend() != auth.BackendOAuth {
		return fmt.Errorf("%w: data API requires the oauth backend", shared.ErrNotAuthenticated)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+handle.AccessToken())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapAPIError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Search queries /search in the music category and merges /videos
// statistics and durations into the candidates.
func (c *DataAPIClient) Search(ctx context.Context, query string, limit int) ([]models.SearchCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, shared.ErrEmptyQuery
	}
	if limit < 1 {
		limit = 5
	}

	params := url.Values{
		"part":            {"snippet"},
		"q":               {query},
		"type":            {"video"},
		"maxResults":      {strconv.Itoa(limit)},
		"videoCategoryId": {"10"},
		"order":           {"relevance"},
	}

	var search searchResponse
	if err := c.doRequest(ctx, http.MethodGet, "/search", params, nil, &search); err != nil {
		return nil, err
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	details, err := c.videoDetails(ctx, ids)
	if err != nil {
		c.logger.Warn("video details lookup failed", "error", err)
		details = nil
	}

	candidates := make([]models.SearchCandidate, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}

		candidate := models.SearchCandidate{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			Channel:      item.Snippet.ChannelTitle,
			ThumbnailURL: item.Snippet.Thumbnails.Default.URL,
		}
		if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			candidate.PublishedAt = published
		}
		if d, ok := details[item.ID.VideoID]; ok {
			candidate.Duration = d.duration
			candidate.ViewCount = d.views
			candidate.LikeCount = d.likes
		}
		candidate.IsRemix = titleIsRemix(candidate.Title)
		candidate.IsRemaster = titleIsRemaster(candidate.Title)
		candidate.IsFullAlbum = looksLikeFullAlbum(candidate.Title, candidate.Duration)

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

type videoDetail struct {
	duration int
	views    int64
	likes    int64
}

func (c *DataAPIClient) videoDetails(ctx context.Context, ids []string) (map[string]videoDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"part": {"contentDetails,statistics"},
		"id":   {strings.Join(ids, ",")},
	}

	var videos videosResponse
	if err := c.doRequest(ctx, http.MethodGet, "/videos", params, nil, &videos); err != nil {
		return nil, err
	}

	details := make(map[string]videoDetail, len(videos.Items))
	for _, item := range videos.Items {
		details[item.ID] = videoDetail{
			duration: parseISODuration(item.ContentDetails.Duration),
			views:    parseCount(item.Statistics.ViewCount),
			likes:    parseCount(item.Statistics.LikeCount),
		}
	}

	return details, nil
}

// CreatePlaylist creates an empty playlist via POST /playlists.
func (c *DataAPIClient) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("%w: playlist title", shared.ErrMissingArgument)
	}
	if privacy == "" {
		privacy = "private"
	}

	payload := map[string]any{
		"snippet": map[string]any{
			"title":       title,
			"description": description,
		},
		"status": map[string]any{
			"privacyStatus": privacy,
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	params := url.Values{"part": {"snippet,status"}}
	if err := c.doRequest(ctx, http.MethodPost, "/playlists", params, payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create response missing playlist id", shared.ErrAPIRequest)
	}

	c.logger.Info("playlist created", "id", created.ID, "title", title)

	return created.ID, nil
}

// AddTracks inserts ids into the playlist one at a time, the only shape the
// playlistItems endpoint supports. Rejections are recorded per id; quota
// exhaustion aborts the remaining inserts since they cannot succeed either.
func (c *DataAPIClient) AddTracks(ctx context.Context, playlistID string, ids []string) ([]AddResult, error) {
	results := make([]AddResult, 0, len(ids))
	params := url.Values{"part": {"snippet"}}

	for i, id := range ids {
		payload := map[string]any{
			"snippet": map[string]any{
				"playlistId": playlistID,
				"resourceId": map[string]any{
					"kind":    "youtube#video",
					"videoId": id,
				},
			},
		}

		err := c.doRequest(ctx, http.MethodPost, "/playlistItems", params, payload, nil)
		if err == nil {
			results = append(results, AddResult{VideoID: id, Added: true})
			continue
		}

		if errors.Is(err, shared.ErrQuotaExceeded) || ctx.Err() != nil {
			for _, remaining := range ids[i:] {
				results = append(results, AddResult{VideoID: remaining, Reason: err.Error()})
			}
			return results, err
		}

		c.logger.Warn("track rejected", "video_id", id, "error", err)
		results = append(results, AddResult{VideoID: id, Reason: err.Error()})
	}

	return results, nil
}

// Validate checks the session with a minimal /channels call.
func (c *DataAPIClient) Validate(ctx context.Context) error {
	params := url.Values{
		"part": {"id"},
		"mine": {"true"},
	}
	return c.doRequest(ctx, http.MethodGet, "/channels", params, nil, nil)
}

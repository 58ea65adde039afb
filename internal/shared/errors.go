package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	// ErrAuthPending is the not-yet-authenticated case of a device flow
	// still waiting on user approval; it matches ErrNotAuthenticated
	// under errors.Is.
	ErrAuthPending      = fmt.Errorf("authorization pending: %w", ErrNotAuthenticated)
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrAuthRevoked      = fmt.Errorf("session revoked by service")

	// Transport errors
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRateLimited        = fmt.Errorf("rate limited by service")

	// Remote rejections
	ErrQuotaExceeded    = fmt.Errorf("API quota exceeded")
	ErrForbidden        = fmt.Errorf("request forbidden")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackRejected    = fmt.Errorf("track rejected by service")
	ErrAPIRequest       = fmt.Errorf("API request failed")

	// Input validation errors
	ErrEmptyQuery      = fmt.Errorf("empty query")
	ErrInvalidID       = fmt.Errorf("malformed video id")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

package auth

import (
	"fmt"
	"time"

	"github.com/kestrelworks/trackset/internal/shared"
)

// Backend identifies which credential variant is active.
type Backend int

const (
	BackendNone Backend = iota
	BackendOAuth
	BackendBrowser
)

func (b Backend) String() string {
	switch b {
	case BackendOAuth:
		return "oauth"
	case BackendBrowser:
		return "browser"
	default:
		return "none"
	}
}

// State enumerates the session lifecycle for the active backend.
type State int

const (
	Uninitialized State = iota
	AwaitingAuthorization
	Authorized
	Expired
)

func (s State) String() string {
	switch s {
	case AwaitingAuthorization:
		return "awaiting_authorization"
	case Authorized:
		return "authorized"
	case Expired:
		return "expired"
	default:
		return "uninitialized"
	}
}

// OAuthCredential holds the token pair issued by the device flow.
type OAuthCredential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the access token is expired at t, with a small
// leeway so a token about to lapse is refreshed before use.
func (c *OAuthCredential) ExpiredAt(t time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return t.After(c.ExpiresAt.Add(-30 * time.Second))
}

// BrowserCredential is the opaque header set captured from an authenticated
// web session. Browser sessions have no local expiry clock; validity is only
// discoverable through a live probe.
type BrowserCredential struct {
	Headers    map[string]string `json:"headers"`
	CapturedAt time.Time         `json:"captured_at"`
}

// Cookie returns the session cookie regardless of header-name casing.
func (c *BrowserCredential) Cookie() string {
	for key, value := range c.Headers {
		if key == "Cookie" || key == "cookie" {
			return value
		}
	}
	return ""
}

// Bundle is the tagged union persisted to disk. Exactly one variant is
// populated, named by the Backend tag.
type Bundle struct {
	Backend string             `json:"backend"`
	OAuth   *OAuthCredential   `json:"oauth,omitempty"`
	Browser *BrowserCredential `json:"browser,omitempty"`
}

// ActiveBackend maps the bundle tag to a [Backend].
func (b *Bundle) ActiveBackend() Backend {
	switch b.Backend {
	case "oauth":
		return BackendOAuth
	case "browser":
		return BackendBrowser
	default:
		return BackendNone
	}
}

// Validate checks that the tag and the populated variant agree.
func (b *Bundle) Validate() error {
	switch b.Backend {
	case "oauth":
		if b.OAuth == nil || b.OAuth.AccessToken == "" {
			return fmt.Errorf("%w: oauth bundle missing access token", shared.ErrInvalidCredentials)
		}
	case "browser":
		if b.Browser == nil || b.Browser.Cookie() == "" {
			return fmt.Errorf("%w: browser bundle missing session cookie", shared.ErrInvalidCredentials)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", shared.ErrInvalidCredentials, b.Backend)
	}
	return nil
}

// SessionHandle is a validated borrow of the active credential, handed to
// catalog clients for the duration of one call. It never outlives the
// manager's bundle.
type SessionHandle struct {
	backend Backend
	token   string
	headers map[string]string
}

// NewSessionHandle builds a handle directly, bypassing the manager. Meant
// for catalog client tests and fixed-credential wiring.
func NewSessionHandle(backend Backend, token string, headers map[string]string) *SessionHandle {
	return &SessionHandle{backend: backend, token: token, headers: headers}
}

// Backend returns the handle's credential variant.
func (h *SessionHandle) Backend() Backend { return h.backend }

// AccessToken returns the bearer token for the OAuth backend, or "".
func (h *SessionHandle) AccessToken() string { return h.token }

// Headers returns the captured header map for the browser backend, or nil.
func (h *SessionHandle) Headers() map[string]string { return h.headers }

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kestrelworks/trackset/internal/shared"
	"golang.org/x/oauth2"
)

// ProbeFunc performs a lightweight authenticated call to check that a
// credential is still accepted by the service. The manager cannot import the
// catalog clients, so the probe is injected by the wiring layer.
type ProbeFunc func(ctx context.Context, handle *SessionHandle) error

// Manager owns the active credential bundle and its lifecycle. All state
// transitions happen under one mutex, so a refresh triggered by concurrent
// callers runs once and its result is shared.
type Manager struct {
	mu     sync.Mutex
	store  *Store
	bundle *Bundle
	state  State

	clientID     string
	clientSecret string
	device       *deviceClient
	pending      *DeviceAuthorization

	probe  ProbeFunc
	logger *log.Logger
	now    func() time.Time
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithProbe injects the live-validation call used for browser sessions and
// explicit status checks.
func WithProbe(probe ProbeFunc) ManagerOption {
	return func(m *Manager) { m.probe = probe }
}

// WithHTTPClient overrides the client used for authorization server calls.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) { m.device.httpClient = client }
}

// WithEndpoints overrides the authorization server URLs.
func WithEndpoints(codeURL, tokenURL string) ManagerOption {
	return func(m *Manager) {
		m.device.codeURL = codeURL
		m.device.tokenURL = tokenURL
	}
}

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a manager over the given store and loads any persisted
// bundle. A bundle with a lapsed access token loads as [Expired], not as an
// error; the next EnsureReady call refreshes it.
func NewManager(store *Store, clientID, clientSecret string, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		store:        store,
		state:        Uninitialized,
		clientID:     clientID,
		clientSecret: clientSecret,
		device:       newDeviceClient(nil),
		logger:       shared.NewLogger(nil),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	bundle, err := store.Load()
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		m.bundle = bundle
		m.state = m.deriveState(bundle)
	}

	return m, nil
}

func (m *Manager) deriveState(bundle *Bundle) State {
	if bundle.ActiveBackend() == BackendOAuth && bundle.OAuth.ExpiredAt(m.now()) {
		return Expired
	}
	return Authorized
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ActiveBackend returns the backend of the persisted bundle, or BackendNone.
func (m *Manager) ActiveBackend() Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bundle == nil {
		return BackendNone
	}
	return m.bundle.ActiveBackend()
}

// BeginDeviceFlow starts the OAuth device-code flow and returns the code
// pair to show the user. The session moves to [AwaitingAuthorization];
// any previously persisted bundle stays untouched until the new flow
// actually completes.
func (m *Manager) BeginDeviceFlow(ctx context.Context) (*DeviceAuthorization, error) {
	if m.clientID == "" {
		return nil, fmt.Errorf("%w: oauth client id not configured", shared.ErrMissingCredentials)
	}

	code, err := m.device.RequestCode(ctx, m.clientID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.pending = code
	m.state = AwaitingAuthorization
	m.mu.Unlock()

	m.logger.Debug("device flow started", "user_code", code.UserCode)

	return code, nil
}

// CompleteDeviceFlow attempts one token exchange for the pending device
// code. It never blocks waiting for the user: before approval it returns
// [shared.ErrAuthPending] and the session stays in AwaitingAuthorization.
// Calling it after the flow already completed is a no-op.
func (m *Manager) CompleteDeviceFlow(ctx context.Context) error {
	m.mu.Lock()
	if m.pending == nil {
		if m.state == Authorized && m.bundle != nil && m.bundle.ActiveBackend() == BackendOAuth {
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()
		return fmt.Errorf("%w: no device flow in progress", shared.ErrNotAuthenticated)
	}
	pending := m.pending
	m.mu.Unlock()

	token, err := m.device.ExchangeCode(ctx, m.clientID, m.clientSecret, pending.DeviceCode)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			m.mu.Lock()
			m.pending = nil
			m.state = Uninitialized
			m.mu.Unlock()
		}
		return err
	}

	bundle := &Bundle{
		Backend: "oauth",
		OAuth: &OAuthCredential{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
			ExpiresAt:    token.Expiry,
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(bundle); err != nil {
		return err
	}
	m.bundle = bundle
	m.pending = nil
	m.state = Authorized

	m.logger.Info("device flow complete", "backend", BackendOAuth)

	return nil
}

// WaitForAuthorization polls CompleteDeviceFlow at the server-suggested
// interval until the user approves, the code expires, or ctx is done.
func (m *Manager) WaitForAuthorization(ctx context.Context) error {
	m.mu.Lock()
	pending := m.pending
	m.mu.Unlock()
	if pending == nil {
		return fmt.Errorf("%w: no device flow in progress", shared.ErrNotAuthenticated)
	}

	interval := time.Duration(pending.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := m.CompleteDeviceFlow(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAuthPending) {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// ImportBrowserSession adopts a captured header set as the active
// credential. Browser sessions carry no expiry metadata, so when a probe is
// configured the headers are verified with a live call before being
// persisted.
func (m *Manager) ImportBrowserSession(ctx context.Context, headers map[string]string) error {
	bundle := &Bundle{
		Backend: "browser",
		Browser: &BrowserCredential{
			Headers:    headers,
			CapturedAt: m.now(),
		},
	}
	if err := bundle.Validate(); err != nil {
		return err
	}

	if m.probe != nil {
		handle := &SessionHandle{backend: BackendBrowser, headers: headers}
		if err := m.probe(ctx, handle); err != nil {
			return fmt.Errorf("%w: imported session rejected: %v", shared.ErrInvalidCredentials, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(bundle); err != nil {
		return err
	}
	m.bundle = bundle
	m.pending = nil
	m.state = Authorized

	m.logger.Info("browser session imported", "headers", len(headers))

	return nil
}

// EnsureReady returns a handle for the active credential, refreshing an
// expired OAuth token first. It fails with [shared.ErrNotAuthenticated]
// when no flow has completed, and with [shared.ErrRefreshFailed] when the
// refresh is rejected, in which case the session drops back to
// Uninitialized and the stale bundle is cleared.
func (m *Manager) EnsureReady(ctx context.Context) (*SessionHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Uninitialized, AwaitingAuthorization:
		return nil, fmt.Errorf("%w: run auth login first", shared.ErrNotAuthenticated)
	}

	if m.bundle.ActiveBackend() == BackendBrowser {
		return &SessionHandle{backend: BackendBrowser, headers: m.bundle.Browser.Headers}, nil
	}

	cred := m.bundle.OAuth
	if m.state == Expired || cred.ExpiredAt(m.now()) {
		if err := m.refreshLocked(ctx); err != nil {
			return nil, err
		}
		cred = m.bundle.OAuth
	}

	return &SessionHandle{backend: BackendOAuth, token: cred.AccessToken}, nil
}

// refreshLocked exchanges the refresh token for a new access token. The
// caller holds m.mu, so concurrent EnsureReady callers queue behind one
// in-flight refresh and observe its outcome.
func (m *Manager) refreshLocked(ctx context.Context) error {
	cred := m.bundle.OAuth
	if cred.RefreshToken == "" {
		m.state = Expired
		return fmt.Errorf("%w: re-run auth login", shared.ErrNoRefreshToken)
	}

	cfg := &oauth2.Config{
		ClientID:     m.clientID,
		ClientSecret: m.clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: m.device.tokenURL},
	}
	octx := context.WithValue(ctx, oauth2.HTTPClient, m.device.httpClient)

	token, err := cfg.TokenSource(octx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		m.logger.Warn("token refresh rejected", "error", err)
		m.state = Uninitialized
		m.bundle = nil
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("failed to clear stale bundle", "error", clearErr)
		}
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	bundle := &Bundle{
		Backend: "oauth",
		OAuth: &OAuthCredential{
			AccessToken:  token.AccessToken,
			RefreshToken: refreshToken,
			TokenType:    token.TokenType,
			ExpiresAt:    token.Expiry,
		},
	}

	if err := m.store.Save(bundle); err != nil {
		return err
	}
	m.bundle = bundle
	m.state = Authorized

	m.logger.Debug("access token refreshed", "expires_at", token.Expiry)

	return nil
}

// Validate checks the active credential against the live service. For the
// browser backend this is the only way to learn the session is still good.
// A failed probe invalidates the bundle: the session drops back to
// Uninitialized and the stored credential is cleared, so later
// [Manager.EnsureReady] calls stop handing out the dead credential.
func (m *Manager) Validate(ctx context.Context) error {
	handle, err := m.EnsureReady(ctx)
	if err != nil {
		return err
	}
	if m.probe == nil {
		return nil
	}
	if err := m.probe(ctx, handle); err != nil {
		m.mu.Lock()
		m.state = Uninitialized
		m.bundle = nil
		m.pending = nil
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("failed to clear revoked bundle", "error", clearErr)
		}
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", shared.ErrAuthRevoked, err)
	}
	return nil
}

// Logout clears the persisted bundle and resets the session.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return err
	}
	m.bundle = nil
	m.pending = nil
	m.state = Uninitialized

	return nil
}

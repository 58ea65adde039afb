package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kestrelworks/trackset/internal/shared"
	"golang.org/x/oauth2"
)

// Google's OAuth endpoints for the device-code grant (RFC 8628). Note that
// Google returns "verification_url" rather than the RFC's verification_uri.
const (
	defaultDeviceCodeURL = "https://oauth2.googleapis.com/device/code"
	defaultTokenURL      = "https://oauth2.googleapis.com/token"

	youtubeScope    = "https://www.googleapis.com/auth/youtube"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// DeviceAuthorization is the code pair issued at the start of the device
// flow. VerificationURL and UserCode are shown to a human; DeviceCode is
// held for the completion call.
type DeviceAuthorization struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// deviceClient speaks the device-code grant against the authorization server.
type deviceClient struct {
	codeURL    string
	tokenURL   string
	httpClient *http.Client
}

func newDeviceClient(client *http.Client) *deviceClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &deviceClient{
		codeURL:    defaultDeviceCodeURL,
		tokenURL:   defaultTokenURL,
		httpClient: client,
	}
}

// RequestCode asks the authorization server for a device/user code pair.
func (d *deviceClient) RequestCode(ctx context.Context, clientID string) (*DeviceAuthorization, error) {
	form := url.Values{
		"client_id": {clientID},
		"scope":     {youtubeScope},
	}

	body, err := d.postForm(ctx, d.codeURL, form)
	if err != nil {
		return nil, err
	}

	var code DeviceAuthorization
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, fmt.Errorf("failed to decode device code response: %w", err)
	}
	if code.DeviceCode == "" || code.UserCode == "" {
		return nil, fmt.Errorf("%w: device code response missing codes", shared.ErrAuthFailed)
	}
	if code.Interval <= 0 {
		code.Interval = 5
	}

	return &code, nil
}

// ExchangeCode attempts to trade the device code for a token. Before the
// user approves it fails with [shared.ErrAuthPending]; after the code
// expires it fails with [shared.ErrTokenExpired]. Both are retryable states,
// not protocol errors.
func (d *deviceClient) ExchangeCode(ctx context.Context, clientID, clientSecret, deviceCode string) (*oauth2.Token, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"device_code":   {deviceCode},
		"grant_type":    {deviceGrantType},
	}

	body, err := d.postForm(ctx, d.tokenURL, form)
	if err != nil {
		return nil, err
	}

	var resp struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		TokenType        string `json:"token_type"`
		ExpiresIn        int    `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	switch resp.Error {
	case "":
	case "authorization_pending", "slow_down":
		return nil, fmt.Errorf("%w: user has not approved yet", shared.ErrAuthPending)
	case "expired_token":
		return nil, fmt.Errorf("%w: device code expired", shared.ErrTokenExpired)
	case "access_denied":
		return nil, fmt.Errorf("%w: user denied authorization", shared.ErrAuthFailed)
	default:
		return nil, fmt.Errorf("%w: %s: %s", shared.ErrAuthFailed, resp.Error, resp.ErrorDescription)
	}

	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access token", shared.ErrAuthFailed)
	}

	token := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
	}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return token, nil
}

// postForm sends a form-encoded POST and returns the body for both 2xx and
// 4xx responses; the device grant reports its polling states as 4xx JSON.
func (d *deviceClient) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: authorization server returned status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/internal/obs"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxDrain        = 64 << 10
)

// Navigator moves the user to the login entry point after an unrecoverable authentication failure.
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

// Session supplies the bearer token and clears credentials. *sessions.Store satisfies it.
type Session interface {
	oauth2.TokenSource
	LogoutIfCurrent(ctx context.Context, accessToken string) bool
}

// Refresher renews the access token. *refresh.Manager satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, staleAccessToken string) bool
}

// RequestConfig describes one call. Headers are applied after the defaults and so replace them.
type RequestConfig struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Client sends authenticated requests to the billing API.
//
// A call is sent once. If the answer is exactly 401 the token is refreshed once and the call is sent a second
// and final time with the new token; whatever that second answer is goes back to the caller. If the refresh
// fails the session is cleared, the navigator is told to show the login screen and ErrAuthenticationFailed is
// returned; a session replaced by a newer login in the meantime is left alone. Every other status is passed
// through untouched.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	refresher  Refresher
	navigator  Navigator
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client (primarily for testing)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per request timeout of the default http.Client
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

func New(baseURL string, session Session, refresher Refresher, navigator Navigator, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    session,
		refresher:  refresher,
		navigator:  navigator,
	}
	if c.navigator == nil {
		c.navigator = NavigatorFunc(func() {})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends cfg to url. A url starting with "/" is resolved against the base URL.
// The caller owns the returned body.
func (c *Client) Do(ctx context.Context, url string, cfg RequestConfig) (*http.Response, error) {
	tok, err := c.session.Token()
	if err != nil || tok.AccessToken == "" {
		return nil, errors.ErrNoCredentials
	}

	url = c.resolve(url)
	requestID := uuid.NewString()

	resp, err := c.send(ctx, url, cfg, tok, requestID, false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)

	if !c.refresher.Refresh(ctx, tok.AccessToken) {
		// A login that happened while refreshing owns the session now; only this call fails.
		if !c.session.LogoutIfCurrent(context.WithoutCancel(ctx), tok.AccessToken) {
			log.Info().Str("request_id", requestID).Str("url", url).Msg("Stale request failed after a new sign in")
			return nil, errors.ErrAuthenticationFailed
		}
		log.Warn().Str("request_id", requestID).Str("url", url).Msg("Session expired, signing out")
		c.navigator.RedirectToLogin()
		return nil, errors.ErrAuthenticationFailed
	}

	tok, err = c.session.Token()
	if err != nil || tok.AccessToken == "" {
		return nil, errors.ErrNoCredentials
	}
	return c.send(ctx, url, cfg, tok, requestID, true)
}

func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, path, RequestConfig{Method: http.MethodGet})
}

func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, path, RequestConfig{Method: http.MethodDelete})
}

func (c *Client) PostJSON(ctx context.Context, path string, body []byte) (*http.Response, error) {
	return c.Do(ctx, path, RequestConfig{Method: http.MethodPost, Body: body})
}

func (c *Client) PutJSON(ctx context.Context, path string, body []byte) (*http.Response, error) {
	return c.Do(ctx, path, RequestConfig{Method: http.MethodPut, Body: body})
}

func (c *Client) PatchJSON(ctx context.Context, path string, body []byte) (*http.Response, error) {
	return c.Do(ctx, path, RequestConfig{Method: http.MethodPatch, Body: body})
}

func (c *Client) resolve(url string) string {
	if strings.HasPrefix(url, "/") {
		return c.baseURL + url
	}
	return url
}

func (c *Client) send(ctx context.Context, url string, cfg RequestConfig, tok *oauth2.Token, requestID string, retry bool) (*http.Response, error) {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if cfg.Body != nil {
		body = bytes.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[apiclient send] build request")
	}

	req.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(req)
	req.Header.Set(RequestIDHeader, requestID)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if retry {
		tok.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		obs.RecordAPIRequest(method, 0, time.Since(start))
		return nil, &errors.TransportError{Op: method, URL: url, Err: err}
	}
	obs.RecordAPIRequest(method, resp.StatusCode, time.Since(start))
	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Bool("retry", retry).
		Msg("API request")
	return resp, nil
}

// discard drains a bounded amount of the body so the connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()
}

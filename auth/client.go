package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/internal/obs"
)

const maxErrorBody = 64 << 10

// Client talks to the unauthenticated auth endpoints of the billing API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client (primarily for testing)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
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

// Login exchanges credentials for a user record and a token pair.
// A non-2xx answer is an *errors.AuthenticationError; a network failure is an *errors.TransportError.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidRequest, FormatValidationErrors(err))
	}

	resp, err := c.post(ctx, LoginPath, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.AuthenticationError{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	var body envelope[LoginResult]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrapf(err, "[auth Login] decode response")
	}
	if body.Data.AccessToken == "" {
		return nil, &errors.AuthenticationError{StatusCode: resp.StatusCode, Message: MissingAccessTokenErr.Error()}
	}
	return &body.Data, nil
}

// Refresh exchanges a refresh token for a new access token (and possibly a rotated refresh token).
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, MissingRefreshTokenErr
	}

	resp, err := c.post(ctx, RefreshPath, RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.RemoteRejection{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	var body envelope[TokenPair]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrapf(err, "[auth Refresh] decode response")
	}
	if body.Data.AccessToken == "" {
		return nil, MissingAccessTokenErr
	}
	return &body.Data, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "[auth post] encode body")
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "[auth post] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		obs.RecordAPIRequest(http.MethodPost, 0, time.Since(start))
		return nil, &errors.TransportError{Op: http.MethodPost, URL: url, Err: err}
	}
	obs.RecordAPIRequest(http.MethodPost, resp.StatusCode, time.Since(start))
	return resp, nil
}

// readMessage pulls the "message" field out of an error body, falling back to the raw text.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}

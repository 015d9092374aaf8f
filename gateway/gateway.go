// Package gateway is the single choke point for outbound API calls. It
// attaches the current access token at send time, normalizes every failure
// into one shape, rate-limits outbound traffic, and coordinates token
// refresh so that any number of concurrently failing requests produce
// exactly one refresh call per cycle.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/session"
	"github.com/harborline/storefront-go/wire"
)

const (
	defaultTimeout = 30 * time.Second

	// Outbound limiter defaults. The storefront API rate-limits per client;
	// staying under it client-side avoids burning requests on 429s.
	defaultRateLimit = rate.Limit(20)
	defaultRateBurst = 40
)

// Navigator is the capability the gateway uses for the logout side effect:
// on an irrecoverable auth failure the customer is sent to the login entry
// point with their original destination preserved for the post-login return.
type Navigator interface {
	CurrentPath() string
	RedirectToLogin(returnTo string)
}

// EntryRoute reports whether path is an unauthenticated entry route, where
// a logout redirect would be pointless.
func EntryRoute(path string) bool {
	return path == "/login" || path == "/register" || strings.HasPrefix(path, "/login?")
}

// Client wraps every outbound call to the commerce API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	store       session.Store
	coordinator *RefreshCoordinator
	limiter     *rate.Limiter
	nav         Navigator
	logger      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for refresh and request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithNavigator installs the logout redirect capability.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

// WithRateLimit overrides the outbound request limiter.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// New creates a gateway client for the API at baseURL, reading and writing
// credentials through store.
func New(baseURL string, store session.Store, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[gateway.New] baseURL is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[gateway.New] session store is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		limiter:    rate.NewLimiter(defaultRateLimit, defaultRateBurst),
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	client.coordinator = NewRefreshCoordinator(store, client.refreshCall, client.redirectToLogin, client.logger)
	return client, nil
}

// Session returns the current session, or nil when unauthenticated.
func (c *Client) Session() *session.Session {
	return c.store.Get()
}

// Do executes one API request. A non-nil body is marshalled as JSON; a
// non-nil target receives the decoded response. On an authorization
// failure the request joins (or initiates) a refresh cycle and is replayed
// once with the new token; a replayed request never refreshes again.
func (c *Client) Do(ctx context.Context, method, path string, body, target any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return apperrors.Wrapf(err, "[Client.Do] marshal %s %s body", method, path)
		}
	}

	resp, bodyBytes, err := c.send(ctx, method, path, payload, c.currentToken())
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		newToken, refreshErr := c.coordinator.Refresh(ctx)
		if refreshErr != nil {
			return refreshErr
		}
		resp, bodyBytes, err = c.send(ctx, method, path, payload, newToken)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode >= 400 {
		return normalizeStatus(resp.StatusCode, bodyBytes)
	}
	if target == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return apperrors.Wrapf(err, "[Client.Do] decode %s %s response", method, path)
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, target any) error {
	return c.Do(ctx, http.MethodGet, path, nil, target)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, target any) error {
	return c.Do(ctx, http.MethodPost, path, body, target)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, target any) error {
	return c.Do(ctx, http.MethodPut, path, body, target)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, target any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, target)
}

func (c *Client) currentToken() string {
	if s := c.store.Get(); s != nil {
		return s.AccessToken
	}
	return ""
}

// send performs one HTTP exchange and drains the body so the response can
// be inspected after the connection is released.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, apperrors.Cancelled("request aborted while rate limited", err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, apperrors.Wrapf(err, "[Client.send] build %s %s", method, path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, apperrors.Cancelled(fmt.Sprintf("%s %s aborted", method, path), ctx.Err())
		}
		return nil, nil, apperrors.Network(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, apperrors.Network(fmt.Sprintf("read %s %s response", method, path), err)
	}
	return resp, bodyBytes, nil
}

// refreshCall is the one network call of a refresh cycle. It deliberately
// bypasses Do: a 401 from the refresh endpoint must fail the cycle, not
// start another one.
func (c *Client) refreshCall(ctx context.Context, refreshToken string) (string, time.Time, error) {
	payload, err := json.Marshal(wire.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", time.Time{}, apperrors.Wrapf(err, "[Client.refreshCall] marshal")
	}

	resp, bodyBytes, err := c.send(ctx, http.MethodPost, "/auth/refresh", payload, "")
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode >= 400 {
		return "", time.Time{}, normalizeStatus(resp.StatusCode, bodyBytes)
	}

	var dto wire.RefreshResponse
	if err := json.Unmarshal(bodyBytes, &dto); err != nil {
		return "", time.Time{}, apperrors.Wrapf(err, "[Client.refreshCall] decode")
	}
	if dto.AccessToken == "" {
		return "", time.Time{}, apperrors.New(apperrors.KindAuth, "refresh response carried no access token")
	}

	expiresAt := session.ExpiryFromToken(dto.AccessToken)
	if dto.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(dto.ExpiresIn) * time.Second)
	}
	return dto.AccessToken, expiresAt, nil
}

// redirectToLogin is the logout side effect after a failed cycle. Already
// being on an entry route suppresses the redirect.
func (c *Client) redirectToLogin() {
	if c.nav == nil {
		return
	}
	current := c.nav.CurrentPath()
	if EntryRoute(current) {
		return
	}
	c.nav.RedirectToLogin(current)
}

// normalizeStatus reduces an error response body to the shared failure
// shape. Authorization failures map to auth errors; everything else the
// server rejected is surfaced verbatim as a business error.
func normalizeStatus(status int, body []byte) error {
	var dto wire.ErrorResponse
	_ = json.Unmarshal(body, &dto)
	message := dto.Message
	if message == "" {
		message = http.StatusText(status)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &apperrors.Error{Kind: apperrors.KindAuth, Message: message, Status: status, Fields: dto.Errors}
	}
	return apperrors.Business(message, status, dto.Errors)
}

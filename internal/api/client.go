package api

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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iba200/otaku-wireframe/internal/logger"
	"github.com/iba200/otaku-wireframe/internal/metrics"
)

// Version is reported in the User-Agent header of every request.
const Version = "1.0.0"

const (
	apiPrefix       = "/api/v1"
	requestIDHeader = "X-Request-ID"
)

// errNoSession is returned by refreshAccessToken when there are no stored
// tokens at all, so a 401 cannot be recovered from and is not a session
// expiry either.
var errNoSession = errors.New("no stored session")

// TokenStore is the credential storage the client reads before every request
// and writes after every refresh.
type TokenStore interface {
	Load() (access, refresh string, err error)
	Save(access, refresh string) error
	Clear() error
}

// Notifier receives out-of-band signals about request outcomes that should
// reach the user regardless of which call triggered them.
type Notifier interface {
	Forbidden(method, path string)
	ServerError(method, path string, status int)
	SessionExpired()
}

// NopNotifier discards all signals. Useful in tests and scripts.
type NopNotifier struct{}

func (NopNotifier) Forbidden(method, path string) {}

func (NopNotifier) ServerError(method, path string, status int) {}

func (NopNotifier) SessionExpired() {}

// Client talks to the community backend. All resource access goes through
// the typed service fields, which share one transport with bearer auth and
// a single refresh-and-replay pass on 401.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenStore
	notifier Notifier

	// refreshMu serializes token refreshes so concurrent 401s produce a
	// single refresh call instead of a stampede.
	refreshMu sync.Mutex

	Auth     *AuthService
	Users    *UsersService
	Articles *ArticlesService
	Forum    *ForumService
	Comments *CommentsService
}

// NewClient validates serverURL and wires the typed services. The notifier
// may be nil, in which case signals are discarded.
func NewClient(serverURL string, timeout time.Duration, tokens TokenStore, notifier Notifier) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", serverURL)
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	c := &Client{
		baseURL:  strings.TrimRight(serverURL, "/"),
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		notifier: notifier,
	}
	c.Auth = &AuthService{client: c}
	c.Users = &UsersService{client: c}
	c.Articles = &ArticlesService{client: c}
	c.Forum = &ForumService{client: c}
	c.Comments = &CommentsService{client: c}
	return c, nil
}

// Health reports backend liveness. The endpoint lives outside the versioned
// API surface.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, endpoint{method: http.MethodGet, path: "/health", resource: "health"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health is the backend liveness report.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// endpoint describes one backend call. Paths are relative to the versioned
// API root unless they start with a slash.
type endpoint struct {
	method   string
	path     string
	query    url.Values
	body     any
	resource string
}

// do performs one call against the backend: it attaches the stored access
// token when present, sends the request, and decodes a 2xx response into
// out. A 401 triggers at most one token refresh followed by one replay of
// the original request; a second 401 ends the session.
func (c *Client) do(ctx context.Context, ep endpoint, out any) error {
	var payload []byte
	if ep.body != nil {
		var err error
		payload, err = json.Marshal(ep.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	access, _, err := c.tokens.Load()
	if err != nil {
		logger.Warn("token load failed, sending request unauthenticated", "error", err)
		access = ""
	}

	requestID := uuid.New().String()
	retried := false
	for {
		req, err := c.newHTTPRequest(ctx, ep, payload, access, requestID)
		if err != nil {
			return err
		}

		timer := metrics.NewTimer()
		resp, err := c.http.Do(req)
		if err != nil {
			metrics.ObserveClientRequest(ep.method, ep.resource, "0", timer.Elapsed())
			return fmt.Errorf("%s %s: %w", ep.method, ep.path, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.ObserveClientRequest(ep.method, ep.resource, strconv.Itoa(resp.StatusCode), timer.Elapsed())
		if readErr != nil {
			return fmt.Errorf("%s %s: read response: %w", ep.method, ep.path, readErr)
		}
		logger.Debug("request done",
			"request_id", requestID,
			"method", ep.method,
			"path", ep.path,
			"status", resp.StatusCode,
			"replayed", retried,
		)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%s %s: decode response: %w", ep.method, ep.path, err)
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized:
			if retried {
				// The replayed request was rejected too.
				c.expireSession()
				return ErrSessionExpired
			}
			newAccess, refreshErr := c.refreshAccessToken(ctx, access)
			if errors.Is(refreshErr, errNoSession) {
				// Never signed in, nothing to recover. Propagate the
				// original rejection unchanged.
				return newError(resp.StatusCode, body)
			}
			if refreshErr != nil {
				return refreshErr
			}
			access = newAccess
			retried = true
			metrics.ObserveReplay()
			continue

		case resp.StatusCode == http.StatusForbidden:
			c.notifier.Forbidden(ep.method, ep.path)
			return newError(resp.StatusCode, body)

		case resp.StatusCode >= 500:
			c.notifier.ServerError(ep.method, ep.path, resp.StatusCode)
			return newError(resp.StatusCode, body)

		default:
			return newError(resp.StatusCode, body)
		}
	}
}

func (c *Client) newHTTPRequest(ctx context.Context, ep endpoint, payload []byte, access, requestID string) (*http.Request, error) {
	full := c.baseURL
	if strings.HasPrefix(ep.path, "/") {
		full += ep.path
	} else {
		full += apiPrefix + "/" + ep.path
	}
	if len(ep.query) > 0 {
		full += "?" + ep.query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, ep.method, full, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "otaku-wireframe/"+Version)
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	return req, nil
}

// refreshAccessToken exchanges the stored refresh token for a fresh access
// token and persists the result. stale is the access token the failed
// request was sent with; when another goroutine already refreshed, the newer
// stored token is returned without a second exchange.
func (c *Client) refreshAccessToken(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh, err := c.tokens.Load()
	if err != nil {
		return "", fmt.Errorf("load tokens: %w", err)
	}
	if access != "" && access != stale {
		return access, nil
	}
	if refresh == "" {
		if access == "" {
			return "", errNoSession
		}
		c.expireSession()
		return "", ErrSessionExpired
	}

	reqBody, err := json.Marshal(map[string]string{"refresh_token": refresh})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/auth/refresh", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveTokenRefresh("error")
		return "", fmt.Errorf("refresh token: %w", err)
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		metrics.ObserveTokenRefresh("error")
		return "", fmt.Errorf("refresh token: read response: %w", readErr)
	}

	if resp.StatusCode != http.StatusOK {
		// The refresh token itself was rejected. The session is over.
		metrics.ObserveTokenRefresh("rejected")
		logger.Debug("refresh rejected", "status", resp.StatusCode)
		c.expireSession()
		return "", ErrSessionExpired
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		metrics.ObserveTokenRefresh("error")
		return "", fmt.Errorf("refresh token: decode response: %w", err)
	}
	if result.AccessToken == "" {
		metrics.ObserveTokenRefresh("error")
		return "", fmt.Errorf("refresh token: empty access token in response")
	}
	if result.RefreshToken != "" {
		refresh = result.RefreshToken
	}
	if err := c.tokens.Save(result.AccessToken, refresh); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}
	metrics.ObserveTokenRefresh("success")
	return result.AccessToken, nil
}

// expireSession drops the stored credentials and signals the failure once
// per call site. The notifier is responsible for deduplicating user-facing
// output.
func (c *Client) expireSession() {
	if err := c.tokens.Clear(); err != nil {
		logger.Warn("clearing tokens failed", "error", err)
	}
	metrics.ObserveAuthFailure()
	c.notifier.SessionExpired()
}

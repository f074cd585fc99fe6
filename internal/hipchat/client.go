package hipchat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catchup/internal/metrics"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Factory builds per-invocation clients bound to a caller's access token.
// The base URL, HTTP client, logger, and counters are shared.
type Factory struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Factory.
type Option func(*Factory)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(f *Factory) { f.http = h }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Factory) { f.http.Timeout = d }
}

// WithMetrics attaches upstream request counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Factory) { f.metrics = m }
}

// NewFactory creates a client factory for the HipChat API at baseURL.
func NewFactory(baseURL string, logger *zap.Logger, opts ...Option) *Factory {
	f := &Factory{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Client issues authenticated requests on behalf of one caller. Every
// request carries the access token as an auth_token query parameter.
type Client struct {
	f     *Factory
	token string
}

// Client binds an access token to a new client.
func (f *Factory) Client(accessToken string) *Client {
	return &Client{f: f, token: accessToken}
}

// get fetches baseURL+path. ok is true iff the HTTP status is in
// [200,400). Transport failures and rejections are logged here; callers
// treat ok=false as "no data". There are no retries: a 429 is logged with
// the server's message and given up on.
func (c *Client) get(ctx context.Context, path string) (body []byte, ok bool) {
	u := c.f.baseURL + path
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	c.f.logger.Debug("calling hipchat API", zap.String("url", u))
	u += sep + "auth_token=" + url.QueryEscape(c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.f.logger.Error("build hipchat request failed", zap.Error(err))
		c.count(metrics.OutcomeTransportError)
		return nil, false
	}
	resp, err := c.f.http.Do(req)
	if err != nil {
		c.f.logger.Error("hipchat request failed", zap.Error(err))
		c.count(metrics.OutcomeTransportError)
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		c.f.logger.Error("read hipchat response failed", zap.Error(err))
		c.count(metrics.OutcomeTransportError)
		return nil, false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusTooManyRequests {
			var rl rateLimitBody
			if err := json.Unmarshal(body, &rl); err == nil && rl.Error.Message != "" {
				c.f.logger.Warn("hipchat rate limit", zap.String("message", rl.Error.Message))
			}
		}
		c.f.logger.Error("hipchat rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
			zap.Any("headers", resp.Header))
		c.count(metrics.OutcomeRejected)
		return body, false
	}

	c.count(metrics.OutcomeOK)
	return body, true
}

func (c *Client) count(outcome string) {
	if c.f.metrics != nil {
		c.f.metrics.UpstreamRequests.WithLabelValues(outcome).Inc()
	}
}

// UserID exchanges the access token for the owning user's id via the
// token introspection endpoint. Unlike the roster fetches, a response
// without an owner id is an error: it means the token itself is bad, and
// the caller surfaces that to the user.
func (c *Client) UserID(ctx context.Context) (string, error) {
	c.f.logger.Info("getting user info")
	body, _ := c.get(ctx, "oauth/token/"+url.PathEscape(c.token))
	var session struct {
		Owner struct {
			ID json.Number `json:"id"`
		} `json:"owner"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("decode token session: %w", err)
	}
	if session.Owner.ID == "" {
		return "", fmt.Errorf("token session has no owner id")
	}
	return session.Owner.ID.String(), nil
}

// AutoJoinRooms fetches the caller's auto-join room roster. Failures are
// logged and yield an empty roster.
func (c *Client) AutoJoinRooms(ctx context.Context, userID string) []Room {
	c.f.logger.Info("getting auto-join rooms")
	path := fmt.Sprintf("user/%s/preference/auto-join?expand=items&max-results=1000", url.PathEscape(userID))
	body, ok := c.get(ctx, path)
	if !ok {
		return nil
	}
	var pg page[Room]
	if err := json.Unmarshal(body, &pg); err != nil {
		c.f.logger.Error("decode auto-join rooms failed", zap.Error(err))
		return nil
	}
	c.f.logger.Info("fetched auto-join rooms", zap.Int("rooms", len(pg.Items)))
	return pg.Items
}

// Users fetches the direct-message peer roster. Failures are logged and
// yield an empty roster.
func (c *Client) Users(ctx context.Context) []User {
	c.f.logger.Info("getting users")
	body, ok := c.get(ctx, "user?expand=items&max-results=1000")
	if !ok {
		return nil
	}
	var pg page[User]
	if err := json.Unmarshal(body, &pg); err != nil {
		c.f.logger.Error("decode users failed", zap.Error(err))
		return nil
	}
	c.f.logger.Info("fetched users", zap.Int("users", len(pg.Items)))
	return pg.Items
}

// ReadState fetches the per-conversation last-read markers, expanded with
// unread counts. Failures are logged and yield an empty feed.
func (c *Client) ReadState(ctx context.Context) []ReadStateEntry {
	body, ok := c.get(ctx, "readstate?expand=items.unreadCount")
	if !ok {
		return nil
	}
	var pg page[ReadStateEntry]
	if err := json.Unmarshal(body, &pg); err != nil {
		c.f.logger.Error("decode readstate failed", zap.Error(err))
		return nil
	}
	return pg.Items
}

// RoomHistoryLatest fetches the latest history window for a room. ok is
// false when the fetch or decode failed.
func (c *Client) RoomHistoryLatest(ctx context.Context, idOrName string) ([]Message, bool) {
	return c.history(ctx, fmt.Sprintf("room/%s/history/latest", url.PathEscape(idOrName)))
}

// UserHistoryLatest fetches the latest history window for a direct
// conversation. ok is false when the fetch or decode failed.
func (c *Client) UserHistoryLatest(ctx context.Context, idOrEmail string) ([]Message, bool) {
	return c.history(ctx, fmt.Sprintf("user/%s/history/latest", url.PathEscape(idOrEmail)))
}

func (c *Client) history(ctx context.Context, path string) ([]Message, bool) {
	body, ok := c.get(ctx, path)
	if !ok {
		return nil, false
	}
	var pg page[Message]
	if err := json.Unmarshal(body, &pg); err != nil {
		c.f.logger.Error("decode history failed", zap.Error(err))
		return nil, false
	}
	return pg.Items, true
}

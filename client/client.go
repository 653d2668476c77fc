package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-school/client/session"
)

// Navigator performs full page navigations
type Navigator interface {
	HardRedirect(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) HardRedirect(path string) { f(path) }

type nopNavigator struct{}

func (nopNavigator) HardRedirect(string) {}

// Client talks to the school API on behalf of a session
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	store     session.Store
	manager   *session.Manager
	navigator Navigator
	logger    session.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithNavigator(nav Navigator) Option {
	return func(c *Client) {
		if nav != nil {
			c.navigator = nav
		}
	}
}

// WithSessionManager attaches the manager updated on login, logout and
// rejected sessions
func WithSessionManager(m *session.Manager) Option {
	return func(c *Client) {
		c.manager = m
	}
}

func WithLogger(logger session.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for the API served at baseURL
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid api base url", errors.CategoryBadInput).
			WithTextCode("INVALID_BASE_URL").
			WithMetadata(map[string]any{"base_url": baseURL})
	}

	if store == nil {
		store = session.NewMemoryStore()
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		store:     store,
		navigator: nopNavigator{},
		logger:    slog.Default().With("module", "client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// HTTPClient returns the transport client. The default one has no
// timeout, deadlines come from the request context.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Session returns the attached session manager, it may be nil
func (c *Client) Session() *session.Manager {
	return c.manager
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends a JSON request and decodes a 2xx JSON response into out.
// A 401 signs the session out and redirects to the login page.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return networkError(method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return networkError(method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		apiErr := newAPIError(method, path, res.StatusCode, eb)

		if res.StatusCode == http.StatusUnauthorized {
			c.unauthorized()
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Status:  res.StatusCode,
			Message: "invalid response body",
			Method:  method,
			Path:    path,
			cause:   err,
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid request path").
			WithMetadata(map[string]any{"path": path})
	}

	target := *c.baseURL
	target.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	target.RawQuery = ref.RawQuery

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, ok, err := c.store.Load()
	if err != nil {
		c.logger.Warn("failed to load session token", "error", err)
	} else if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) unauthorized() {
	c.logger.Info("session rejected, signing out")

	if err := c.store.Clear(); err != nil {
		c.logger.Error("failed to clear session token", "error", err)
	}

	if c.manager != nil {
		c.manager.Reset()
	}

	c.navigator.HardRedirect("/")
}

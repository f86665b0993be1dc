package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/theLastOfCats/gameshelf/internal/model"
)

const (
	DefaultBaseURL   = "https://api.rawg.io/api"
	DefaultUserAgent = "gameshelf/1.0"
)

// Transport is the remote catalog.
type Transport interface {
	FetchList(ctx context.Context, endpoint string, params url.Values) (*model.ListResponse, error)
	FetchOne(ctx context.Context, endpoint string, id int64, params url.Values, target any) error
	// Fetch decodes any other list payload (genres, platforms) into target.
	Fetch(ctx context.Context, endpoint string, params url.Values, target any) error
}

// TransportError is returned for every failed catalog call. Calls are never
// retried; the caller decides what to tell the user.
type TransportError struct {
	Op         string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s %s: status %d", e.Op, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err came from the catalog transport.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client talks to a RAWG compatible HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *rate.Limiter
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit paces outgoing requests to rps per second. Zero disables pacing.
func WithRateLimit(rps int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1)
	}
}

func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchList(ctx context.Context, endpoint string, params url.Values) (*model.ListResponse, error) {
	var res model.ListResponse
	if err := c.get(ctx, "list", endpoint, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) FetchOne(ctx context.Context, endpoint string, id int64, params url.Values, target any) error {
	return c.get(ctx, "get", endpoint+"/"+strconv.FormatInt(id, 10), params, target)
}

func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values, target any) error {
	return c.get(ctx, "list", endpoint, params, target)
}

func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values, target any) error {
	fail := func(status int, err error) error {
		return &TransportError{Op: op, Endpoint: endpoint, StatusCode: status, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(0, err)
		}
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("key", c.apiKey)
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/") + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fail(resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fail(0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

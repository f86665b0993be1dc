package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/session"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// TokenSource supplies the bearer token for document calls.
type TokenSource interface {
	Token() string
}

// Client speaks to cmd/server. It is both the document store used by the
// favorites synchronizer and the authenticator behind a session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// SetTokenSource wires the session that owns the bearer token.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) Register(ctx context.Context, email, password string) (*model.Identity, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, endpoint, email, password string) (*model.Identity, error) {
	var id model.Identity
	err := c.do(ctx, http.MethodPost, endpoint, credentials{Email: email, Password: password}, &id, false)
	if errors.Is(err, ErrUnauthorized) {
		return nil, session.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *Client) Get(ctx context.Context, path string) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodGet, documentURL(path, false), nil, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.Get(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type documentList struct {
	Documents []model.Document `json:"documents"`
}

func (c *Client) List(ctx context.Context, collection string) ([]model.Document, error) {
	var res documentList
	if err := c.do(ctx, http.MethodGet, documentURL(collection, false), nil, &res, true); err != nil {
		return nil, err
	}
	return res.Documents, nil
}

func (c *Client) Upsert(ctx context.Context, path string, w model.Write, merge bool) error {
	return c.do(ctx, http.MethodPut, documentURL(path, merge), w, nil, true)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, documentURL(path, false), nil, nil, true)
}

func documentURL(path string, merge bool) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	u := "/documents/" + strings.Join(parts, "/")
	if merge {
		u += "?merge=true"
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, body, target any, authed bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		if c.tokens == nil || c.tokens.Token() == "" {
			return ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&apiErr)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

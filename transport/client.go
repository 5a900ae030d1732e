// Package transport is the single point where the marketplace API base URL,
// credentials, and auth header are assembled. Every network call in the SDK
// flows through Client.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 8 << 20 // 8 MiB
)

// Client issues requests against the marketplace REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Config captures the settings for building a transport client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Log     zerolog.Logger
}

// New builds a Client. A cookie jar is always installed so same-site session
// cookies ride alongside the bearer header, matching the API's dual scheme.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		log: cfg.Log,
	}
}

// APIError is a non-2xx response from the server. Msg carries the server's
// structured {"message": ...} payload verbatim for display; Unwrap maps the
// status code to the matching domain sentinel so callers can branch with
// errors.Is.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return domain.ErrRejected
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path, token string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, token, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path, token string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, token, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path, token string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, token, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path, token string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, token, nil, out)
}

// PostMultipart performs a POST with a prebuilt multipart body. The body is
// passed through untouched; contentType must carry the multipart boundary.
func (c *Client) PostMultipart(ctx context.Context, path, token string, body io.Reader, contentType string, out any) error {
	return c.do(ctx, http.MethodPost, path, token, body, contentType, out)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("transport: marshal request body: %w", err)
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, reader, contentType, out)
}

// do executes one request. The relative path is appended to the configured
// base URL; the bearer header is attached only when a token is supplied.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("transport: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("transport: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(payload, &envelope)
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("request rejected")
		return &APIError{Status: resp.StatusCode, Msg: envelope.Message}
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("transport: decode response: %w", err)
		}
	}
	return nil
}

// Message extracts the user-displayable text from an action error: the
// server's message verbatim when one was attached, or a generic fallback for
// bare transport failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "something went wrong, please try again"
}

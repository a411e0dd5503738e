// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// client.go - Authenticated HTTP client shared by every action module.
//
// The client holds no per-service state: each call names the scope list it
// needs, a fresh bearer token is requested from the injected credential
// (token caching is the credential library's concern), and the response is
// either decoded JSON or an *APIError. Graph, ARM, Power BI, and Azure
// OpenAI all go through this one path.

package msapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/garridom/m365-gateway/internal/logging"
	"github.com/garridom/m365-gateway/internal/msauth"
)

const defaultTimeout = 30 * time.Second

// Client performs bearer-authenticated REST calls against downstream APIs.
type Client struct {
	cred       azcore.TokenCredential
	httpClient *http.Client
	limiter    *RateLimiter
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit overrides the default rate limiting configuration.
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(c *Client) { c.limiter = NewRateLimiter(cfg) }
}

// New creates an authenticated client around a token credential.
func New(cred azcore.TokenCredential, opts ...Option) *Client {
	c := &Client{
		cred:    cred,
		limiter: NewRateLimiter(DefaultRateLimit),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	// The timeout covers the whole exchange, body read included. A caller
	// context with an earlier deadline still wins. An injected HTTP client
	// keeps whatever settings its owner gave it.
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Do performs an authenticated request and returns the raw response.
// The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, url string, scopes []string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := msauth.Token(ctx, c.cred, scopes)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	logging.APILogger.Debug("Outbound request", "method", method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	if IsRateLimited(resp.StatusCode) {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.limiter.RecordRateLimitError(retryAfter)
	}
	logging.APILogger.Debug("Response received", "method", method, "url", url, "status", resp.StatusCode)
	return resp, nil
}

// DoJSON performs an authenticated request with an optional JSON payload and
// returns the response body. Non-2xx responses become an *APIError; a 204 or
// empty body returns nil.
func (c *Client) DoJSON(ctx context.Context, method, url string, scopes []string, payload any) (json.RawMessage, error) {
	var body io.Reader
	headers := map[string]string{}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.Do(ctx, method, url, scopes, body, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(resp.StatusCode, content)
	}
	if resp.StatusCode == http.StatusNoContent || len(content) == 0 {
		return nil, nil
	}
	return content, nil
}

// DoObject performs DoJSON and decodes the result into a generic object.
// A nil body (204) yields an empty map.
func (c *Client) DoObject(ctx context.Context, method, url string, scopes []string, payload any) (map[string]any, error) {
	raw, err := c.DoJSON(ctx, method, url, scopes, payload)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return obj, nil
}

// Download performs an authenticated GET and returns the raw bytes, capped
// at limit when limit > 0.
func (c *Client) Download(ctx context.Context, url string, scopes []string, limit int64) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, scopes, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		content, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, NewAPIError(resp.StatusCode, content)
	}

	reader := io.Reader(resp.Body)
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return data, nil
}

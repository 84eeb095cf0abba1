package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avstrong/campusnest/internal/logger"
)

const defaultUserAgent = "campusnest-client/1.0"

type Client struct {
	Options    []RequestOption
	Bookings   *BookingService
	Mess       *MessService
	Properties *PropertyService
}

func defaultHTTPClient() *http.Client {
	//nolint:exhaustruct
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// New builds a client for baseURL. The options apply to every request and
// can be overridden per call.
func New(baseURL string, opts ...RequestOption) (*Client, error) {
	opts = slices.Concat([]RequestOption{WithBaseURL(baseURL)}, opts)

	// fail early on bad options instead of on the first call.
	if _, err := newRequestConfig(opts...); err != nil {
		return nil, err
	}

	c := &Client{Options: opts}
	c.Bookings = &BookingService{c: c}
	c.Mess = &MessService{c: c}
	c.Properties = &PropertyService{c: c}

	return c, nil
}

func newRequestConfig(opts ...RequestOption) (*requestConfig, error) {
	cfg := &requestConfig{
		BaseURL:      nil,
		HTTPClient:   nil,
		Token:        "",
		Timeout:      0,
		Logger:       nil,
		Middlewares:  nil,
		Headers:      http.Header{},
		ResponseInto: nil,
	}

	cfg.Headers.Set("User-Agent", defaultUserAgent)
	cfg.Headers.Set("Accept", "application/json")

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.BaseURL == nil {
		return nil, ErrNoBaseURL
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultHTTPClient()
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	return cfg, nil
}

// Execute sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses yield *APIError; transport failures are returned wrapped.
func (c *Client) Execute(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	cfg, err := newRequestConfig(slices.Concat(c.Options, opts)...)
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	target := cfg.BaseURL.JoinPath(strings.TrimPrefix(path, "/"))

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header = cfg.Headers.Clone()

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	handler := cfg.HTTPClient.Do
	for i := len(cfg.Middlewares) - 1; i >= 0; i-- {
		handler = applyMiddleware(cfg.Middlewares[i], handler)
	}

	start := time.Now()

	resp, err := handler(req)
	if err != nil {
		cfg.Logger.LogDebug("%s %s failed after %s: %v", method, path, time.Since(start), err)

		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if cfg.ResponseInto != nil {
		*cfg.ResponseInto = resp
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response body: %w", method, path, err)
	}

	cfg.Logger.LogDebug("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}

func applyMiddleware(m Middleware, next MiddlewareNext) MiddlewareNext {
	return func(r *http.Request) (*http.Response, error) {
		return m(r, next)
	}
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Execute(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Execute(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Execute(ctx, http.MethodPatch, path, body, out, opts...)
}

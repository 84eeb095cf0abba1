package client

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"time"

	"github.com/avstrong/campusnest/internal/logger"
)

// MiddlewareNext sends the request to the next middleware or the transport.
type MiddlewareNext = func(*http.Request) (*http.Response, error)

// Middleware wraps a single HTTP round trip.
type Middleware = func(*http.Request, MiddlewareNext) (*http.Response, error)

// requestConfig is the state of one request, assembled from options.
type requestConfig struct {
	BaseURL      *url.URL
	HTTPClient   *http.Client
	Token        string
	Timeout      time.Duration
	Logger       *logger.Logger
	Middlewares  []Middleware
	Headers      http.Header
	ResponseInto **http.Response
}

// RequestOption configures either a client (applied to every request) or a
// single call.
type RequestOption func(*requestConfig) error

func WithBaseURL(base string) RequestOption {
	return func(c *requestConfig) error {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parse base url %q: %w", base, err)
		}

		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base url %q: %w", base, ErrInvalidBaseURL)
		}

		c.BaseURL = u

		return nil
	}
}

func WithBearerToken(token string) RequestOption {
	return func(c *requestConfig) error {
		c.Token = token

		return nil
	}
}

// WithToken overrides the bearer token for one call.
func WithToken(token string) RequestOption {
	return WithBearerToken(token)
}

func WithHTTPClient(hc *http.Client) RequestOption {
	return func(c *requestConfig) error {
		c.HTTPClient = hc

		return nil
	}
}

// WithTimeout bounds the whole call, including reading the body.
func WithTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) error {
		c.Timeout = d

		return nil
	}
}

func WithLogger(l *logger.Logger) RequestOption {
	return func(c *requestConfig) error {
		c.Logger = l

		return nil
	}
}

func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) error {
		c.Headers.Set(key, value)

		return nil
	}
}

func WithUserAgent(ua string) RequestOption {
	return WithHeader("User-Agent", ua)
}

func WithIdempotencyKey(key string) RequestOption {
	return WithHeader("Idempotency-Key", key)
}

// WithResponseInto copies the raw *http.Response of the call into dst.
func WithResponseInto(dst **http.Response) RequestOption {
	return func(c *requestConfig) error {
		c.ResponseInto = dst

		return nil
	}
}

func WithMiddleware(middlewares ...Middleware) RequestOption {
	return func(c *requestConfig) error {
		c.Middlewares = append(c.Middlewares, middlewares...)

		return nil
	}
}

var sensitiveHeaderRegex = regexp.MustCompile(`(?im)^(Authorization|Cookie|Set-Cookie|X-Api-Key): .+$`)

func redactSensitiveHeaders(s string) string {
	return sensitiveHeaderRegex.ReplaceAllString(s, "$1: [REDACTED]")
}

// WithDebugLog dumps requests and responses at debug level with credentials
// redacted.
func WithDebugLog(l *logger.Logger) RequestOption {
	return WithMiddleware(func(r *http.Request, next MiddlewareNext) (*http.Response, error) {
		if dump, err := httputil.DumpRequestOut(r, true); err == nil {
			l.LogDebug("REQUEST:\n%s", redactSensitiveHeaders(string(dump)))
		}

		resp, err := next(r)

		if resp != nil {
			if dump, err := httputil.DumpResponse(resp, true); err == nil {
				l.LogDebug("RESPONSE:\n%s", redactSensitiveHeaders(string(dump)))
			}
		}

		if err != nil {
			l.LogDebug("REQUEST ERROR: %v", err)
		}

		return resp, err
	})
}

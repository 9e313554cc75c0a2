package utils

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient().
//	    WithRetryOnce(5 * time.Second).
//	    WithThrottle(700 * time.Millisecond)
//	resp, err := client.R().Get("https://example.com")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates and returns a new HTTPClient instance
// with a default-configured underlying resty.Client.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}

const (
	minRetryWait = time.Millisecond

	// maxRetryWait caps the pause requested by a Retry-After header.
	maxRetryWait = 2 * time.Minute
)

// WithRetryOnce retries a request a single time when it fails at the
// transport level or is answered with 429 Too Many Requests. The pause
// honours the Retry-After header in seconds and falls back to fallback.
func (c *HTTPClient) WithRetryOnce(fallback time.Duration) *HTTPClient {
	c.SetRetryCount(1).
		SetRetryWaitTime(minRetryWait).
		SetRetryMaxWaitTime(maxRetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() == http.StatusTooManyRequests)
		}).
		SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			return RetryAfter(r, fallback), nil
		})
	return c
}

// WithThrottle pauses for delay after every received response. A zero
// delay disables the pause.
func (c *HTTPClient) WithThrottle(delay time.Duration) *HTTPClient {
	if delay <= 0 {
		return c
	}
	c.OnAfterResponse(func(_ *resty.Client, _ *resty.Response) error {
		time.Sleep(delay)
		return nil
	})
	return c
}

// RetryAfter parses the Retry-After header of r as a number of seconds.
// It returns fallback when the header is absent or malformed.
func RetryAfter(r *resty.Response, fallback time.Duration) time.Duration {
	if r == nil {
		return fallback
	}
	raw := strings.TrimSpace(r.Header().Get("Retry-After"))
	if raw == "" {
		return fallback
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}

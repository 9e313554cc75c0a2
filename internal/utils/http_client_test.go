package utils

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func TestNewHTTPClient_NotNil(t *testing.T) {
	client := NewHTTPClient()

	if client == nil {
		t.Fatal("expected non-nil *HTTPClient, got nil")
	}

	if client.Client == nil {
		t.Fatal("expected embedded *resty.Client to be non-nil, got nil")
	}
}

func TestNewHTTPClient_Independence(t *testing.T) {
	c1 := NewHTTPClient()
	c2 := NewHTTPClient()

	if c1 == c2 {
		t.Fatal("expected different *HTTPClient instances")
	}
	if c1.Client == c2.Client {
		t.Fatal("expected different embedded *resty.Client instances")
	}
}

func TestWithRetryOnce_RetriesRateLimitOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := NewHTTPClient().WithRetryOnce(time.Millisecond).R().Get(srv.URL)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Errorf("expected 200 after retry, got %d", resp.StatusCode())
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestWithRetryOnce_GivesUpAfterSecondRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resp, err := NewHTTPClient().WithRetryOnce(time.Millisecond).R().Get(srv.URL)

	if err != nil {
		t.Fatalf("expected no transport error, got: %v", err)
	}
	if resp.StatusCode() != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", resp.StatusCode())
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly 2 calls, got %d", calls.Load())
	}
}

func TestWithRetryOnce_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, _ = NewHTTPClient().WithRetryOnce(time.Millisecond).R().Get(srv.URL)

	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestWithThrottle_PausesAfterResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewHTTPClient().WithThrottle(30 * time.Millisecond)
	start := time.Now()
	if _, err := client.R().Get(srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms pause, got %s", elapsed)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{header: "", want: time.Second},
		{header: "2", want: 2 * time.Second},
		{header: "0.5", want: 500 * time.Millisecond},
		{header: "soon", want: time.Second},
		{header: "-3", want: time.Second},
	}
	for _, tt := range tests {
		resp := &resty.Response{RawResponse: &http.Response{Header: http.Header{}}}
		if tt.header != "" {
			resp.RawResponse.Header.Set("Retry-After", tt.header)
		}
		if got := RetryAfter(resp, time.Second); got != tt.want {
			t.Errorf("RetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}

	if got := RetryAfter(nil, time.Second); got != time.Second {
		t.Errorf("RetryAfter(nil) = %s, want 1s", got)
	}
}

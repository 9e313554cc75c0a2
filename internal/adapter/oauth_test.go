// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
)

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestAuthorizer(t *testing.T, cfg config.LinkedIn) *linkedInAuthorizer {
	t.Helper()
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = "http://localhost:8787/callback"
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://www.linkedin.com/oauth/v2"
	}
	a, err := NewLinkedInAuthorizer(cfg, &strings.Builder{}, logger.Nop())
	require.NoError(t, err)

	la := a.(*linkedInAuthorizer)
	la.publish = func(string) {}
	la.now = func() time.Time { return fixedNow }
	return la
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return port
}

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accessToken", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		writeJSON(t, w, http.StatusOK, map[string]any{"access_token": "tok", "expires_in": 3600})
	}))
}

func TestAuthorizeURL(t *testing.T) {
	a := newTestAuthorizer(t, config.LinkedIn{ClientID: "cid", Scope: "r_dma_portability_3rd_party"})

	u, err := url.Parse(a.AuthorizeURL("xyz"))
	require.NoError(t, err)

	assert.Equal(t, "/oauth/v2/authorization", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "http://localhost:8787/callback", q.Get("redirect_uri"))
	assert.Equal(t, "r_dma_portability_3rd_party", q.Get("scope"))
}

func TestNewLinkedInAuthorizer_ListenAddr(t *testing.T) {
	a := newTestAuthorizer(t, config.LinkedIn{RedirectURI: "http://localhost/cb"})
	assert.Equal(t, "127.0.0.1:8787", a.listenAddr)
	assert.Equal(t, "/cb", a.callbackPath)

	_, err := NewLinkedInAuthorizer(config.LinkedIn{RedirectURI: "::bad", AuthURL: "https://x"}, &strings.Builder{}, logger.Nop())
	assert.Error(t, err)
}

// ── callback router ─────────────────────────────────────────────────────────

func TestCallbackRouter(t *testing.T) {
	a := newTestAuthorizer(t, config.LinkedIn{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
		wantResult bool
	}{
		{name: "code", query: "code=c&state=s", wantStatus: http.StatusOK, wantBody: "LinkedIn authorisation successful!", wantResult: true},
		{name: "error", query: "error=denied&error_description=User+cancelled", wantStatus: http.StatusOK, wantBody: "User cancelled", wantResult: true},
		{name: "nothing", query: "", wantStatus: http.StatusBadRequest, wantBody: "Missing authorisation code."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil)

			a.callbackRouter(results).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.Equal(t, tt.wantResult, len(results) == 1)
		})
	}
}

// ── Exchange ────────────────────────────────────────────────────────────────

func TestExchange_Success(t *testing.T) {
	srv := tokenServer(t)
	defer srv.Close()

	a := newTestAuthorizer(t, config.LinkedIn{ClientID: "cid", ClientSecret: "secret", AuthURL: srv.URL})
	tok, err := a.Exchange(context.Background(), "the-code")

	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, int64(3600), tok.ExpiresIn)
	assert.Equal(t, fixedNow.Add(time.Hour), tok.ExpiresAt)
}

func TestExchange_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid_client"))
	}))
	defer srv.Close()

	a := newTestAuthorizer(t, config.LinkedIn{AuthURL: srv.URL})
	_, err := a.Exchange(context.Background(), "the-code")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewOAuthToken_DefaultLifetime(t *testing.T) {
	tok := NewOAuthToken(" abc ", 0, "scope", fixedNow)

	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, DefaultTokenLifetime, tok.ExpiresIn)
	assert.Equal(t, fixedNow.Add(60*24*time.Hour), tok.ExpiresAt)
	assert.False(t, tok.Expired(fixedNow))
}

// ── Authorize ───────────────────────────────────────────────────────────────

func TestAuthorize_FullFlow(t *testing.T) {
	srv := tokenServer(t)
	defer srv.Close()

	redirect := "http://127.0.0.1:" + freePort(t) + "/callback"
	a := newTestAuthorizer(t, config.LinkedIn{
		ClientID: "cid", ClientSecret: "secret", AuthURL: srv.URL,
		RedirectURI: redirect, AuthTimeout: 5 * time.Second,
	})
	a.publish = func(authURL string) {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		state := u.Query().Get("state")
		go func() {
			resp, err := http.Get(redirect + "?code=the-code&state=" + url.QueryEscape(state))
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}

	tok, err := a.Authorize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
}

func TestAuthorize_StateMismatch(t *testing.T) {
	redirect := "http://127.0.0.1:" + freePort(t) + "/callback"
	a := newTestAuthorizer(t, config.LinkedIn{RedirectURI: redirect, AuthTimeout: 5 * time.Second})
	a.publish = func(string) {
		go func() {
			resp, err := http.Get(redirect + "?code=c&state=forged")
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}

	_, err := a.Authorize(context.Background())

	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestAuthorize_Denied(t *testing.T) {
	redirect := "http://127.0.0.1:" + freePort(t) + "/callback"
	a := newTestAuthorizer(t, config.LinkedIn{RedirectURI: redirect, AuthTimeout: 5 * time.Second})
	a.publish = func(string) {
		go func() {
			resp, err := http.Get(redirect + "?error=user_cancelled_login")
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}

	_, err := a.Authorize(context.Background())

	assert.ErrorIs(t, err, ErrAuthDenied)
	assert.Contains(t, err.Error(), "user_cancelled_login")
}

func TestAuthorize_Timeout(t *testing.T) {
	redirect := "http://127.0.0.1:" + freePort(t) + "/callback"
	a := newTestAuthorizer(t, config.LinkedIn{RedirectURI: redirect, AuthTimeout: 50 * time.Millisecond})

	_, err := a.Authorize(context.Background())

	assert.ErrorIs(t, err, ErrAuthTimeout)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

// DefaultTokenLifetime applies when the token endpoint omits expires_in.
const DefaultTokenLifetime int64 = 5184000

const (
	defaultCallbackPort = "8787"
	defaultCallbackPath = "/callback"
)

type callbackResult struct {
	code        string
	state       string
	err         string
	description string
}

type linkedInAuthorizer struct {
	cfg    config.LinkedIn
	client *utils.HTTPClient

	listenAddr   string
	callbackPath string

	// publish hands the consent URL to the user.
	publish func(authURL string)
	now     func() time.Time

	logger *logger.Logger
}

// NewLinkedInAuthorizer constructs an [Authorizer] for the LinkedIn OAuth 2.0
// authorization code flow. The callback server listens on 127.0.0.1 at the
// port of cfg.RedirectURI. The consent URL is copied to the clipboard when
// one is available and always printed to out.
func NewLinkedInAuthorizer(cfg config.LinkedIn, out io.Writer, log *logger.Logger) (Authorizer, error) {
	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("invalid linkedin redirect uri %q", cfg.RedirectURI)
	}
	authURL, err := normalizeBaseURL(cfg.AuthURL)
	if err != nil {
		return nil, fmt.Errorf("invalid linkedin auth url: %w", err)
	}
	cfg.AuthURL = authURL

	port := redirect.Port()
	if port == "" {
		port = defaultCallbackPort
	}
	path := redirect.Path
	if path == "" {
		path = defaultCallbackPath
	}

	client := utils.NewHTTPClient()
	client.SetTimeout(linkedInTimeout)

	a := &linkedInAuthorizer{
		cfg:          cfg,
		client:       client,
		listenAddr:   net.JoinHostPort("127.0.0.1", port),
		callbackPath: path,
		now:          time.Now,
		logger:       log,
	}
	a.publish = func(authURL string) {
		if err := clipboard.WriteAll(authURL); err == nil {
			_, _ = fmt.Fprintln(out, "The authorisation URL was copied to your clipboard.")
		}
		_, _ = fmt.Fprintf(out, "Open this URL in your browser to authorise access:\n\n  %s\n\n", authURL)
	}
	return a, nil
}

// AuthorizeURL implements [Authorizer].
func (a *linkedInAuthorizer) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", a.cfg.ClientID)
	q.Set("redirect_uri", a.cfg.RedirectURI)
	q.Set("state", state)
	q.Set("scope", a.cfg.Scope)
	return a.cfg.AuthURL + "/authorization?" + q.Encode()
}

// Authorize implements [Authorizer]. The wait for the redirect is bounded by
// cfg.AuthTimeout and by ctx.
func (a *linkedInAuthorizer) Authorize(ctx context.Context) (models.OAuthToken, error) {
	state, err := randomState()
	if err != nil {
		return models.OAuthToken{}, err
	}

	ln, err := net.Listen("tcp", a.listenAddr)
	if err != nil {
		return models.OAuthToken{}, fmt.Errorf("listen for oauth callback on %s: %w", a.listenAddr, err)
	}

	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: a.callbackRouter(results), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			a.logger.Error().Err(serveErr).Msg("oauth callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.publish(a.AuthorizeURL(state))
	a.logger.Info().Str("addr", a.listenAddr).Msg("waiting for linkedin callback")

	timeout := a.cfg.AuthTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var res callbackResult
	select {
	case <-ctx.Done():
		return models.OAuthToken{}, ctx.Err()
	case <-timer.C:
		return models.OAuthToken{}, ErrAuthTimeout
	case res = <-results:
	}

	if res.err != "" {
		reason := res.description
		if reason == "" {
			reason = res.err
		}
		return models.OAuthToken{}, fmt.Errorf("%w: %s", ErrAuthDenied, reason)
	}
	if res.state != state {
		return models.OAuthToken{}, ErrStateMismatch
	}

	a.logger.Info().Msg("received authorisation code, exchanging for token")
	return a.Exchange(ctx, res.code)
}

func (a *linkedInAuthorizer) callbackRouter(results chan<- callbackResult) http.Handler {
	r := chi.NewRouter()
	r.Use(withLogging(a.logger))
	r.Get(a.callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		res := callbackResult{
			code:        q.Get("code"),
			state:       q.Get("state"),
			err:         q.Get("error"),
			description: q.Get("error_description"),
		}

		switch {
		case res.code != "":
			_ = utils.WriteHTML(w, http.StatusOK, "LinkedIn authorisation successful!",
				"You can close this tab and return to the terminal.")
		case res.err != "":
			msg := res.description
			if msg == "" {
				msg = "Unknown error"
			}
			_ = utils.WriteHTML(w, http.StatusOK, "Authorisation failed", msg)
		default:
			_ = utils.WriteHTML(w, http.StatusBadRequest, "Authorisation failed", "Missing authorisation code.")
			return
		}

		select {
		case results <- res:
		default:
		}
	})
	return r
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Exchange implements [Authorizer] via POST {AuthURL}/accessToken.
func (a *linkedInAuthorizer) Exchange(ctx context.Context, code string) (models.OAuthToken, error) {
	var tr tokenResponse

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"client_id":     a.cfg.ClientID,
			"client_secret": a.cfg.ClientSecret,
			"redirect_uri":  a.cfg.RedirectURI,
		}).
		SetResult(&tr).
		Post(a.cfg.AuthURL + "/accessToken")
	if err != nil {
		return models.OAuthToken{}, fmt.Errorf("token exchange request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.OAuthToken{}, fmt.Errorf("token exchange: %w", err)
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return models.OAuthToken{}, fmt.Errorf("token exchange: %w: empty access token", ErrUnauthorized)
	}

	return NewOAuthToken(tr.AccessToken, tr.ExpiresIn, tr.Scope, a.now()), nil
}

// NewOAuthToken builds a token expiring expiresIn seconds after now. A
// non-positive expiresIn selects [DefaultTokenLifetime].
func NewOAuthToken(accessToken string, expiresIn int64, scope string, now time.Time) models.OAuthToken {
	if expiresIn <= 0 {
		expiresIn = DefaultTokenLifetime
	}
	return models.OAuthToken{
		AccessToken: strings.TrimSpace(accessToken),
		ExpiresIn:   expiresIn,
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second).UTC(),
		Scope:       scope,
	}
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

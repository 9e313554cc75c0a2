// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer access to the remote systems the
// sync engine talks to: the Twenty CRM REST API and the LinkedIn Member
// Snapshot API with its OAuth flow.
//
// Errors defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] regardless of the remote
// (e.g. [ErrRateLimited] for 429, [ErrUnauthorized] for 401). Partial batch
// writes are reported through [*BatchError].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-crm-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// RecordStore is the remote side of the sync: a CRM holding records of
// several object types.
type RecordStore interface {
	// GetAll returns every record of object, following pagination until the
	// remote reports no further page.
	GetAll(ctx context.Context, object string) ([]models.Record, error)

	// CreateMany creates records in chunks and returns the created records in
	// input order, each carrying its new ID and the Row of its source record.
	// When a chunk fails, the records applied so far are returned together
	// with a [*BatchError].
	CreateMany(ctx context.Context, object string, records []models.Record) ([]models.Record, error)

	// UpdateMany applies partial updates. Every record must carry an ID.
	// Partial failure is reported like CreateMany.
	UpdateMany(ctx context.Context, object string, records []models.Record) ([]models.Record, error)

	// Health returns nil when the remote answers its health endpoint.
	Health(ctx context.Context) error
}

// ExternalFeed reads contact data from LinkedIn.
type ExternalFeed interface {
	// Connections returns the member's first-degree connections.
	Connections(ctx context.Context) ([]models.Connection, error)

	// Snapshot returns the raw snapshot rows of one domain, e.g. "PROFILE".
	Snapshot(ctx context.Context, domain string) ([]map[string]any, error)

	// Domains fetches every domain in turn. A domain that fails is logged and
	// reported as an empty list.
	Domains(ctx context.Context, domains []string) map[string][]map[string]any
}

// Authorizer runs the OAuth 2.0 authorization code flow.
type Authorizer interface {
	// AuthorizeURL returns the consent URL carrying state.
	AuthorizeURL(state string) string

	// Authorize publishes the consent URL, waits for the redirect on the
	// local callback server and exchanges the code for a token.
	Authorize(ctx context.Context) (models.OAuthToken, error)

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (models.OAuthToken, error)
}

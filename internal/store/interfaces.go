// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store provides the local persistence of go-crm-sync: the workbook
// that mirrors the CRM, the version-marker state and the LinkedIn token.
//
// State is loaded once per engine and saved once at the end of every pass. There is no lock
// on the state file or database: running two engines against the same state
// is unsupported.
package store

import (
	"context"

	"github.com/MKhiriev/go-crm-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// TabularStore is the spreadsheet side of the sync. Every object type lives
// in its own sheet whose first row is the header id, updatedAt, fields...
type TabularStore interface {
	// ReadAll returns the rows of spec's sheet. A missing workbook or sheet
	// reads as empty. Record.Row holds the 1-based row of each record.
	ReadAll(ctx context.Context, spec models.ObjectSpec) ([]models.Record, error)

	// UpsertMany writes records by id, falling back to Record.Row when that
	// row has no id yet, and appends the rest. It returns the number of rows
	// written.
	UpsertMany(ctx context.Context, spec models.ObjectSpec, records []models.Record) (int, error)

	// OverwriteAll replaces the sheet with records in the given order.
	OverwriteAll(ctx context.Context, spec models.ObjectSpec, records []models.Record) (int, error)
}

// StateStore persists [models.SyncState].
type StateStore interface {
	// Load returns the saved state, or an empty state when nothing was saved.
	Load(ctx context.Context) (*models.SyncState, error)

	// Save persists every entry of state atomically.
	Save(ctx context.Context, state *models.SyncState) error

	Close() error
}

// TokenStore persists the LinkedIn OAuth token.
type TokenStore interface {
	// Load returns the saved token. It returns [ErrTokenNotFound] when no
	// token was saved and [ErrTokenExpired] when the saved one has expired.
	Load(ctx context.Context) (models.OAuthToken, error)

	Save(ctx context.Context, token models.OAuthToken) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the reconciliation engine and the LinkedIn import.
//
// The engine owns a single [models.SyncState]: it is loaded from the state
// store by the first pass, kept in memory across scheduled passes and saved
// once at the end of every pass. Running two
// engines against the same state file is unsupported; nothing locks it.
package service

import (
	"context"

	"github.com/MKhiriev/go-crm-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// DiffService classifies two snapshots of one object type.
type DiffService interface {
	// Compute compares remote and tabular records over the tracked fields.
	// The result does not depend on input order.
	Compute(remote, tabular []models.Record, fields []string) models.Diff
}

// ConflictResolver decides which side of a conflict wins.
type ConflictResolver interface {
	// Resolve returns the side whose version is kept.
	Resolve(c models.Conflict) models.Side

	// Strategy reports the policy in use.
	Strategy() models.Strategy
}

// SyncService runs reconciliation passes over every configured object type.
//
// A fetch failure on one object type is reported in its
// [models.ObjectResult] and does not stop the others. The returned error is
// reserved for failures to load or persist the sync state.
type SyncService interface {
	// SyncAll reconciles both sides, resolving conflicts with the configured
	// strategy, then rewrites the sheet from the refreshed CRM snapshot.
	SyncAll(ctx context.Context) (*models.Report, error)

	// Pull overwrites the sheet with the CRM snapshot.
	Pull(ctx context.Context) (*models.Report, error)

	// Push creates new sheet rows in the CRM and sends sheet edits as updates.
	// The sheet always wins; CRM-only records are ignored.
	Push(ctx context.Context) (*models.Report, error)

	// Health probes the CRM.
	Health(ctx context.Context) error
}

// FeedService imports LinkedIn connections into the CRM and manages the
// LinkedIn access token.
type FeedService interface {
	// Import fetches connections and creates or updates companies and people
	// within scope. With dryRun set nothing is written.
	Import(ctx context.Context, scope models.FeedScope, dryRun bool) (models.FeedResult, error)

	// Preview fetches every configured snapshot domain without writing.
	Preview(ctx context.Context) (map[string][]map[string]any, error)

	// Authenticate runs the browser OAuth flow and saves the token.
	Authenticate(ctx context.Context) (models.OAuthToken, error)

	// SaveToken stores a token obtained out of band.
	SaveToken(ctx context.Context, accessToken string, expiresIn int64) (models.OAuthToken, error)

	// AccessToken returns the token from the environment or the token file.
	AccessToken(ctx context.Context) (string, error)
}

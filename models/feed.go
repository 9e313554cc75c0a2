// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Connection is one first-degree contact exported by the LinkedIn Member
// Snapshot API (CONNECTIONS domain).
type Connection struct {
	FirstName   string `json:"First Name"`
	LastName    string `json:"Last Name"`
	Email       string `json:"Email Address"`
	Company     string `json:"Company"`
	Position    string `json:"Position"`
	URL         string `json:"URL"`
	ConnectedOn string `json:"Connected On"`
}

// FullName returns "first last" trimmed.
func (c Connection) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// FeedScope selects which CRM object types a feed import writes.
type FeedScope string

const (
	FeedScopeBoth      FeedScope = "both"
	FeedScopePeople    FeedScope = "people"
	FeedScopeCompanies FeedScope = "companies"
)

// People reports whether the scope includes people.
func (s FeedScope) People() bool { return s == FeedScopeBoth || s == FeedScopePeople }

// Companies reports whether the scope includes companies.
func (s FeedScope) Companies() bool { return s == FeedScopeBoth || s == FeedScopeCompanies }

// FeedResult summarises one LinkedIn import.
type FeedResult struct {
	DryRun             bool          `json:"dry_run"`
	ConnectionsFetched int           `json:"connections_fetched"`
	PeopleCreated      int           `json:"people_created"`
	PeopleUpdated      int           `json:"people_updated"`
	PeopleSkipped      int           `json:"people_skipped"`
	CompaniesCreated   int           `json:"companies_created"`
	CompaniesSkipped   int           `json:"companies_skipped"`
	Batches            []BatchResult `json:"batches,omitempty"`
}

// OAuthToken is a LinkedIn access token as persisted on disk.
type OAuthToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	Scope       string    `json:"scope,omitempty"`
}

// Expired reports whether the token is past its expiry at now.
func (t OAuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

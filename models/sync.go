// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"time"
)

// Strategy selects how a conflicting record pair is resolved.
type Strategy string

const (
	// StrategyRemoteWins always keeps the CRM version.
	StrategyRemoteWins Strategy = "remote_wins"

	// StrategyTabularWins always keeps the workbook version.
	StrategyTabularWins Strategy = "tabular_wins"

	// StrategyNewestWins compares version markers. The CRM wins on a tie or
	// when either marker cannot be parsed.
	StrategyNewestWins Strategy = "newest_wins"
)

// Side names one of the two stores.
type Side string

const (
	SideRemote  Side = "remote"
	SideTabular Side = "tabular"
)

// Mode is the kind of top-level operation a [Report] describes.
type Mode string

const (
	ModeSync Mode = "sync"
	ModePull Mode = "pull"
	ModePush Mode = "push"
)

// Conflict is a record present on both sides whose tracked fields differ
// after normalization.
type Conflict struct {
	Remote  Record
	Tabular Record

	// Fields lists the tracked fields that differ, in tracked-field order.
	Fields []string
}

// Diff is the classification of two snapshots of one object type.
type Diff struct {
	// RemoteOnly holds CRM records with no matching sheet row.
	RemoteOnly []Record

	// TabularNew holds sheet rows without an id, pending creation.
	TabularNew []Record

	// Orphans holds sheet rows whose id no longer exists in the CRM. They are
	// treated as deleted upstream and never written back.
	Orphans []Record

	// Unchanged holds CRM records whose sheet row matches.
	Unchanged []Record

	Conflicts []Conflict

	// Duplicates holds sheet rows that repeat an id already seen on a
	// lower row.
	Duplicates []Record
}

// Counters summarises one pass over one object type.
type Counters struct {
	RemoteToTabular        int `json:"remote_to_tabular"`
	TabularToRemoteCreated int `json:"tabular_to_remote_created"`
	TabularToRemoteUpdated int `json:"tabular_to_remote_updated"`
	Conflicts              int `json:"conflicts"`
	Skipped                int `json:"skipped"`
}

// Batch operation names used in [BatchResult].
const (
	OpTabularUpsert    = "tabular_upsert"
	OpTabularOverwrite = "tabular_overwrite"
	OpRemoteCreate     = "remote_create"
	OpRemoteUpdate     = "remote_update"
)

// BatchFailure describes records of a batch that were not applied.
type BatchFailure struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// BatchResult is the outcome of one write batch against either store.
type BatchResult struct {
	Op        string         `json:"op"`
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

// Failed reports whether any record of the batch was not applied.
func (b BatchResult) Failed() bool {
	return len(b.Failures) > 0
}

// Drift counts CRM records that changed since the previous run.
type Drift struct {
	New     int `json:"new"`
	Changed int `json:"changed"`
}

// ObjectResult is the outcome of one pass over one object type.
type ObjectResult struct {
	Object   string        `json:"object"`
	Counters Counters      `json:"counters"`
	Batches  []BatchResult `json:"batches,omitempty"`
	Drift    Drift         `json:"drift"`

	// Err is set when the pass could not run, e.g. the CRM fetch failed.
	Err error `json:"-"`
}

// FailedBatches returns the number of batches with at least one failure.
func (o ObjectResult) FailedBatches() int {
	n := 0
	for _, b := range o.Batches {
		if b.Failed() {
			n++
		}
	}
	return n
}

// Report is the outcome of one top-level operation across all object types.
type Report struct {
	RunID      string         `json:"run_id"`
	Mode       Mode           `json:"mode"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Objects    []ObjectResult `json:"objects"`
}

// Summary returns a one-line human-readable recap.
func (r *Report) Summary() string {
	var total Counters
	failed := 0
	for _, o := range r.Objects {
		total.RemoteToTabular += o.Counters.RemoteToTabular
		total.TabularToRemoteCreated += o.Counters.TabularToRemoteCreated
		total.TabularToRemoteUpdated += o.Counters.TabularToRemoteUpdated
		total.Conflicts += o.Counters.Conflicts
		total.Skipped += o.Counters.Skipped
		if o.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("%s: %d to sheet, %d created, %d updated, %d conflicts, %d skipped, %d object(s) failed in %s",
		r.Mode, total.RemoteToTabular, total.TabularToRemoteCreated, total.TabularToRemoteUpdated,
		total.Conflicts, total.Skipped, failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}

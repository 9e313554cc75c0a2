// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SyncState is the last-observed version marker of every CRM record, per
// object type.
//
// Entries are only added or updated, never pruned: ids that disappear from
// the CRM keep their last marker. The state is owned by a single engine and
// is not safe for concurrent use.
type SyncState struct {
	Objects map[string]map[string]string
}

// NewSyncState returns an empty state.
func NewSyncState() *SyncState {
	return &SyncState{Objects: make(map[string]map[string]string)}
}

// Marker returns the last-observed version marker of id.
func (s *SyncState) Marker(object, id string) (string, bool) {
	m, ok := s.Objects[object][id]
	return m, ok
}

// Set records the version marker of a single id.
func (s *SyncState) Set(object, id, marker string) {
	if s.Objects == nil {
		s.Objects = make(map[string]map[string]string)
	}
	entries, ok := s.Objects[object]
	if !ok {
		entries = make(map[string]string)
		s.Objects[object] = entries
	}
	entries[id] = marker
}

// Observe merges the version markers of records into the state. Records
// without an id are ignored. now is used when a record carries no marker.
func (s *SyncState) Observe(object string, records []Record, now string) {
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		marker := r.UpdatedAt
		if marker == "" {
			marker = now
		}
		s.Set(object, r.ID, marker)
	}
}

// Drift compares records against the state and counts ids never seen before
// and ids whose marker moved.
func (s *SyncState) Drift(object string, records []Record) Drift {
	var d Drift
	entries := s.Objects[object]
	for _, r := range records {
		prev, ok := entries[r.ID]
		switch {
		case !ok:
			d.New++
		case prev != r.UpdatedAt:
			d.Changed++
		}
	}
	return d
}

// Len returns the number of tracked ids for object.
func (s *SyncState) Len(object string) int {
	return len(s.Objects[object])
}

package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/MKhiriev/go-crm-sync/internal/codec"
	"github.com/MKhiriev/go-crm-sync/models"
)

type diffService struct{}

// NewDiffService returns the stateless [DiffService].
func NewDiffService() DiffService {
	return diffService{}
}

// Compute implements [DiffService].
//
// When several sheet rows carry the same id the lowest row wins and the
// others are reported as duplicates. Sheet rows whose id is unknown to the
// CRM are orphans: they are assumed deleted upstream and never written back.
func (diffService) Compute(remote, tabular []models.Record, fields []string) models.Diff {
	var diff models.Diff

	remoteByID := make(map[string]models.Record, len(remote))
	for _, r := range remote {
		if r.ID == "" {
			continue
		}
		if prev, ok := remoteByID[r.ID]; ok && fingerprint(prev, fields) <= fingerprint(r, fields) {
			continue
		}
		remoteByID[r.ID] = r
	}

	tabularByID := make(map[string]models.Record, len(tabular))
	for _, t := range tabular {
		if t.ID == "" {
			diff.TabularNew = append(diff.TabularNew, t)
			continue
		}
		prev, ok := tabularByID[t.ID]
		if !ok {
			tabularByID[t.ID] = t
			continue
		}
		if rowLess(t, prev, fields) {
			tabularByID[t.ID] = t
			t = prev
		}
		diff.Duplicates = append(diff.Duplicates, t)
	}

	for id, r := range remoteByID {
		t, ok := tabularByID[id]
		if !ok {
			diff.RemoteOnly = append(diff.RemoteOnly, r)
			continue
		}
		if changed := changedFields(r, t, fields); len(changed) > 0 {
			diff.Conflicts = append(diff.Conflicts, models.Conflict{Remote: r, Tabular: t, Fields: changed})
		} else {
			diff.Unchanged = append(diff.Unchanged, r)
		}
	}

	for id, t := range tabularByID {
		if _, ok := remoteByID[id]; !ok {
			diff.Orphans = append(diff.Orphans, t)
		}
	}

	byID := func(a, b models.Record) int { return strings.Compare(a.ID, b.ID) }
	slices.SortFunc(diff.RemoteOnly, byID)
	slices.SortFunc(diff.Unchanged, byID)
	slices.SortFunc(diff.Orphans, byID)
	slices.SortFunc(diff.Conflicts, func(a, b models.Conflict) int { return strings.Compare(a.Remote.ID, b.Remote.ID) })
	slices.SortFunc(diff.TabularNew, func(a, b models.Record) int {
		return cmp.Or(cmp.Compare(a.Row, b.Row), strings.Compare(fingerprint(a, fields), fingerprint(b, fields)))
	})
	slices.SortFunc(diff.Duplicates, func(a, b models.Record) int {
		return cmp.Or(strings.Compare(a.ID, b.ID), cmp.Compare(a.Row, b.Row),
			strings.Compare(fingerprint(a, fields), fingerprint(b, fields)))
	})

	return diff
}

// changedFields lists the tracked fields whose normalized values differ, in
// tracked-field order.
func changedFields(remote, tabular models.Record, fields []string) []string {
	var changed []string
	for _, f := range fields {
		if !codec.Equal(remote.Get(f), codec.Flatten(tabular.Get(f))) {
			changed = append(changed, f)
		}
	}
	return changed
}

func rowLess(a, b models.Record, fields []string) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return fingerprint(a, fields) < fingerprint(b, fields)
}

// fingerprint renders the normalized content of r for tie-breaking.
func fingerprint(r models.Record, fields []string) string {
	parts := make([]string, 0, len(fields)+2)
	parts = append(parts, r.ID, r.UpdatedAt)
	for _, f := range fields {
		parts = append(parts, codec.Canonical(codec.Flatten(r.Get(f))))
	}
	return strings.Join(parts, "\x1f")
}

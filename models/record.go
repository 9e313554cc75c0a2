// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Identity keys present on every record of every object type.
const (
	FieldID        = "id"
	FieldUpdatedAt = "updatedAt"
)

// Record is one entity on either side of the sync.
type Record struct {
	// ID is the CRM identifier. Empty for tabular rows not yet created remotely.
	ID string

	// UpdatedAt is the version marker, an order-comparable timestamp string.
	UpdatedAt string

	// Fields holds every non-identity field keyed by its API name.
	Fields map[string]Value

	// Row is the 1-based sheet row a tabular record was read from; zero for
	// records that did not come from the sheet.
	Row int
}

// Get returns the value of field, or an empty [Scalar] when absent.
func (r Record) Get(field string) Value {
	if v, ok := r.Fields[field]; ok && v != nil {
		return v
	}
	return Scalar{}
}

// Has reports whether field is present on the record.
func (r Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Payload renders the record as a CRM request body. The id is included only
// when set.
func (r Record) Payload() map[string]any {
	out := make(map[string]any, len(r.Fields)+1)
	if r.ID != "" {
		out[FieldID] = r.ID
	}
	for k, v := range r.Fields {
		out[k] = v.Raw()
	}
	return out
}

// RecordFromMap decodes a CRM JSON object into a [Record].
func RecordFromMap(m map[string]any) Record {
	rec := Record{Fields: make(map[string]Value, len(m))}
	for k, v := range m {
		switch k {
		case FieldID:
			rec.ID = str(v)
		case FieldUpdatedAt:
			rec.UpdatedAt = str(v)
		default:
			rec.Fields[k] = ParseValue(v)
		}
	}
	return rec
}

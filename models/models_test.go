package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_ShapeDetection(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{name: "string", in: "x", want: KindScalar},
		{name: "null", in: nil, want: KindScalar},
		{name: "name", in: map[string]any{"firstName": "A", "lastName": "B"}, want: KindName},
		{name: "email", in: map[string]any{"primaryEmail": "a@b", "additionalEmails": nil}, want: KindEmail},
		{name: "phone", in: map[string]any{"primaryPhoneNumber": "1"}, want: KindPhone},
		{name: "link label only", in: map[string]any{"primaryLinkLabel": "x"}, want: KindLink},
		{name: "currency", in: map[string]any{"amountMicros": 1.0, "currencyCode": "USD"}, want: KindCurrency},
		{name: "address", in: map[string]any{"addressCity": "Oslo"}, want: KindAddress},
		{name: "other map", in: map[string]any{"foo": 1.0}, want: KindUnknown},
		{name: "list", in: []any{"a"}, want: KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.in).Kind())
		})
	}
}

func TestParseValue_RawRoundTripKeepsExtra(t *testing.T) {
	in := map[string]any{
		"primaryPhoneNumber":      "555",
		"primaryPhoneCountryCode": "FR",
	}
	got := ParseValue(in).Raw()
	assert.Equal(t, in, got)
}

func TestParseValue_NullAmount(t *testing.T) {
	c := ParseValue(map[string]any{"amountMicros": nil, "currencyCode": "USD"}).(Currency)
	assert.Nil(t, c.AmountMicros)
	assert.Nil(t, c.Raw().(map[string]any)["amountMicros"])
}

func TestRecordFromMap(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"id":        "1",
		"updatedAt": "2024-01-02T00:00:00Z",
		"name":      map[string]any{"firstName": "Alice", "lastName": "Smith"},
		"city":      "Oslo",
	})

	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, "2024-01-02T00:00:00Z", rec.UpdatedAt)
	assert.Equal(t, Name{FirstName: "Alice", LastName: "Smith"}, rec.Get("name"))
	assert.Equal(t, Scalar{}, rec.Get("missing"))
	assert.False(t, rec.Has("id"))

	payload := rec.Payload()
	assert.Equal(t, "1", payload["id"])
	assert.Equal(t, "Oslo", payload["city"])
}

func TestSyncState_ObserveMergesWithoutPruning(t *testing.T) {
	s := NewSyncState()
	s.Observe("people", []Record{{ID: "1", UpdatedAt: "a"}, {ID: "2", UpdatedAt: "b"}}, "now")
	s.Observe("people", []Record{{ID: "2", UpdatedAt: "c"}, {ID: "3"}, {UpdatedAt: "ignored"}}, "now")

	require.Equal(t, 3, s.Len("people"))
	m, _ := s.Marker("people", "1")
	assert.Equal(t, "a", m)
	m, _ = s.Marker("people", "2")
	assert.Equal(t, "c", m)
	m, _ = s.Marker("people", "3")
	assert.Equal(t, "now", m)
}

func TestSyncState_Drift(t *testing.T) {
	s := NewSyncState()
	s.Set("companies", "1", "a")
	s.Set("companies", "2", "b")

	d := s.Drift("companies", []Record{{ID: "1", UpdatedAt: "a"}, {ID: "2", UpdatedAt: "z"}, {ID: "3", UpdatedAt: "x"}})

	assert.Equal(t, Drift{New: 1, Changed: 1}, d)
}

func TestReportSummary(t *testing.T) {
	r := &Report{Mode: ModeSync, Objects: []ObjectResult{
		{Object: "a", Counters: Counters{RemoteToTabular: 2, Skipped: 1}},
		{Object: "b", Counters: Counters{TabularToRemoteCreated: 1, Conflicts: 3}},
	}}
	s := r.Summary()
	assert.Contains(t, s, "2 to sheet")
	assert.Contains(t, s, "1 created")
	assert.Contains(t, s, "3 conflicts")
}

func TestObjectSpecColumns(t *testing.T) {
	spec := ObjectSpec{Name: "x", Fields: []string{"name"}}
	assert.Equal(t, []string{"id", "updatedAt", "name"}, spec.Columns())
}

func TestAppBuildInfo_DevVersion(t *testing.T) {
	assert.Equal(t, DevVersion, NewAppBuildInfo(" ", "", "").BuildVersion())
	assert.Equal(t, "1.4.2", NewAppBuildInfo("1.4.2 ", "", "").BuildVersion())
}

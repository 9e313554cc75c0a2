// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "maps"

// Kind tags the variant carried by a [Value].
type Kind string

const (
	KindScalar   Kind = "scalar"
	KindName     Kind = "name"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindLink     Kind = "link"
	KindCurrency Kind = "currency"
	KindAddress  Kind = "address"
	KindUnknown  Kind = "unknown"
)

// Wire keys of the composite field shapes exposed by the CRM REST API.
const (
	keyFirstName     = "firstName"
	keyLastName      = "lastName"
	keyPrimaryEmail  = "primaryEmail"
	keyPrimaryPhone  = "primaryPhoneNumber"
	keyLinkURL       = "primaryLinkUrl"
	keyLinkLabel     = "primaryLinkLabel"
	keyAmountMicros  = "amountMicros"
	keyCurrencyCode  = "currencyCode"
	keyAddressStreet = "addressStreet1"
	keyAddressLine2  = "addressStreet2"
	keyAddressCity   = "addressCity"
	keyAddressState  = "addressState"
	keyAddressPost   = "addressPostcode"
	keyAddressCtry   = "addressCountry"
)

// Value is a single field value of a [Record].
//
// The set of implementations is closed: [Scalar], [Name], [Email], [Phone],
// [Link], [Currency], [Address] and the [Unknown] catch-all for nested values
// whose shape is not recognised.
type Value interface {
	// Kind reports the variant tag.
	Kind() Kind
	// Raw returns the JSON-ready representation sent to the CRM.
	Raw() any

	isValue()
}

// Scalar is a plain value: nil, string, float64 or bool.
type Scalar struct {
	V any
}

// Name is a person name composite.
type Name struct {
	FirstName string
	LastName  string
	Extra     map[string]any
}

// Email is an emails composite; only the primary address is modelled.
type Email struct {
	Primary string
	Extra   map[string]any
}

// Phone is a phones composite; only the primary number is modelled.
type Phone struct {
	Primary string
	Extra   map[string]any
}

// Link is a links composite.
type Link struct {
	URL   string
	Label string
	Extra map[string]any
}

// Currency is an amount stored in micros (1/1_000_000 of a unit).
// AmountMicros is nil when the CRM holds no amount.
type Currency struct {
	AmountMicros *int64
	CurrencyCode string
	Extra        map[string]any
}

// Address is a postal address composite.
type Address struct {
	Street1  string
	Street2  string
	City     string
	State    string
	Postcode string
	Country  string
	Extra    map[string]any
}

// Unknown wraps a nested value whose shape is not one of the known composites.
type Unknown struct {
	V any
}

func (Scalar) Kind() Kind   { return KindScalar }
func (Name) Kind() Kind     { return KindName }
func (Email) Kind() Kind    { return KindEmail }
func (Phone) Kind() Kind    { return KindPhone }
func (Link) Kind() Kind     { return KindLink }
func (Currency) Kind() Kind { return KindCurrency }
func (Address) Kind() Kind  { return KindAddress }
func (Unknown) Kind() Kind  { return KindUnknown }

func (Scalar) isValue()   {}
func (Name) isValue()     {}
func (Email) isValue()    {}
func (Phone) isValue()    {}
func (Link) isValue()     {}
func (Currency) isValue() {}
func (Address) isValue()  {}
func (Unknown) isValue()  {}

func (s Scalar) Raw() any  { return s.V }
func (u Unknown) Raw() any { return u.V }

func (n Name) Raw() any {
	m := withExtra(n.Extra)
	m[keyFirstName] = n.FirstName
	m[keyLastName] = n.LastName
	return m
}

func (e Email) Raw() any {
	m := withExtra(e.Extra)
	m[keyPrimaryEmail] = e.Primary
	return m
}

func (p Phone) Raw() any {
	m := withExtra(p.Extra)
	m[keyPrimaryPhone] = p.Primary
	return m
}

func (l Link) Raw() any {
	m := withExtra(l.Extra)
	m[keyLinkURL] = l.URL
	m[keyLinkLabel] = l.Label
	return m
}

func (c Currency) Raw() any {
	m := withExtra(c.Extra)
	if c.AmountMicros != nil {
		m[keyAmountMicros] = *c.AmountMicros
	} else {
		m[keyAmountMicros] = nil
	}
	m[keyCurrencyCode] = c.CurrencyCode
	return m
}

func (a Address) Raw() any {
	m := withExtra(a.Extra)
	m[keyAddressStreet] = a.Street1
	m[keyAddressLine2] = a.Street2
	m[keyAddressCity] = a.City
	m[keyAddressState] = a.State
	m[keyAddressPost] = a.Postcode
	m[keyAddressCtry] = a.Country
	return m
}

// Parts returns the display components in their fixed order.
func (a Address) Parts() []string {
	return []string{a.Street1, a.Street2, a.City, a.State, a.Postcode, a.Country}
}

// WithParts returns a copy of a with the display components replaced.
// parts must hold exactly six entries, in the order of [Address.Parts].
func (a Address) WithParts(parts []string) Address {
	a.Street1, a.Street2, a.City = parts[0], parts[1], parts[2]
	a.State, a.Postcode, a.Country = parts[3], parts[4], parts[5]
	return a
}

// ParseValue decodes a JSON-decoded CRM field value into its variant.
// Composite shapes are identified by key presence.
func ParseValue(raw any) Value {
	switch v := raw.(type) {
	case map[string]any:
		return parseComposite(v)
	case []any:
		return Unknown{V: v}
	case int:
		return Scalar{V: float64(v)}
	case int64:
		return Scalar{V: float64(v)}
	default:
		return Scalar{V: v}
	}
}

func parseComposite(m map[string]any) Value {
	switch {
	case has(m, keyFirstName, keyLastName):
		return Name{
			FirstName: str(m[keyFirstName]),
			LastName:  str(m[keyLastName]),
			Extra:     without(m, keyFirstName, keyLastName),
		}
	case has(m, keyPrimaryEmail):
		return Email{Primary: str(m[keyPrimaryEmail]), Extra: without(m, keyPrimaryEmail)}
	case has(m, keyPrimaryPhone):
		return Phone{Primary: str(m[keyPrimaryPhone]), Extra: without(m, keyPrimaryPhone)}
	case has(m, keyLinkURL, keyLinkLabel):
		return Link{
			URL:   str(m[keyLinkURL]),
			Label: str(m[keyLinkLabel]),
			Extra: without(m, keyLinkURL, keyLinkLabel),
		}
	case has(m, keyAmountMicros):
		return Currency{
			AmountMicros: micros(m[keyAmountMicros]),
			CurrencyCode: str(m[keyCurrencyCode]),
			Extra:        without(m, keyAmountMicros, keyCurrencyCode),
		}
	case has(m, keyAddressStreet, keyAddressLine2, keyAddressCity, keyAddressState, keyAddressPost, keyAddressCtry):
		return Address{
			Street1:  str(m[keyAddressStreet]),
			Street2:  str(m[keyAddressLine2]),
			City:     str(m[keyAddressCity]),
			State:    str(m[keyAddressState]),
			Postcode: str(m[keyAddressPost]),
			Country:  str(m[keyAddressCtry]),
			Extra: without(m, keyAddressStreet, keyAddressLine2, keyAddressCity,
				keyAddressState, keyAddressPost, keyAddressCtry),
		}
	default:
		return Unknown{V: m}
	}
}

func has(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func without(m map[string]any, keys ...string) map[string]any {
	out := maps.Clone(m)
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func withExtra(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+6)
	maps.Copy(m, extra)
	return m
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func micros(v any) *int64 {
	var n int64
	switch t := v.(type) {
	case float64:
		n = int64(t)
	case int64:
		n = t
	case int:
		n = int64(t)
	default:
		return nil
	}
	return &n
}

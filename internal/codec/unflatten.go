// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package codec

import (
	"maps"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-crm-sync/models"
)

// Unflatten rebuilds the CRM value of field from a cell.
//
// When existing is a composite its shape is reused and keys the cell cannot
// express are kept. Without a template the shape is guessed from the field
// name. Malformed numbers never fail: a currency cell that cannot be parsed
// yields a zero amount.
func Unflatten(field string, cell any, existing models.Value) models.Value {
	if existing != nil && Canonical(cell) == Canonical(Flatten(existing)) {
		return existing
	}

	switch ex := existing.(type) {
	case models.Name:
		first, last := splitName(text(cell))
		return models.Name{FirstName: first, LastName: last, Extra: maps.Clone(ex.Extra)}
	case models.Email:
		return models.Email{Primary: text(cell), Extra: maps.Clone(ex.Extra)}
	case models.Phone:
		return models.Phone{Primary: text(cell), Extra: maps.Clone(ex.Extra)}
	case models.Link:
		return models.Link{URL: text(cell), Label: ex.Label, Extra: maps.Clone(ex.Extra)}
	case models.Currency:
		return currency(cell, ex.CurrencyCode, ex.Extra)
	case models.Address:
		return address(text(cell), ex)
	case models.Unknown:
		return ex
	case models.Scalar:
		switch ex.V.(type) {
		case nil:
		case float64:
			return number(cell)
		case string:
			return models.Scalar{V: text(cell)}
		default:
			return models.Scalar{V: cell}
		}
	}

	return guess(field, cell)
}

// Template returns an empty value of v's shape, for building a new record
// after one that already exists. Only the currency code is carried over.
// It returns nil when v tells nothing about the shape.
func Template(v models.Value) models.Value {
	switch t := v.(type) {
	case models.Name:
		return models.Name{}
	case models.Email:
		return models.Email{}
	case models.Phone:
		return models.Phone{}
	case models.Link:
		return models.Link{}
	case models.Currency:
		return models.Currency{CurrencyCode: t.CurrencyCode}
	case models.Address:
		return models.Address{}
	case models.Scalar:
		switch t.V.(type) {
		case string:
			return models.Scalar{V: ""}
		case float64:
			return models.Scalar{V: 0.0}
		case bool:
			return models.Scalar{V: false}
		}
	}
	return nil
}

// guess infers a composite shape from the field name.
func guess(field string, cell any) models.Value {
	name := strings.ToLower(field)
	switch {
	case name == "name":
		first, last := splitName(text(cell))
		return models.Name{FirstName: first, LastName: last}
	case name == "email" || name == "emails":
		return models.Email{Primary: text(cell)}
	case name == "phone" || name == "phones":
		return models.Phone{Primary: text(cell)}
	case strings.Contains(name, "link") || name == "domainname":
		return models.Link{URL: text(cell)}
	case name == "address":
		return models.Address{Street1: text(cell)}
	case name == "annualrecurringrevenue" || name == "amount":
		return currency(cell, DefaultCurrencyCode, nil)
	default:
		return models.Scalar{V: cell}
	}
}

func splitName(s string) (string, string) {
	first, last, _ := strings.Cut(s, " ")
	return first, last
}

func currency(cell any, code string, extra map[string]any) models.Value {
	c := models.Currency{CurrencyCode: code, Extra: maps.Clone(extra)}
	if code == "" {
		c.CurrencyCode = DefaultCurrencyCode
	}
	if text(cell) == "" {
		return c
	}
	n, err := parseMicros(cell)
	if err != nil {
		n = 0
	}
	c.AmountMicros = &n
	return c
}

// address writes s back into ex. When s has as many comma-separated parts
// as ex has non-empty components they are assigned in place; otherwise s
// becomes the first street line and the other components are cleared.
func address(s string, ex models.Address) models.Value {
	out := ex
	out.Extra = maps.Clone(ex.Extra)

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	current := ex.Parts()
	var slots []int
	for i, p := range current {
		if strings.TrimSpace(p) != "" {
			slots = append(slots, i)
		}
	}

	next := make([]string, len(current))
	if len(slots) > 0 && len(slots) == len(parts) {
		for i, slot := range slots {
			next[slot] = parts[i]
		}
	} else {
		next[0] = s
	}
	return out.WithParts(next)
}

// number converts a cell to float64 when it looks numeric.
func number(cell any) models.Value {
	switch t := cell.(type) {
	case float64, nil:
		return models.Scalar{V: t}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return models.Scalar{V: f}
		}
	}
	return models.Scalar{V: cell}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package codec converts CRM field values to flat spreadsheet cells and back.
//
// Flatten projects any [models.Value] onto a single scalar and never fails.
// Unflatten rebuilds a composite from a cell, reusing the shape of the
// current CRM value when one is known and guessing from the field name
// otherwise. For every known shape v:
//
//	Flatten(Unflatten(f, Flatten(v), v)) == Flatten(v)
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/MKhiriev/go-crm-sync/models"
)

// DefaultCurrencyCode is used for currency fields created without a template.
const DefaultCurrencyCode = "USD"

const microsPerUnit = 1_000_000

// emptyLiterals are renderings that carry no information.
var emptyLiterals = map[string]struct{}{
	"None": {},
	"null": {},
	"0":    {},
	"0.0":  {},
	"{}":   {},
	"[]":   {},
}

// Flatten returns the cell representation of v: nil, string, float64 or bool.
func Flatten(v models.Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case models.Scalar:
		return t.V
	case models.Name:
		return strings.TrimSpace(t.FirstName + " " + t.LastName)
	case models.Email:
		return t.Primary
	case models.Phone:
		return t.Primary
	case models.Link:
		if t.URL != "" {
			return t.URL
		}
		return t.Label
	case models.Currency:
		if t.AmountMicros == nil {
			return nil
		}
		return float64(*t.AmountMicros) / microsPerUnit
	case models.Address:
		parts := make([]string, 0, 6)
		for _, p := range t.Parts() {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	case models.Unknown:
		b, err := json.Marshal(t.V)
		if err != nil {
			return fmt.Sprint(t.V)
		}
		return string(b)
	default:
		return fmt.Sprint(v.Raw())
	}
}

// Canonical renders a cell for comparison. Empty-like values (nil, "",
// "0", "None", "{}", ...) all map to "".
func Canonical(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = norm.NFC.String(strings.TrimSpace(t))
		if isDecimal(s) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				if f == 0 {
					f = 0 // "-0"
				}
				s = strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = strings.TrimSpace(fmt.Sprint(t))
	}
	if _, ok := emptyLiterals[s]; ok {
		return ""
	}
	return s
}

// isDecimal reports whether s is a plain decimal such as "-2.50". Signs
// other than a leading minus, exponents and integers with leading zeros
// ("007") are not decimals, so codes and phone numbers stay text. More than
// 15 integer digits would not survive float64.
func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasDot := strings.Cut(s, ".")
	if intPart == "" || len(intPart) > 15 || !allDigits(intPart) || (hasDot && (frac == "" || !allDigits(frac))) {
		return false
	}
	return len(intPart) == 1 || intPart[0] != '0'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Equal reports whether a CRM value and a cell hold the same information.
func Equal(remote models.Value, cell any) bool {
	return Canonical(Flatten(remote)) == Canonical(cell)
}

// IsEmpty reports whether a value flattens to an empty cell.
func IsEmpty(v models.Value) bool {
	return Canonical(Flatten(v)) == ""
}

// text renders a cell as the string a user would see.
func text(cell any) string {
	switch t := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// parseMicros converts a decimal cell to integer micros.
func parseMicros(cell any) (int64, error) {
	var f float64
	switch t := cell.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	default:
		s := strings.ReplaceAll(text(cell), ",", "")
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, err
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite amount %v", f)
	}
	return int64(math.Round(f * microsPerUnit)), nil
}

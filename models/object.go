// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ObjectSpec describes one CRM object type mirrored into the workbook.
type ObjectSpec struct {
	// Name is the REST collection name, e.g. "companies".
	Name string `yaml:"name" json:"name"`

	// SheetName is the worksheet label in the workbook.
	SheetName string `yaml:"sheet_name" json:"sheet_name"`

	// Fields is the ordered list of tracked fields. id and updatedAt are
	// implicit and must not be listed.
	Fields []string `yaml:"fields" json:"fields"`
}

// Columns returns the full sheet header: id, updatedAt, then tracked fields.
func (o ObjectSpec) Columns() []string {
	cols := make([]string, 0, len(o.Fields)+2)
	cols = append(cols, FieldID, FieldUpdatedAt)
	return append(cols, o.Fields...)
}

// DefaultObjects returns the object types synced when none are configured.
func DefaultObjects() []ObjectSpec {
	return []ObjectSpec{
		{
			Name:      "companies",
			SheetName: "Companies",
			Fields: []string{
				"name",
				"domainName",
				"address",
				"employees",
				"linkedinLink",
				"annualRecurringRevenue",
				"idealCustomerProfile",
				"position",
			},
		},
		{
			Name:      "people",
			SheetName: "People",
			Fields: []string{
				"name",
				"emails",
				"phones",
				"city",
				"jobTitle",
				"linkedinLink",
				"position",
			},
		},
	}
}

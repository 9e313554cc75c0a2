// Package config provides configuration loading, merging, and validation
// facilities for go-crm-sync.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. YAML or JSON config file
//  3. Environment variables, seeded from a .env file
//  4. Command-line flags
//
// The main entry point is [GetStructuredConfig]. Credentials are checked
// separately by [StructuredConfig.ValidateCRM] and
// [StructuredConfig.ValidateLinkedIn] because not every command needs them.
package config

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"math"
	"slices"
	"time"

	"github.com/MKhiriev/go-crm-sync/models"
)

// StructuredConfig is the top-level configuration container for go-crm-sync.
// It is populated by merging built-in defaults, an optional YAML/JSON file,
// environment variables (optionally seeded from a .env file) and
// command-line flags.
//
// Nested structs carry `env` tags read through envConfig and `yaml` tags
// read from the configuration file.
type StructuredConfig struct {
	// CRM holds the Twenty REST API connection settings.
	CRM CRM `yaml:"crm"`

	// Sheet holds the workbook location.
	Sheet Sheet `yaml:"sheet"`

	// State holds the version-marker store settings.
	State State `yaml:"state"`

	// Sync holds reconciliation and scheduling parameters.
	Sync Sync `yaml:"sync"`

	// LinkedIn holds OAuth and Member Snapshot API settings.
	LinkedIn LinkedIn `yaml:"linkedin"`

	// Log holds logging settings.
	Log Log `yaml:"log"`

	// Objects lists the object types to reconcile, in order. Only the
	// configuration file can set it.
	Objects []models.ObjectSpec `yaml:"objects"`

	// ConfigFilePath is the optional path to a YAML or JSON configuration
	// file. Populated via the CONFIG environment variable or --config.
	ConfigFilePath string `yaml:"-"`
}

// CRM holds Twenty connection settings.
type CRM struct {
	// URL is the Twenty base URL, e.g. "http://localhost:3000".
	// Env: TWENTY_API_URL
	URL string `env:"API_URL" yaml:"api_url"`

	// APIKey is the bearer token used for every request.
	// Env: TWENTY_API_KEY
	APIKey string `env:"API_KEY" yaml:"api_key"`

	// RequestTimeout bounds a single HTTP request.
	// Env: TWENTY_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout"`
}

// Sheet holds the workbook location.
type Sheet struct {
	// Path is the .xlsx file. Env: EXCEL_FILE_PATH
	Path string `env:"FILE_PATH" yaml:"path"`
}

// State holds version-marker persistence settings.
type State struct {
	// Path is the JSON file or sqlite database. Env: SYNC_STATE_PATH
	Path string `env:"PATH" yaml:"path"`

	// Backend is "file" or "sqlite". Empty selects by file extension.
	// Env: SYNC_STATE_BACKEND
	Backend string `env:"BACKEND" yaml:"backend"`
}

// State backends.
const (
	StateBackendFile   = "file"
	StateBackendSQLite = "sqlite"
)

// Sync holds reconciliation parameters. Variable names are unprefixed.
type Sync struct {
	// Strategy resolves conflicts. Env: CONFLICT_STRATEGY
	Strategy models.Strategy `env:"CONFLICT_STRATEGY" yaml:"conflict_strategy"`

	// IntervalMinutes is the pause between scheduled passes.
	// Env: SYNC_INTERVAL_MINUTES
	IntervalMinutes int `env:"SYNC_INTERVAL_MINUTES" yaml:"interval_minutes"`

	// BatchSize caps records per CRM batch request. Env: BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE" yaml:"batch_size"`

	// RateLimitDelay is the pause after every CRM request, in seconds.
	// Env: API_RATE_LIMIT_DELAY
	RateLimitDelay float64 `env:"API_RATE_LIMIT_DELAY" yaml:"rate_limit_delay"`

	// Only restricts a run to these object names. Env: SYNC_OBJECTS
	Only []string `env:"SYNC_OBJECTS" envSeparator:"," yaml:"only"`
}

// Interval returns the scheduling interval.
func (s Sync) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// Delay returns the per-request rate-limit pause.
func (s Sync) Delay() time.Duration {
	return time.Duration(math.Round(s.RateLimitDelay * float64(time.Second)))
}

// LinkedIn holds LinkedIn integration settings.
type LinkedIn struct {
	ClientID     string `env:"CLIENT_ID" yaml:"client_id"`
	ClientSecret string `env:"CLIENT_SECRET" yaml:"client_secret"`

	// RedirectURI must point at the local callback server,
	// e.g. "http://localhost:8787/callback".
	RedirectURI string `env:"REDIRECT_URI" yaml:"redirect_uri"`
	Scope       string `env:"SCOPE" yaml:"scope"`

	// TokenPath is where the OAuth token is persisted.
	TokenPath string `env:"TOKEN_PATH" yaml:"token_path"`

	// AccessToken, when set, bypasses the token file.
	AccessToken string `env:"ACCESS_TOKEN" yaml:"access_token"`

	// SnapshotDomains are the Member Snapshot domains fetched by preview.
	SnapshotDomains []string `env:"SNAPSHOT_DOMAINS" envSeparator:"," yaml:"snapshot_domains"`

	// APIURL and AuthURL are the LinkedIn API and OAuth hosts.
	APIURL  string `env:"API_URL" yaml:"api_url"`
	AuthURL string `env:"AUTH_URL" yaml:"auth_url"`

	// AuthTimeout bounds the wait for the OAuth redirect.
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT" yaml:"auth_timeout"`
}

// Log holds logging settings.
type Log struct {
	// Level is a zerolog level name. Env: LOG_LEVEL
	Level string `env:"LEVEL" yaml:"level"`

	// Format is "json", "console" or empty for auto-detection.
	// Env: LOG_FORMAT
	Format string `env:"FORMAT" yaml:"format"`
}

// SelectedObjects returns the configured object types filtered by
// Sync.Only, keeping configured order.
func (cfg *StructuredConfig) SelectedObjects() []models.ObjectSpec {
	if len(cfg.Sync.Only) == 0 {
		return cfg.Objects
	}
	out := make([]models.ObjectSpec, 0, len(cfg.Sync.Only))
	for _, o := range cfg.Objects {
		if slices.Contains(cfg.Sync.Only, o.Name) {
			out = append(out, o)
		}
	}
	return out
}

// StateBackend returns the effective state backend.
func (s State) StateBackend() string {
	if s.Backend != "" {
		return s.Backend
	}
	switch ext := extension(s.Path); ext {
	case ".db", ".sqlite", ".sqlite3":
		return StateBackendSQLite
	default:
		return StateBackendFile
	}
}

// GetStructuredConfig loads, merges, and validates the application
// configuration in the following priority order (later sources override
// earlier non-zero fields):
//  1. Built-in defaults
//  2. Configuration file (path from --config or CONFIG)
//  3. Environment variables, after loading the .env file
//  4. Command-line flags
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	if flags == nil {
		flags = &Flags{}
	}
	return newConfigBuilder().
		withDefaults().
		withDotEnv(flags.EnvFile).
		withFile(flags.ConfigPath).
		withEnv().
		withFlags(flags).
		build()
}

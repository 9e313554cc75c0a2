// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-crm-sync/models"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func buildWith(environ map[string]string, file string, flags *Flags) (*StructuredConfig, error) {
	b := newConfigBuilder()
	b.environ = environ
	if flags == nil {
		flags = &Flags{}
	}
	return b.withDefaults().withFile(file).withEnv().withFlags(flags).build()
}

// ── defaults ──────────────────────────────────────────────────────────────────

func TestBuild_Defaults(t *testing.T) {
	cfg, err := buildWith(map[string]string{}, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.CRM.URL)
	assert.Equal(t, models.StrategyNewestWins, cfg.Sync.Strategy)
	assert.Equal(t, 60, cfg.Sync.BatchSize)
	assert.Equal(t, 700*time.Millisecond, cfg.Sync.Delay())
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval())
	assert.Equal(t, StateBackendFile, cfg.State.StateBackend())
	require.Len(t, cfg.Objects, 2)
	assert.Equal(t, "companies", cfg.Objects[0].Name)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}

// ── env ───────────────────────────────────────────────────────────────────────

func TestParseEnv_AllFields(t *testing.T) {
	cfg := &StructuredConfig{}
	err := parseEnv(cfg, map[string]string{
		"CONFIG":                    "/etc/crmsync.yaml",
		"TWENTY_API_URL":            "https://crm.example.com",
		"TWENTY_API_KEY":            "secret",
		"TWENTY_REQUEST_TIMEOUT":    "10s",
		"EXCEL_FILE_PATH":           "/data/crm.xlsx",
		"SYNC_STATE_PATH":           "/data/state.db",
		"CONFLICT_STRATEGY":         "tabular_wins",
		"SYNC_INTERVAL_MINUTES":     "5",
		"BATCH_SIZE":                "20",
		"API_RATE_LIMIT_DELAY":      "0.25",
		"SYNC_OBJECTS":              "people",
		"LINKEDIN_CLIENT_ID":        "cid",
		"LINKEDIN_SNAPSHOT_DOMAINS": "PROFILE,CONNECTIONS",
		"LOG_LEVEL":                 "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, "/etc/crmsync.yaml", cfg.ConfigFilePath)
	assert.Equal(t, "https://crm.example.com", cfg.CRM.URL)
	assert.Equal(t, "secret", cfg.CRM.APIKey)
	assert.Equal(t, 10*time.Second, cfg.CRM.RequestTimeout)
	assert.Equal(t, "/data/crm.xlsx", cfg.Sheet.Path)
	assert.Equal(t, "/data/state.db", cfg.State.Path)
	assert.Equal(t, StateBackendSQLite, cfg.State.StateBackend())
	assert.Equal(t, models.StrategyTabularWins, cfg.Sync.Strategy)
	assert.Equal(t, 5, cfg.Sync.IntervalMinutes)
	assert.Equal(t, 20, cfg.Sync.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Delay())
	assert.Equal(t, []string{"people"}, cfg.Sync.Only)
	assert.Equal(t, "cid", cfg.LinkedIn.ClientID)
	assert.Equal(t, []string{"PROFILE", "CONNECTIONS"}, cfg.LinkedIn.SnapshotDomains)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParseEnv_InvalidValue(t *testing.T) {
	err := parseEnv(&StructuredConfig{}, map[string]string{"BATCH_SIZE": "many"})
	require.Error(t, err)
}

// ── file ──────────────────────────────────────────────────────────────────────

const yamlConfig = `
crm:
  api_url: https://file.example.com/
sync:
  conflict_strategy: excel_wins
  batch_size: 10
objects:
  - name: opportunities
    sheet_name: Deals
    fields: [name, amount, stage]
`

func TestBuild_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "crmsync.yaml", yamlConfig)

	cfg, err := buildWith(map[string]string{}, path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", cfg.CRM.URL)
	assert.Equal(t, models.StrategyTabularWins, cfg.Sync.Strategy)
	assert.Equal(t, 10, cfg.Sync.BatchSize)
	assert.Equal(t, path, cfg.ConfigFilePath)
	require.Len(t, cfg.Objects, 1)
	assert.Equal(t, models.ObjectSpec{Name: "opportunities", SheetName: "Deals", Fields: []string{"name", "amount", "stage"}}, cfg.Objects[0])
}

func TestBuild_FilePathFromEnv(t *testing.T) {
	path := writeFile(t, "crmsync.json", `{"sync": {"batch_size": 7}}`)

	cfg, err := buildWith(map[string]string{"CONFIG": path}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Sync.BatchSize)
}

func TestBuild_MissingFile(t *testing.T) {
	_, err := buildWith(map[string]string{}, filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

// ── precedence ────────────────────────────────────────────────────────────────

func TestBuild_EnvOverridesFileAndFlagsOverrideEnv(t *testing.T) {
	path := writeFile(t, "crmsync.yaml", yamlConfig)

	cfg, err := buildWith(map[string]string{
		"BATCH_SIZE":      "30",
		"EXCEL_FILE_PATH": "env.xlsx",
	}, path, &Flags{ExcelPath: "flag.xlsx", Strategy: "remote_wins", Verbose: true})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Sync.BatchSize)
	assert.Equal(t, "flag.xlsx", cfg.Sheet.Path)
	assert.Equal(t, models.StrategyRemoteWins, cfg.Sync.Strategy)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestFlags_Register(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)

	require.NoError(t, fs.Parse([]string{"-v", "--only", "people,companies", "--state", "s.json"}))

	assert.True(t, f.Verbose)
	assert.Equal(t, []string{"people", "companies"}, f.Only)
	assert.Equal(t, "s.json", f.StatePath)
}

// ── dotenv ────────────────────────────────────────────────────────────────────

func TestWithDotEnv_ExplicitMissingFileFails(t *testing.T) {
	b := newConfigBuilder().withDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, b.err)
}

func TestWithDotEnv_LoadsVariables(t *testing.T) {
	path := writeFile(t, "test.env", "CRMSYNC_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { _ = os.Unsetenv("CRMSYNC_TEST_DOTENV") })

	b := newConfigBuilder().withDotEnv(path)

	require.NoError(t, b.err)
	assert.Equal(t, "loaded", os.Getenv("CRMSYNC_TEST_DOTENV"))
}

// ── validation ────────────────────────────────────────────────────────────────

func TestBuild_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		file    string
		wantErr error
	}{
		{name: "strategy", environ: map[string]string{"CONFLICT_STRATEGY": "coin_flip"}, wantErr: ErrInvalidStrategy},
		{name: "batch size", environ: map[string]string{"BATCH_SIZE": "-1"}, wantErr: ErrInvalidBatchSize},
		{name: "interval", environ: map[string]string{"SYNC_INTERVAL_MINUTES": "-5"}, wantErr: ErrInvalidInterval},
		{name: "unknown object", environ: map[string]string{"SYNC_OBJECTS": "deals"}, wantErr: ErrUnknownObject},
		{name: "state backend", environ: map[string]string{"SYNC_STATE_BACKEND": "redis"}, wantErr: ErrInvalidStorageConfigs},
		{
			name:    "duplicate object",
			file:    "objects:\n  - {name: a, sheet_name: A, fields: [x]}\n  - {name: a, sheet_name: B, fields: [y]}\n",
			wantErr: ErrDuplicateObject,
		},
		{
			name:    "identity field tracked",
			file:    "objects:\n  - {name: a, sheet_name: A, fields: [id]}\n",
			wantErr: ErrInvalidObject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeFile(t, "c.yaml", tt.file)
			}
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}

			_, err := buildWith(environ, path, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCRM(t *testing.T) {
	cfg := &StructuredConfig{CRM: CRM{URL: "http://x"}}
	assert.ErrorIs(t, cfg.ValidateCRM(), ErrMissingAPIKey)

	cfg.CRM.APIKey = "k"
	assert.NoError(t, cfg.ValidateCRM())

	cfg.CRM.URL = ""
	assert.ErrorIs(t, cfg.ValidateCRM(), ErrMissingAPIURL)
}

func TestValidateLinkedIn(t *testing.T) {
	cfg := &StructuredConfig{}
	assert.ErrorIs(t, cfg.ValidateLinkedIn(), ErrMissingLinkedInClient)

	cfg.LinkedIn = LinkedIn{ClientID: "id", ClientSecret: "s"}
	assert.NoError(t, cfg.ValidateLinkedIn())
}

func TestSelectedObjects(t *testing.T) {
	cfg, err := buildWith(map[string]string{"SYNC_OBJECTS": "people"}, "", nil)
	require.NoError(t, err)

	got := cfg.SelectedObjects()
	require.Len(t, got, 1)
	assert.Equal(t, "people", got[0].Name)
}

func TestNormalizeStrategy_Aliases(t *testing.T) {
	assert.Equal(t, models.StrategyRemoteWins, NormalizeStrategy("crm_wins"))
	assert.Equal(t, models.StrategyTabularWins, NormalizeStrategy(" Excel_Wins "))
	assert.Equal(t, models.Strategy("nope"), NormalizeStrategy("nope"))
}

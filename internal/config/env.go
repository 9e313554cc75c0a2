// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig is the subset of [StructuredConfig] settable from the
// environment. Object specs are file-only.
type envConfig struct {
	CRM            CRM      `envPrefix:"TWENTY_"`
	Sheet          Sheet    `envPrefix:"EXCEL_"`
	State          State    `envPrefix:"SYNC_STATE_"`
	Sync           Sync
	LinkedIn       LinkedIn `envPrefix:"LINKEDIN_"`
	Log            Log      `envPrefix:"LOG_"`
	ConfigFilePath string   `env:"CONFIG"`
}

// parseEnv populates cfg from environment variables using the caarlos0/env
// library. Struct fields are mapped via their `env` and `envPrefix` tags.
//
// environ replaces the process environment when non-nil.
func parseEnv(cfg *StructuredConfig, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	var ec envConfig
	if err := env.ParseWithOptions(&ec, opts); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	cfg.CRM = ec.CRM
	cfg.Sheet = ec.Sheet
	cfg.State = ec.State
	cfg.Sync = ec.Sync
	cfg.LinkedIn = ec.LinkedIn
	cfg.Log = ec.Log
	cfg.ConfigFilePath = ec.ConfigFilePath

	return nil
}

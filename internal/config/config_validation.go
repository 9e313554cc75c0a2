// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"slices"

	"github.com/MKhiriev/go-crm-sync/models"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before any pass runs.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Sync.Strategy {
	case models.StrategyRemoteWins, models.StrategyTabularWins, models.StrategyNewestWins:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, cfg.Sync.Strategy)
	}

	if cfg.Sync.BatchSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, cfg.Sync.BatchSize)
	}
	if cfg.Sync.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidInterval, cfg.Sync.IntervalMinutes)
	}

	if cfg.Sheet.Path == "" || cfg.State.Path == "" {
		return ErrInvalidStorageConfigs
	}
	switch cfg.State.StateBackend() {
	case StateBackendFile, StateBackendSQLite:
	default:
		return fmt.Errorf("%w: unknown state backend %q", ErrInvalidStorageConfigs, cfg.State.Backend)
	}

	if err := validateObjects(cfg.Objects); err != nil {
		return err
	}

	for _, name := range cfg.Sync.Only {
		if !slices.ContainsFunc(cfg.Objects, func(o models.ObjectSpec) bool { return o.Name == name }) {
			return fmt.Errorf("%w: %q", ErrUnknownObject, name)
		}
	}

	return nil
}

func validateObjects(objects []models.ObjectSpec) error {
	if len(objects) == 0 {
		return ErrNoObjects
	}

	seen := make(map[string]struct{}, len(objects))
	for _, o := range objects {
		if o.Name == "" || o.SheetName == "" || len(o.Fields) == 0 {
			return fmt.Errorf("%w: %q needs a name, a sheet name and fields", ErrInvalidObject, o.Name)
		}
		if _, dup := seen[o.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateObject, o.Name)
		}
		seen[o.Name] = struct{}{}

		for _, f := range o.Fields {
			if f == "" || f == models.FieldID || f == models.FieldUpdatedAt {
				return fmt.Errorf("%w: %q tracks field %q", ErrInvalidObject, o.Name, f)
			}
		}
	}
	return nil
}

// ValidateCRM checks the settings needed to talk to the CRM.
func (cfg *StructuredConfig) ValidateCRM() error {
	if cfg.CRM.URL == "" {
		return ErrMissingAPIURL
	}
	if cfg.CRM.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ValidateLinkedIn checks the settings needed for the OAuth flow.
func (cfg *StructuredConfig) ValidateLinkedIn() error {
	if cfg.LinkedIn.ClientID == "" || cfg.LinkedIn.ClientSecret == "" {
		return ErrMissingLinkedInClient
	}
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
)

// Storages groups the local persistence layers into a single value that can
// be passed to the service layer.
type Storages struct {
	// Sheet is the workbook mirrored against the CRM.
	Sheet TabularStore

	// State holds the last-observed version markers.
	State StateStore

	// Token holds the LinkedIn OAuth token.
	Token TokenStore
}

// NewStorages initialises the local storage layer:
//  1. Opens the workbook store at cfg.Sheet.Path (the file is created lazily).
//  2. Opens the state backend selected by cfg.State, applying sqlite
//     migrations when needed.
//  3. Opens the token file at cfg.LinkedIn.TokenPath.
func NewStorages(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*Storages, error) {
	log.Debug().Msg("creating new storages...")

	state, err := NewStateStore(ctx, cfg.State, log)
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}

	return &Storages{
		Sheet: NewXLSXStore(cfg.Sheet.Path, log),
		State: state,
		Token: NewFileTokenStore(cfg.LinkedIn.TokenPath, log),
	}, nil
}

// Close releases the state backend.
func (s *Storages) Close() error {
	if s == nil || s.State == nil {
		return nil
	}
	return s.State.Close()
}

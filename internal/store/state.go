package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
)

// NewStateStore opens the state backend selected by cfg. The sqlite backend
// creates the database file and applies pending migrations.
func NewStateStore(ctx context.Context, cfg config.State, log *logger.Logger) (StateStore, error) {
	switch backend := cfg.StateBackend(); backend {
	case config.StateBackendFile:
		return NewFileStateStore(cfg.Path, log), nil
	case config.StateBackendSQLite:
		db, err := NewConnectSQLite(ctx, cfg.Path, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		if err = db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return NewSQLiteStateStore(db, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

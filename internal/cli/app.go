package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/go-crm-sync/internal/adapter"
	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/service"
	"github.com/MKhiriev/go-crm-sync/internal/store"
)

// App holds everything a command needs for one process lifetime.
type App struct {
	cfg      *config.StructuredConfig
	services *service.Services
	storages *store.Storages
	out      io.Writer
	logger   *logger.Logger
}

// NewApp loads the configuration selected by flags and wires the
// application. Configuration failures are wrapped in [ErrConfig].
func NewApp(ctx context.Context, flags *config.Flags, out, logOut io.Writer) (*App, error) {
	cfg, err := config.GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(cfg.Log.Level, flags.Verbose)),
		logger.WithOutput(logOut),
	}
	switch cfg.Log.Format {
	case "json":
		opts = append(opts, logger.WithConsole(false))
	case "console":
		opts = append(opts, logger.WithConsole(true))
	}
	log := logger.NewLogger("crmsync", opts...)
	log.Debug().Any("config", redacted(cfg)).Msg("configuration loaded")

	adapters, err := adapter.NewAdapters(cfg, out, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	storages, err := store.NewStorages(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create storages: %w", err)
	}

	services, err := service.NewServices(adapters, storages, cfg, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return &App{
		cfg:      cfg,
		services: services,
		storages: storages,
		out:      out,
		logger:   log,
	}, nil
}

// Close releases the storages.
func (a *App) Close() error {
	return a.storages.Close()
}

// redacted returns a copy of cfg safe to log.
func redacted(cfg *config.StructuredConfig) config.StructuredConfig {
	c := *cfg
	c.CRM.APIKey = mask(c.CRM.APIKey)
	c.LinkedIn.ClientSecret = mask(c.LinkedIn.ClientSecret)
	c.LinkedIn.AccessToken = mask(c.LinkedIn.AccessToken)
	return c
}

// mask keeps the first eight and last four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 12:
		return "****"
	default:
		return secret[:8] + "…" + secret[len(secret)-4:]
	}
}

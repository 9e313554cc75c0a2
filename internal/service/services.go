package service

import (
	"slices"

	"github.com/MKhiriev/go-crm-sync/internal/adapter"
	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/store"
	"github.com/MKhiriev/go-crm-sync/models"
)

type Services struct {
	SyncService SyncService
	FeedService FeedService
}

// NewServices wires the engine and the LinkedIn import. It fails only on an
// unknown conflict strategy.
func NewServices(adapters *adapter.Adapters, storages *store.Storages, cfg *config.StructuredConfig, log *logger.Logger) (*Services, error) {
	resolver, err := NewConflictResolver(cfg.Sync.Strategy)
	if err != nil {
		return nil, err
	}

	return &Services{
		SyncService: NewSyncService(adapters.Records, storages.Sheet, storages.State, resolver, cfg.SelectedObjects(), log),
		FeedService: NewFeedService(adapters, storages.Sheet, storages.Token, cfg.LinkedIn, peopleObjectSpec(cfg.Objects), log),
	}, nil
}

// peopleObjectSpec returns the configured people object type, falling back to
// the default one.
func peopleObjectSpec(objects []models.ObjectSpec) models.ObjectSpec {
	if i := slices.IndexFunc(objects, func(o models.ObjectSpec) bool { return o.Name == objectPeople }); i >= 0 {
		return objects[i]
	}
	defaults := models.DefaultObjects()
	return defaults[slices.IndexFunc(defaults, func(o models.ObjectSpec) bool { return o.Name == objectPeople })]
}

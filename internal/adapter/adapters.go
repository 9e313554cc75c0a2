package adapter

import (
	"fmt"
	"io"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
)

// FeedFactory opens an [ExternalFeed] for the given access token. The token
// is only known once the service layer has resolved it, so feeds are built
// on demand.
type FeedFactory func(accessToken string) (ExternalFeed, error)

// Adapters groups the remote collaborators of the service layer.
type Adapters struct {
	Records    RecordStore
	Authorizer Authorizer
	NewFeed    FeedFactory
}

// NewAdapters builds the Twenty record store, the LinkedIn authorizer and a
// LinkedIn feed factory from cfg. The consent URL of the OAuth flow is
// printed to out.
func NewAdapters(cfg *config.StructuredConfig, out io.Writer, log *logger.Logger) (*Adapters, error) {
	records, err := NewTwentyRecordStore(cfg.CRM, cfg.Sync, log)
	if err != nil {
		return nil, fmt.Errorf("twenty record store: %w", err)
	}

	authorizer, err := NewLinkedInAuthorizer(cfg.LinkedIn, out, log)
	if err != nil {
		return nil, fmt.Errorf("linkedin authorizer: %w", err)
	}

	return &Adapters{
		Records:    records,
		Authorizer: authorizer,
		NewFeed: func(accessToken string) (ExternalFeed, error) {
			return NewLinkedInFeed(cfg.LinkedIn, cfg.Sync, accessToken, log)
		},
	}, nil
}

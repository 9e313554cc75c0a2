package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/models"
)

// markerLayouts are tried in order when comparing version markers.
var markerLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type conflictResolver struct {
	strategy models.Strategy
}

// NewConflictResolver returns the resolver for strategy. The legacy names
// crm_wins and excel_wins are accepted.
func NewConflictResolver(strategy models.Strategy) (ConflictResolver, error) {
	switch s := config.NormalizeStrategy(strategy); s {
	case models.StrategyRemoteWins, models.StrategyTabularWins, models.StrategyNewestWins:
		return conflictResolver{strategy: s}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

func (r conflictResolver) Strategy() models.Strategy {
	return r.strategy
}

// Resolve implements [ConflictResolver]. Under newest_wins the sheet wins
// only when its marker is strictly newer; a tie or an unparseable marker
// keeps the CRM version.
func (r conflictResolver) Resolve(c models.Conflict) models.Side {
	switch r.strategy {
	case models.StrategyTabularWins:
		return models.SideTabular
	case models.StrategyNewestWins:
		remote, okRemote := parseMarker(c.Remote.UpdatedAt)
		tabular, okTabular := parseMarker(c.Tabular.UpdatedAt)
		if okRemote && okTabular && tabular.After(remote) {
			return models.SideTabular
		}
		return models.SideRemote
	default:
		return models.SideRemote
	}
}

func parseMarker(marker string) (time.Time, bool) {
	marker = strings.TrimSpace(marker)
	for _, layout := range markerLayouts {
		if t, err := time.Parse(layout, marker); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

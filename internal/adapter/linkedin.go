package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

const (
	linkedInVersion       = "202312"
	linkedInRetryFallback = 10 * time.Second
	linkedInTimeout       = 30 * time.Second

	domainConnections = "CONNECTIONS"

	// noDataMarker is how the snapshot API signals that paging ran past the
	// last page.
	noDataMarker = "No data found"
)

type linkedInFeed struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewLinkedInFeed constructs an [ExternalFeed] reading the LinkedIn Member
// Snapshot API on behalf of the member owning accessToken.
func NewLinkedInFeed(liCfg config.LinkedIn, syncCfg config.Sync, accessToken string, log *logger.Logger) (ExternalFeed, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: empty linkedin access token", ErrUnauthorized)
	}
	baseURL, err := normalizeBaseURL(liCfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid linkedin api url: %w", err)
	}

	client := utils.NewHTTPClient().
		WithRetryOnce(linkedInRetryFallback).
		WithThrottle(syncCfg.Delay())
	client.
		SetBaseURL(baseURL).
		SetTimeout(linkedInTimeout).
		SetAuthToken(strings.TrimSpace(accessToken)).
		SetHeader("Linkedin-Version", linkedInVersion).
		SetHeader("Content-Type", "application/json")

	return &linkedInFeed{client: client, logger: log}, nil
}

type snapshotPage struct {
	Elements []struct {
		SnapshotDomain string           `json:"snapshotDomain"`
		SnapshotData   []map[string]any `json:"snapshotData"`
	} `json:"elements"`
	Paging struct {
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	} `json:"paging"`
}

func (p snapshotPage) hasNext() bool {
	for _, l := range p.Paging.Links {
		if l.Rel == "next" {
			return true
		}
	}
	return false
}

// Snapshot implements [ExternalFeed]. It walks
// GET /rest/memberSnapshotData?q=criteria&domain=D&start=n one page at a time
// and flattens the snapshotData of every element.
func (f *linkedInFeed) Snapshot(ctx context.Context, domain string) ([]map[string]any, error) {
	var rows []map[string]any

	for start := 0; ; start++ {
		var page snapshotPage

		req := f.client.R().
			SetContext(ctx).
			SetQueryParam("q", "criteria").
			SetQueryParam("start", strconv.Itoa(start)).
			SetResult(&page)
		if domain != "" {
			req.SetQueryParam("domain", domain)
		}

		resp, err := req.Get("/rest/memberSnapshotData")
		if err != nil {
			return nil, fmt.Errorf("snapshot %s request: %w", domain, err)
		}
		if err = mapHTTPError(resp); err != nil {
			if isNoData(err) {
				break
			}
			return nil, fmt.Errorf("snapshot %s: %w", domain, err)
		}

		if len(page.Elements) == 0 {
			break
		}
		for _, el := range page.Elements {
			rows = append(rows, el.SnapshotData...)
		}
		if !page.hasNext() {
			break
		}
	}

	f.logger.Info().Str("domain", domainLabel(domain)).Int("rows", len(rows)).Msg("fetched linkedin snapshot")
	return rows, nil
}

// Connections implements [ExternalFeed] over the CONNECTIONS domain.
func (f *linkedInFeed) Connections(ctx context.Context) ([]models.Connection, error) {
	rows, err := f.Snapshot(ctx, domainConnections)
	if err != nil {
		return nil, err
	}

	out := make([]models.Connection, 0, len(rows))
	for _, row := range rows {
		out = append(out, connectionFromRow(row))
	}
	return out, nil
}

// Domains implements [ExternalFeed].
func (f *linkedInFeed) Domains(ctx context.Context, domains []string) map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(domains))
	for _, domain := range domains {
		domain = strings.TrimSpace(domain)
		if domain == "" {
			continue
		}

		rows, err := f.Snapshot(ctx, domain)
		if err != nil {
			f.logger.Error().Err(err).Str("domain", domain).Msg("failed to fetch linkedin domain")
			rows = []map[string]any{}
		}
		out[domain] = rows
	}
	return out
}

func connectionFromRow(row map[string]any) models.Connection {
	get := func(key string) string {
		s, _ := row[key].(string)
		return strings.TrimSpace(s)
	}
	return models.Connection{
		FirstName:   get("First Name"),
		LastName:    get("Last Name"),
		Email:       get("Email Address"),
		Company:     get("Company"),
		Position:    get("Position"),
		URL:         get("URL"),
		ConnectedOn: get("Connected On"),
	}
}

func domainLabel(domain string) string {
	if domain == "" {
		return "ALL"
	}
	return domain
}

func isNoData(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Body, noDataMarker)
}

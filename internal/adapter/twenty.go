package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

const (
	// retryFallback is the pause before the single retry when the remote
	// sends no Retry-After header.
	retryFallback = 5 * time.Second

	healthTimeout = 5 * time.Second
)

type twentyRecordStore struct {
	client *utils.HTTPClient

	batchSize int

	logger *logger.Logger
}

// NewTwentyRecordStore constructs a [RecordStore] backed by the Twenty REST
// API. Every request carries the API key as a bearer token, is retried once
// on 429 or a transport failure and is followed by the configured
// rate-limit pause. Page size and write chunk size both equal
// syncCfg.BatchSize.
//
// Returns an error if crmCfg.URL is empty or cannot be parsed as a valid URL.
func NewTwentyRecordStore(crmCfg config.CRM, syncCfg config.Sync, log *logger.Logger) (RecordStore, error) {
	baseURL, err := normalizeBaseURL(crmCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid crm url: %w", err)
	}

	batchSize := syncCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 60
	}

	client := utils.NewHTTPClient().
		WithRetryOnce(retryFallback).
		WithThrottle(syncCfg.Delay())
	client.
		SetBaseURL(baseURL).
		SetTimeout(crmCfg.RequestTimeout).
		SetAuthToken(crmCfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &twentyRecordStore{client: client, batchSize: batchSize, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// GetAll implements [RecordStore]. It pages through
// GET /rest/{object}?limit=N&starting_after=cursor until pageInfo reports no
// next page or a page comes back empty.
func (s *twentyRecordStore) GetAll(ctx context.Context, object string) ([]models.Record, error) {
	var (
		records []models.Record
		cursor  string
	)

	for {
		req := s.client.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(s.batchSize))
		if cursor != "" {
			req.SetQueryParam("starting_after", cursor)
		}

		resp, err := req.Get("/rest/" + url.PathEscape(object))
		if err != nil {
			return nil, fmt.Errorf("list %s request: %w", object, err)
		}
		if err = mapHTTPError(resp); err != nil {
			return nil, fmt.Errorf("list %s: %w", object, err)
		}

		var body map[string]any
		if err = json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, fmt.Errorf("list %s decode: %w", object, err)
		}

		page := extractRecords(body, object)
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			records = append(records, models.RecordFromMap(m))
		}

		info := decodePageInfo(body["pageInfo"])
		if !info.HasNextPage || info.EndCursor == "" {
			break
		}
		cursor = info.EndCursor
	}

	s.logger.Debug().Str("object", object).Int("count", len(records)).Msg("fetched records from crm")
	return records, nil
}

// CreateMany implements [RecordStore] via POST /rest/batch/{object}.
func (s *twentyRecordStore) CreateMany(ctx context.Context, object string, records []models.Record) ([]models.Record, error) {
	return s.batch(ctx, http.MethodPost, models.OpRemoteCreate, object, records)
}

// UpdateMany implements [RecordStore] via PATCH /rest/batch/{object}.
func (s *twentyRecordStore) UpdateMany(ctx context.Context, object string, records []models.Record) ([]models.Record, error) {
	for _, r := range records {
		if r.ID == "" {
			return nil, &BatchError{Object: object, Op: models.OpRemoteUpdate, Total: len(records),
				Err: fmt.Errorf("%w: update without id", ErrBadRequest)}
		}
	}
	return s.batch(ctx, http.MethodPatch, models.OpRemoteUpdate, object, records)
}

func (s *twentyRecordStore) batch(ctx context.Context, method, op, object string, records []models.Record) ([]models.Record, error) {
	applied := make([]models.Record, 0, len(records))

	for chunk := range slices.Chunk(records, s.batchSize) {
		payload := make([]map[string]any, len(chunk))
		for i, r := range chunk {
			payload[i] = r.Payload()
		}

		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(payload).
			Execute(method, "/rest/batch/"+url.PathEscape(object))
		if err == nil {
			err = mapHTTPError(resp)
		}
		if err != nil {
			s.logger.Error().Err(err).
				Str("object", object).
				Str("op", op).
				Int("records", len(chunk)).
				Msg("crm batch failed")
			return applied, &BatchError{Object: object, Op: op, Applied: len(applied), Total: len(records), Err: err}
		}

		applied = append(applied, matchReturned(chunk, decodeRecords(resp.Body(), object))...)
	}

	return applied, nil
}

// matchReturned pairs the records echoed by the CRM with the records sent.
// The CRM answers in request order; when it echoes nothing the sent records
// stand in for it.
func matchReturned(sent []models.Record, returned []map[string]any) []models.Record {
	if len(returned) == 0 {
		return slices.Clone(sent)
	}

	out := make([]models.Record, len(returned))
	for i, m := range returned {
		out[i] = models.RecordFromMap(m)
		if len(returned) == len(sent) {
			out[i].Row = sent[i].Row
		}
	}
	return out
}

// Health implements [RecordStore] via GET /healthz with a five second bound.
func (s *twentyRecordStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := s.client.R().SetContext(ctx).Get("/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

func decodeRecords(raw []byte, object string) []map[string]any {
	var body any
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		return nil
	}
	return extractRecords(body, object)
}

// extractRecords finds the record list in a Twenty response. Lists are looked
// up under data.{object}, then the singular key, then the first list in data
// by key order. A lone object with an id counts as a one-element list.
func extractRecords(body any, object string) []map[string]any {
	if m, ok := body.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			body = data
		}
	}

	switch v := body.(type) {
	case []any:
		return onlyMaps(v)
	case map[string]any:
		for _, key := range []string{object, strings.TrimSuffix(object, "s")} {
			if list, ok := v[key].([]any); ok {
				return onlyMaps(list)
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if list, ok := v[k].([]any); ok {
				return onlyMaps(list)
			}
		}
		for _, k := range keys {
			if one, ok := v[k].(map[string]any); ok {
				if _, hasID := one[models.FieldID]; hasID {
					return []map[string]any{one}
				}
			}
		}
		if _, hasID := v[models.FieldID]; hasID {
			return []map[string]any{v}
		}
	}
	return nil
}

func onlyMaps(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func decodePageInfo(raw any) pageInfo {
	m, _ := raw.(map[string]any)
	info := pageInfo{}
	info.HasNextPage, _ = m["hasNextPage"].(bool)
	info.EndCursor, _ = m["endCursor"].(string)
	return info
}

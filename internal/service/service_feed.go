package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/adapter"
	"github.com/MKhiriev/go-crm-sync/internal/codec"
	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/store"
	"github.com/MKhiriev/go-crm-sync/models"
)

const (
	objectPeople    = "people"
	objectCompanies = "companies"

	fieldName         = "name"
	fieldEmails       = "emails"
	fieldJobTitle     = "jobTitle"
	fieldLinkedinLink = "linkedinLink"
	fieldCompanyID    = "companyId"
)

type feedService struct {
	records    adapter.RecordStore
	sheet      store.TabularStore
	tokens     store.TokenStore
	authorizer adapter.Authorizer
	newFeed    adapter.FeedFactory

	cfg    config.LinkedIn
	people models.ObjectSpec

	now func() time.Time

	logger *logger.Logger
}

// NewFeedService constructs the LinkedIn import. Created people are also
// written to the sheet described by people.
func NewFeedService(
	adapters *adapter.Adapters,
	sheet store.TabularStore,
	tokens store.TokenStore,
	cfg config.LinkedIn,
	people models.ObjectSpec,
	log *logger.Logger,
) FeedService {
	return &feedService{
		records:    adapters.Records,
		sheet:      sheet,
		tokens:     tokens,
		authorizer: adapters.Authorizer,
		newFeed:    adapters.NewFeed,
		cfg:        cfg,
		people:     people,
		now:        time.Now,
		logger:     log,
	}
}

// AccessToken implements [FeedService]. A token set in the environment takes
// precedence over the token file.
func (s *feedService) AccessToken(ctx context.Context) (string, error) {
	if token := strings.TrimSpace(s.cfg.AccessToken); token != "" {
		return token, nil
	}

	token, err := s.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) || errors.Is(err, store.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", ErrNoLinkedInToken, err)
		}
		return "", err
	}
	return token.AccessToken, nil
}

func (s *feedService) Authenticate(ctx context.Context) (models.OAuthToken, error) {
	if s.authorizer == nil {
		return models.OAuthToken{}, ErrAuthorizerDisabled
	}

	token, err := s.authorizer.Authorize(ctx)
	if err != nil {
		return models.OAuthToken{}, fmt.Errorf("linkedin authorisation: %w", err)
	}
	if err = s.tokens.Save(ctx, token); err != nil {
		return models.OAuthToken{}, err
	}
	return token, nil
}

func (s *feedService) SaveToken(ctx context.Context, accessToken string, expiresIn int64) (models.OAuthToken, error) {
	token := adapter.NewOAuthToken(accessToken, expiresIn, s.cfg.Scope, s.now())
	if token.AccessToken == "" {
		return models.OAuthToken{}, fmt.Errorf("%w: empty access token", ErrNoLinkedInToken)
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return models.OAuthToken{}, err
	}
	return token, nil
}

func (s *feedService) Preview(ctx context.Context) (map[string][]map[string]any, error) {
	feed, err := s.feed(ctx)
	if err != nil {
		return nil, err
	}
	return feed.Domains(ctx, s.cfg.SnapshotDomains), nil
}

// Import implements [FeedService].
func (s *feedService) Import(ctx context.Context, scope models.FeedScope, dryRun bool) (models.FeedResult, error) {
	res := models.FeedResult{DryRun: dryRun}
	if !scope.People() && !scope.Companies() {
		return res, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	feed, err := s.feed(ctx)
	if err != nil {
		return res, err
	}

	connections, err := feed.Connections(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch linkedin connections: %w", err)
	}
	res.ConnectionsFetched = len(connections)
	s.logger.Info().Int("connections", len(connections)).Msg("linkedin connections fetched")

	companyIDs := map[string]string{}
	if scope.Companies() {
		if companyIDs, err = s.ensureCompanies(ctx, connections, dryRun, &res); err != nil {
			return res, err
		}
	} else {
		s.logger.Info().Str("scope", string(scope)).Msg("skipping companies")
	}

	if scope.People() {
		if err = s.upsertPeople(ctx, connections, companyIDs, dryRun, &res); err != nil {
			return res, err
		}
	} else {
		s.logger.Info().Str("scope", string(scope)).Msg("skipping people")
	}

	return res, nil
}

func (s *feedService) feed(ctx context.Context) (adapter.ExternalFeed, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.newFeed(token)
}

// ensureCompanies creates the companies named by connections that the CRM
// does not know yet and returns lower-cased name → id for every known one.
func (s *feedService) ensureCompanies(ctx context.Context, connections []models.Connection, dryRun bool, res *models.FeedResult) (map[string]string, error) {
	existing, err := s.records.GetAll(ctx, objectCompanies)
	if err != nil {
		return nil, fmt.Errorf("fetch companies: %w", err)
	}

	ids := make(map[string]string, len(existing))
	for _, rec := range existing {
		if key := nameKey(rec.Get(fieldName)); key != "" && rec.ID != "" {
			ids[key] = rec.ID
		}
	}

	var toCreate []models.Record
	for _, name := range companyNames(connections) {
		if _, ok := ids[strings.ToLower(name)]; ok {
			res.CompaniesSkipped++
			continue
		}
		toCreate = append(toCreate, models.Record{Fields: map[string]models.Value{fieldName: models.Scalar{V: name}}})
	}

	if dryRun || len(toCreate) == 0 {
		res.CompaniesCreated = len(toCreate)
		s.logger.Info().Bool("dry_run", dryRun).
			Int("created", res.CompaniesCreated).
			Int("existing", res.CompaniesSkipped).
			Msg("companies")
		return ids, nil
	}

	created, batch := s.write(ctx, models.OpRemoteCreate, objectCompanies, toCreate, s.records.CreateMany)
	res.Batches = append(res.Batches, batch)
	res.CompaniesCreated = len(created)
	for i, rec := range created {
		key := nameKey(rec.Get(fieldName))
		if key == "" && i < len(toCreate) {
			key = nameKey(toCreate[i].Get(fieldName))
		}
		if key != "" && rec.ID != "" {
			ids[key] = rec.ID
		}
	}

	s.logger.Info().
		Int("created", res.CompaniesCreated).
		Int("existing", res.CompaniesSkipped).
		Int("failed", len(toCreate)-len(created)).
		Msg("companies")
	return ids, nil
}

// upsertPeople matches connections to CRM people by LinkedIn URL, then by
// full name. Matches get a patch of the fields that changed; the rest are
// created and written to the people sheet.
func (s *feedService) upsertPeople(ctx context.Context, connections []models.Connection, companyIDs map[string]string, dryRun bool, res *models.FeedResult) error {
	existing, err := s.records.GetAll(ctx, objectPeople)
	if err != nil {
		return fmt.Errorf("fetch people: %w", err)
	}

	byURL := make(map[string]models.Record, len(existing))
	byName := make(map[string]models.Record, len(existing))
	for _, rec := range existing {
		if url := linkKey(rec.Get(fieldLinkedinLink)); url != "" {
			byURL[url] = rec
		}
		if key := nameKey(rec.Get(fieldName)); key != "" {
			byName[key] = rec
		}
	}

	var toCreate, toUpdate []models.Record
	for _, conn := range connections {
		person := personFromConnection(conn)

		match, found := byURL[strings.TrimRight(conn.URL, "/")]
		if !found {
			match, found = byName[strings.ToLower(conn.FullName())]
		}

		if !found {
			if id, ok := companyIDs[strings.ToLower(strings.TrimSpace(conn.Company))]; ok && conn.Company != "" {
				person.Fields[fieldCompanyID] = models.Scalar{V: id}
			}
			toCreate = append(toCreate, person)
			continue
		}

		if patch := personPatch(match, person); len(patch) > 0 {
			toUpdate = append(toUpdate, models.Record{ID: match.ID, Fields: patch})
		} else {
			res.PeopleSkipped++
		}
	}

	if dryRun {
		res.PeopleCreated = len(toCreate)
		res.PeopleUpdated = len(toUpdate)
		s.logger.Info().Bool("dry_run", true).
			Int("created", res.PeopleCreated).
			Int("updated", res.PeopleUpdated).
			Int("skipped", res.PeopleSkipped).
			Msg("people")
		return nil
	}

	var created []models.Record
	if len(toCreate) > 0 {
		var batch models.BatchResult
		created, batch = s.write(ctx, models.OpRemoteCreate, objectPeople, toCreate, s.records.CreateMany)
		res.Batches = append(res.Batches, batch)
		res.PeopleCreated = len(created)
	}
	if len(toUpdate) > 0 {
		updated, batch := s.write(ctx, models.OpRemoteUpdate, objectPeople, toUpdate, s.records.UpdateMany)
		res.Batches = append(res.Batches, batch)
		res.PeopleUpdated = len(updated)
	}

	s.logger.Info().
		Int("created", res.PeopleCreated).
		Int("updated", res.PeopleUpdated).
		Int("skipped", res.PeopleSkipped).
		Msg("people")

	if len(created) > 0 {
		n, err := s.sheet.UpsertMany(ctx, s.people, created)
		batch := models.BatchResult{Op: models.OpTabularUpsert, Attempted: len(created), Succeeded: n}
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to write linkedin people to sheet")
			batch.Failures = []models.BatchFailure{{Reason: err.Error(), Count: len(created) - n}}
		}
		res.Batches = append(res.Batches, batch)
	}
	return nil
}

func (s *feedService) write(ctx context.Context, op, object string, records []models.Record, write remoteWrite) ([]models.Record, models.BatchResult) {
	applied, err := write(ctx, object, records)
	batch := models.BatchResult{Op: op, Attempted: len(records), Succeeded: len(applied)}
	if err != nil {
		s.logger.Warn().Err(err).Str("object", object).Str("op", op).Int("records", len(records)).Msg("batch failed")
		batch.Failures = []models.BatchFailure{{Reason: err.Error(), Count: len(records) - len(applied)}}
	}
	return applied, batch
}

// personFromConnection maps a connection onto CRM people fields. Empty
// values are left out except the name.
func personFromConnection(c models.Connection) models.Record {
	fields := map[string]models.Value{
		fieldName: models.Name{FirstName: c.FirstName, LastName: c.LastName},
	}
	if c.Email != "" {
		fields[fieldEmails] = models.Email{Primary: c.Email}
	}
	if c.Position != "" {
		fields[fieldJobTitle] = models.Scalar{V: c.Position}
	}
	if c.URL != "" {
		fields[fieldLinkedinLink] = models.Link{URL: c.URL}
	}
	return models.Record{Fields: fields}
}

// personPatch returns the non-empty mapped fields that differ from the CRM
// record, shaped after the CRM values.
func personPatch(existing, person models.Record) map[string]models.Value {
	patch := make(map[string]models.Value)
	for field, v := range person.Fields {
		if field == fieldCompanyID || codec.IsEmpty(v) {
			continue
		}
		cell := codec.Flatten(v)
		if codec.Equal(existing.Get(field), cell) {
			continue
		}
		patch[field] = codec.Unflatten(field, cell, existing.Fields[field])
	}
	return patch
}

// companyNames returns the distinct company names of connections, sorted.
// Names differing only in case are merged.
func companyNames(connections []models.Connection) []string {
	seen := make(map[string]struct{}, len(connections))
	var names []string
	for _, c := range connections {
		name := strings.TrimSpace(c.Company)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func nameKey(v models.Value) string {
	s, _ := codec.Flatten(v).(string)
	return strings.ToLower(strings.TrimSpace(s))
}

func linkKey(v models.Value) string {
	s, _ := codec.Flatten(v).(string)
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/adapter"
	"github.com/MKhiriev/go-crm-sync/internal/codec"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/store"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

type syncService struct {
	records adapter.RecordStore
	sheet   store.TabularStore
	states  store.StateStore

	diff     DiffService
	resolver ConflictResolver

	objects []models.ObjectSpec

	// state is loaded by the first pass and kept for the engine's lifetime.
	mu    sync.Mutex
	state *models.SyncState

	ids *utils.UUIDGenerator
	now func() time.Time

	logger *logger.Logger
}

// objectPass reconciles one object type against state.
type objectPass func(ctx context.Context, log *logger.Logger, spec models.ObjectSpec, state *models.SyncState) models.ObjectResult

// NewSyncService constructs the reconciliation engine for objects, processed
// in the given order.
func NewSyncService(
	records adapter.RecordStore,
	sheet store.TabularStore,
	states store.StateStore,
	resolver ConflictResolver,
	objects []models.ObjectSpec,
	log *logger.Logger,
) SyncService {
	return &syncService{
		records:  records,
		sheet:    sheet,
		states:   states,
		diff:     NewDiffService(),
		resolver: resolver,
		objects:  objects,
		ids:      utils.NewUUIDGenerator(),
		now:      time.Now,
		logger:   log,
	}
}

func (s *syncService) SyncAll(ctx context.Context) (*models.Report, error) {
	return s.run(ctx, models.ModeSync, s.syncObject)
}

func (s *syncService) Pull(ctx context.Context) (*models.Report, error) {
	return s.run(ctx, models.ModePull, s.pullObject)
}

func (s *syncService) Push(ctx context.Context) (*models.Report, error) {
	return s.run(ctx, models.ModePush, s.pushObject)
}

func (s *syncService) Health(ctx context.Context) error {
	return s.records.Health(ctx)
}

// run applies pass to every object type and saves the state once at the
// end. The state is read from the store only by the first successful run;
// later runs continue from the in-memory copy. Cancellation is honoured
// between object types only: a pass that has started runs to completion.
func (s *syncService) run(ctx context.Context, mode models.Mode, pass objectPass) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID, ok := utils.GetRunIDFromContext(ctx)
	if !ok {
		runID = s.ids.Generate()
	}
	log := s.logger.WithRun(runID)
	ctx = log.WithContext(ctx)

	report := &models.Report{RunID: runID, Mode: mode, StartedAt: s.now()}
	log.Info().Str("mode", string(mode)).Int("objects", len(s.objects)).Msg("pass started")

	state, err := s.loadState(ctx)
	if err != nil {
		report.FinishedAt = s.now()
		return report, fmt.Errorf("%w: %w", ErrStateLoad, err)
	}

	passCtx := context.WithoutCancel(ctx)
	for _, spec := range s.objects {
		if ctx.Err() != nil {
			log.Warn().Str("object", spec.Name).Msg("pass cancelled, remaining object types skipped")
			break
		}

		objLog := log.WithObject(spec.Name)
		res := pass(passCtx, objLog, spec, state)
		report.Objects = append(report.Objects, res)

		if res.Err != nil {
			continue
		}
		objLog.Info().
			Int("remote_to_tabular", res.Counters.RemoteToTabular).
			Int("created", res.Counters.TabularToRemoteCreated).
			Int("updated", res.Counters.TabularToRemoteUpdated).
			Int("conflicts", res.Counters.Conflicts).
			Int("skipped", res.Counters.Skipped).
			Int("failed_batches", res.FailedBatches()).
			Msg("object done")
	}

	report.FinishedAt = s.now()
	if err = s.states.Save(passCtx, state); err != nil {
		log.Error().Err(err).Msg("failed to save sync state")
		return report, fmt.Errorf("%w: %w", ErrStatePersistence, err)
	}

	log.Info().Msg(report.Summary())
	return report, nil
}

func (s *syncService) syncObject(ctx context.Context, log *logger.Logger, spec models.ObjectSpec, state *models.SyncState) models.ObjectResult {
	res := models.ObjectResult{Object: spec.Name}

	remote, err := s.records.GetAll(ctx, spec.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch crm records")
		res.Err = fmt.Errorf("fetch %s: %w", spec.Name, err)
		return res
	}
	tabular := s.readSheet(ctx, log, spec)

	diff := s.diff.Compute(remote, tabular, spec.Fields)
	res.Drift = s.drift(log, spec, state, remote)
	logConflicts(log, diff.Conflicts)

	toSheet := append([]models.Record(nil), diff.RemoteOnly...)
	var patches []models.Record
	for _, c := range diff.Conflicts {
		if s.resolver.Resolve(c) == models.SideTabular {
			patches = append(patches, conflictPatch(c))
			continue
		}
		toSheet = append(toSheet, c.Remote)
	}
	creates, empty := createPayloads(diff.TabularNew, spec.Fields, fieldTemplates(remote, spec.Fields))

	res.Counters.Conflicts = len(diff.Conflicts)
	res.Counters.Skipped = len(diff.Unchanged) + len(diff.Orphans) + len(diff.Duplicates) + empty

	if len(toSheet) > 0 {
		n, batch := s.upsertSheet(ctx, log, spec, toSheet)
		res.Counters.RemoteToTabular = n
		res.Batches = append(res.Batches, batch)
	}

	var created []models.Record
	if len(creates) > 0 {
		var batch models.BatchResult
		created, batch = s.writeRemote(ctx, log, models.OpRemoteCreate, spec.Name, creates, s.records.CreateMany)
		res.Counters.TabularToRemoteCreated = len(created)
		res.Batches = append(res.Batches, batch)
	}
	if len(patches) > 0 {
		updated, batch := s.writeRemote(ctx, log, models.OpRemoteUpdate, spec.Name, patches, s.records.UpdateMany)
		res.Counters.TabularToRemoteUpdated = len(updated)
		res.Batches = append(res.Batches, batch)
	}

	refreshed, err := s.records.GetAll(ctx, spec.Name)
	if err != nil {
		log.Warn().Err(err).Msg("failed to re-fetch crm records, sheet not refreshed")
		// keep the new ids in their source rows so the next pass does not
		// create them again
		if len(created) > 0 {
			if _, upsertErr := s.sheet.UpsertMany(ctx, spec, created); upsertErr != nil {
				log.Error().Err(upsertErr).Msg("failed to write created ids to sheet")
			}
		}
		return res
	}

	res.Batches = append(res.Batches, s.overwriteSheet(ctx, log, spec, refreshed))
	state.Observe(spec.Name, refreshed, s.stamp())
	return res
}

func (s *syncService) pullObject(ctx context.Context, log *logger.Logger, spec models.ObjectSpec, state *models.SyncState) models.ObjectResult {
	res := models.ObjectResult{Object: spec.Name}

	remote, err := s.records.GetAll(ctx, spec.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch crm records")
		res.Err = fmt.Errorf("fetch %s: %w", spec.Name, err)
		return res
	}
	res.Drift = s.drift(log, spec, state, remote)

	batch := s.overwriteSheet(ctx, log, spec, remote)
	res.Counters.RemoteToTabular = batch.Succeeded
	res.Batches = append(res.Batches, batch)

	state.Observe(spec.Name, remote, s.stamp())
	return res
}

func (s *syncService) pushObject(ctx context.Context, log *logger.Logger, spec models.ObjectSpec, state *models.SyncState) models.ObjectResult {
	res := models.ObjectResult{Object: spec.Name}

	remote, err := s.records.GetAll(ctx, spec.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch crm records")
		res.Err = fmt.Errorf("fetch %s: %w", spec.Name, err)
		return res
	}
	tabular := s.readSheet(ctx, log, spec)

	diff := s.diff.Compute(remote, tabular, spec.Fields)
	res.Drift = s.drift(log, spec, state, remote)
	logConflicts(log, diff.Conflicts)

	creates, empty := createPayloads(diff.TabularNew, spec.Fields, fieldTemplates(remote, spec.Fields))
	patches := make([]models.Record, 0, len(diff.Conflicts))
	for _, c := range diff.Conflicts {
		patches = append(patches, conflictPatch(c))
	}

	res.Counters.Conflicts = len(diff.Conflicts)
	res.Counters.Skipped = len(diff.Unchanged) + len(diff.Orphans) + len(diff.Duplicates) + empty

	var created, updated []models.Record
	if len(creates) > 0 {
		var batch models.BatchResult
		created, batch = s.writeRemote(ctx, log, models.OpRemoteCreate, spec.Name, creates, s.records.CreateMany)
		res.Counters.TabularToRemoteCreated = len(created)
		res.Batches = append(res.Batches, batch)
	}
	if len(patches) > 0 {
		var batch models.BatchResult
		updated, batch = s.writeRemote(ctx, log, models.OpRemoteUpdate, spec.Name, patches, s.records.UpdateMany)
		res.Counters.TabularToRemoteUpdated = len(updated)
		res.Batches = append(res.Batches, batch)
	}
	if len(created) > 0 {
		n, batch := s.upsertSheet(ctx, log, spec, created)
		res.Counters.RemoteToTabular = n
		res.Batches = append(res.Batches, batch)
	}

	observed := make([]models.Record, 0, len(remote)+len(created)+len(updated))
	observed = append(observed, remote...)
	observed = append(observed, created...)
	observed = append(observed, updated...)
	state.Observe(spec.Name, observed, s.stamp())
	return res
}

func (s *syncService) loadState(ctx context.Context) (*models.SyncState, error) {
	if s.state != nil {
		return s.state, nil
	}
	state, err := s.states.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = models.NewSyncState()
	}
	s.state = state
	return state, nil
}

// readSheet returns the sheet snapshot; an unreadable sheet counts as empty.
func (s *syncService) readSheet(ctx context.Context, log *logger.Logger, spec models.ObjectSpec) []models.Record {
	rows, err := s.sheet.ReadAll(ctx, spec)
	if err != nil {
		log.Error().Err(err).Str("sheet", spec.SheetName).Msg("failed to read sheet, treating it as empty")
		return nil
	}
	return rows
}

func (s *syncService) drift(log *logger.Logger, spec models.ObjectSpec, state *models.SyncState, remote []models.Record) models.Drift {
	d := state.Drift(spec.Name, remote)
	log.Info().
		Int("records", len(remote)).
		Int("new", d.New).
		Int("changed", d.Changed).
		Int("tracked", state.Len(spec.Name)).
		Msg("crm drift since last run")
	return d
}

func (s *syncService) upsertSheet(ctx context.Context, log *logger.Logger, spec models.ObjectSpec, records []models.Record) (int, models.BatchResult) {
	n, err := s.sheet.UpsertMany(ctx, spec, records)
	batch := models.BatchResult{Op: models.OpTabularUpsert, Attempted: len(records), Succeeded: n}
	if err != nil {
		log.Error().Err(err).Str("op", batch.Op).Int("records", len(records)).Msg("batch failed")
		batch.Failures = []models.BatchFailure{{Reason: err.Error(), Count: len(records) - n}}
	}
	return n, batch
}

func (s *syncService) overwriteSheet(ctx context.Context, log *logger.Logger, spec models.ObjectSpec, records []models.Record) models.BatchResult {
	n, err := s.sheet.OverwriteAll(ctx, spec, records)
	batch := models.BatchResult{Op: models.OpTabularOverwrite, Attempted: len(records), Succeeded: n}
	if err != nil {
		log.Error().Err(err).Str("op", batch.Op).Int("records", len(records)).Msg("batch failed")
		batch.Failures = []models.BatchFailure{{Reason: err.Error(), Count: len(records) - n}}
	}
	return batch
}

type remoteWrite func(ctx context.Context, object string, records []models.Record) ([]models.Record, error)

// writeRemote sends one create or update batch. Records applied before a
// failure are returned and counted as succeeded.
func (s *syncService) writeRemote(ctx context.Context, log *logger.Logger, op, object string, records []models.Record, write remoteWrite) ([]models.Record, models.BatchResult) {
	applied, err := write(ctx, object, records)
	batch := models.BatchResult{Op: op, Attempted: len(records), Succeeded: len(applied)}
	if err != nil {
		log.Error().Err(err).Str("op", op).Int("records", len(records)).Int("applied", len(applied)).Msg("batch failed")
		batch.Failures = []models.BatchFailure{{Reason: err.Error(), Count: len(records) - len(applied)}}
	}
	return applied, batch
}

func (s *syncService) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func logConflicts(log *logger.Logger, conflicts []models.Conflict) {
	for _, c := range conflicts {
		log.Debug().
			Str("id", c.Remote.ID).
			Strs("fields", c.Fields).
			Str("remote_updated_at", c.Remote.UpdatedAt).
			Str("tabular_updated_at", c.Tabular.UpdatedAt).
			Msg("conflict")
	}
}

// fieldTemplates returns, per tracked field, an empty value shaped like the
// first CRM record that has one.
func fieldTemplates(remote []models.Record, fields []string) map[string]models.Value {
	templates := make(map[string]models.Value, len(fields))
	for _, f := range fields {
		for _, r := range remote {
			if t := codec.Template(r.Fields[f]); t != nil {
				templates[f] = t
				break
			}
		}
	}
	return templates
}

// createPayloads converts new sheet rows into CRM create requests carrying
// only their non-empty tracked fields, shaped after templates when the field
// has one. Rows with nothing to send are counted in empty.
func createPayloads(rows []models.Record, fields []string, templates map[string]models.Value) ([]models.Record, int) {
	out := make([]models.Record, 0, len(rows))
	empty := 0
	for _, row := range rows {
		payload := make(map[string]models.Value, len(fields))
		for _, f := range fields {
			cell := codec.Flatten(row.Get(f))
			if codec.Canonical(cell) == "" {
				continue
			}
			payload[f] = codec.Unflatten(f, cell, templates[f])
		}
		if len(payload) == 0 {
			empty++
			continue
		}
		out = append(out, models.Record{Fields: payload, Row: row.Row})
	}
	return out, empty
}

// conflictPatch builds the update for a conflict won by the sheet: only the
// differing fields, each rebuilt in the shape of its CRM value.
func conflictPatch(c models.Conflict) models.Record {
	patch := make(map[string]models.Value, len(c.Fields))
	for _, f := range c.Fields {
		patch[f] = codec.Unflatten(f, codec.Flatten(c.Tabular.Get(f)), c.Remote.Fields[f])
	}
	return models.Record{ID: c.Remote.ID, Fields: patch, Row: c.Tabular.Row}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-crm-sync/internal/adapter"
	"github.com/MKhiriev/go-crm-sync/internal/codec"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/mock"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

// ── helpers ───────────────────────────────────────────────────────────────────

var (
	companiesSpec = models.ObjectSpec{Name: "companies", SheetName: "Companies", Fields: []string{"name"}}
	peopleSpec    = models.ObjectSpec{Name: "people", SheetName: "People", Fields: []string{"name"}}
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type syncMocks struct {
	records *mock.MockRecordStore
	sheet   *mock.MockTabularStore
	states  *mock.MockStateStore
}

func newTestSyncSvc(t *testing.T, strategy models.Strategy, objects ...models.ObjectSpec) (*syncService, syncMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := syncMocks{
		records: mock.NewMockRecordStore(ctrl),
		sheet:   mock.NewMockTabularStore(ctrl),
		states:  mock.NewMockStateStore(ctrl),
	}
	resolver, err := NewConflictResolver(strategy)
	require.NoError(t, err)

	svc := NewSyncService(m.records, m.sheet, m.states, resolver, objects, logger.Nop()).(*syncService)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func named(first, last string) models.Name {
	return models.Name{FirstName: first, LastName: last}
}

// expectState wires an empty state load and captures the saved state.
func expectState(m syncMocks) **models.SyncState {
	var saved *models.SyncState
	m.states.EXPECT().Load(gomock.Any()).Return(models.NewSyncState(), nil)
	m.states.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s *models.SyncState) error {
			saved = s
			return nil
		},
	)
	return &saved
}

// ── SyncAll ───────────────────────────────────────────────────────────────────

func TestSyncService_SyncAll_RemoteNewerConflictNewRowAndOrphan(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyNewestWins, peopleSpec)
	saved := expectState(m)

	alice := rec("1", "2024-01-02", 0, map[string]any{"name": named("Alice", "Smith")})
	tabular := []models.Record{
		rec("1", "2024-01-01", 2, map[string]any{"name": "Alice S."}),
		rec("", "", 3, map[string]any{"name": "Bob"}),
		rec("9", "2024-01-01", 4, map[string]any{"name": "Ghost"}),
	}
	bob := rec("2", "2024-06-01", 3, map[string]any{"name": named("Bob", "")})

	gomock.InOrder(
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{alice}, nil),
		m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return(tabular, nil),
		m.sheet.EXPECT().UpsertMany(gomock.Any(), peopleSpec, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ models.ObjectSpec, records []models.Record) (int, error) {
				require.Len(t, records, 1)
				assert.Equal(t, "1", records[0].ID)
				assert.Equal(t, "Alice Smith", codec.Flatten(records[0].Get("name")))
				return 1, nil
			},
		),
		m.records.EXPECT().CreateMany(gomock.Any(), "people", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, records []models.Record) ([]models.Record, error) {
				require.Len(t, records, 1)
				assert.Empty(t, records[0].ID)
				assert.Equal(t, 3, records[0].Row)
				assert.Equal(t, map[string]any{
					"name": map[string]any{"firstName": "Bob", "lastName": ""},
				}, records[0].Payload())
				return []models.Record{bob}, nil
			},
		),
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{alice, bob}, nil),
		m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, []models.Record{alice, bob}).Return(2, nil),
	)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ModeSync, report.Mode)
	require.Len(t, report.Objects, 1)
	res := report.Objects[0]
	require.NoError(t, res.Err)
	assert.Equal(t, models.Counters{
		RemoteToTabular:        1,
		TabularToRemoteCreated: 1,
		Conflicts:              1,
		Skipped:                1,
	}, res.Counters)
	assert.Zero(t, res.FailedBatches())
	assert.Equal(t, models.Drift{New: 1}, res.Drift)

	marker, ok := (*saved).Marker("people", "2")
	require.True(t, ok)
	assert.Equal(t, "2024-06-01", marker)
	_, ok = (*saved).Marker("people", "9")
	assert.False(t, ok, "orphans are never observed")
}

func TestSyncService_SyncAll_TabularWinsPatchesDifferingFields(t *testing.T) {
	spec := models.ObjectSpec{Name: "people", SheetName: "People", Fields: []string{"name", "city"}}
	svc, m := newTestSyncSvc(t, models.StrategyTabularWins, spec)
	expectState(m)

	remote := rec("1", "2024-01-02", 0, map[string]any{
		"name": models.Name{FirstName: "Alice", LastName: "Smith", Extra: map[string]any{"middle": "J"}},
		"city": "Paris",
	})
	tabular := rec("1", "2024-01-01", 2, map[string]any{"name": "Alice Jones", "city": "Paris"})

	m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{remote}, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), spec).Return([]models.Record{tabular}, nil)
	m.records.EXPECT().UpdateMany(gomock.Any(), "people", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, records []models.Record) ([]models.Record, error) {
			require.Len(t, records, 1)
			assert.Equal(t, "1", records[0].ID)
			assert.Equal(t, map[string]models.Value{
				"name": models.Name{FirstName: "Alice", LastName: "Jones", Extra: map[string]any{"middle": "J"}},
			}, records[0].Fields)
			return records, nil
		},
	)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), spec, gomock.Any()).Return(1, nil)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Objects[0].Counters.TabularToRemoteUpdated)
	assert.Zero(t, report.Objects[0].Counters.RemoteToTabular)
}

func TestSyncService_SyncAll_CompanyNameStaysText(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyTabularWins, companiesSpec)
	expectState(m)

	acme := rec("c1", "2024-01-02", 0, map[string]any{"name": "Acme"})

	m.records.EXPECT().GetAll(gomock.Any(), "companies").Return([]models.Record{acme}, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), companiesSpec).Return([]models.Record{
		rec("c1", "2024-01-01", 2, map[string]any{"name": "Acme Corp"}),
		rec("", "", 3, map[string]any{"name": "Globex Inc"}),
	}, nil)
	m.records.EXPECT().CreateMany(gomock.Any(), "companies", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, records []models.Record) ([]models.Record, error) {
			require.Len(t, records, 1)
			assert.Equal(t, map[string]any{"name": "Globex Inc"}, records[0].Payload())
			return []models.Record{rec("c2", "2024-06-01", 3, map[string]any{"name": "Globex Inc"})}, nil
		},
	)
	m.records.EXPECT().UpdateMany(gomock.Any(), "companies", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, records []models.Record) ([]models.Record, error) {
			require.Len(t, records, 1)
			assert.Equal(t, "c1", records[0].ID)
			assert.Equal(t, map[string]models.Value{"name": models.Scalar{V: "Acme Corp"}}, records[0].Fields)
			return records, nil
		},
	)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), companiesSpec, gomock.Any()).Return(2, nil)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Objects[0].Counters.TabularToRemoteCreated)
	assert.Equal(t, 1, report.Objects[0].Counters.TabularToRemoteUpdated)
	assert.Zero(t, report.Objects[0].FailedBatches())
}

func TestSyncService_SyncAll_BatchFailureDoesNotStopNextObject(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, companiesSpec, peopleSpec)
	expectState(m)

	batchErr := &adapter.BatchError{Object: "companies", Op: "create", Applied: 0, Total: 1, Err: errors.New("boom")}
	acme := rec("c1", "2024-01-01", 0, map[string]any{"name": "Acme"})
	ada := rec("p1", "2024-01-01", 0, map[string]any{"name": named("Ada", "L")})

	m.records.EXPECT().GetAll(gomock.Any(), "companies").Return([]models.Record{acme}, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), companiesSpec).Return([]models.Record{
		rec("c1", "2024-01-01", 2, map[string]any{"name": "Acme"}),
		rec("", "", 3, map[string]any{"name": "Globex"}),
	}, nil)
	m.records.EXPECT().CreateMany(gomock.Any(), "companies", gomock.Any()).Return(nil, batchErr)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), companiesSpec, gomock.Any()).Return(1, nil)

	m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{ada}, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return(nil, nil)
	m.sheet.EXPECT().UpsertMany(gomock.Any(), peopleSpec, []models.Record{ada}).Return(1, nil)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, []models.Record{ada}).Return(1, nil)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Objects, 2)

	companies := report.Objects[0]
	require.NoError(t, companies.Err)
	assert.Equal(t, 1, companies.FailedBatches())
	assert.Zero(t, companies.Counters.TabularToRemoteCreated)
	require.Len(t, companies.Batches[0].Failures, 1)
	assert.Equal(t, 1, companies.Batches[0].Failures[0].Count)
	assert.Equal(t, models.OpRemoteCreate, companies.Batches[0].Op)

	people := report.Objects[1]
	assert.Zero(t, people.FailedBatches())
	assert.Equal(t, 1, people.Counters.RemoteToTabular)
}

func TestSyncService_SyncAll_FetchFailureSkipsOnlyThatObject(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, companiesSpec, peopleSpec)
	saved := expectState(m)

	m.records.EXPECT().GetAll(gomock.Any(), "companies").Return(nil, errors.New("502 bad gateway"))
	m.records.EXPECT().GetAll(gomock.Any(), "people").Return(nil, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return(nil, nil)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, gomock.Len(0)).Return(0, nil)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Objects, 2)
	assert.ErrorContains(t, report.Objects[0].Err, "502 bad gateway")
	assert.NoError(t, report.Objects[1].Err)
	assert.NotNil(t, *saved)
}

func TestSyncService_SyncAll_RefetchFailureKeepsCreatedIDs(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
	saved := expectState(m)

	created := rec("p7", "2024-06-01", 2, map[string]any{"name": named("Eve", "")})

	gomock.InOrder(
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return(nil, nil),
		m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return([]models.Record{
			rec("", "", 2, map[string]any{"name": "Eve"}),
		}, nil),
		m.records.EXPECT().CreateMany(gomock.Any(), "people", gomock.Any()).Return([]models.Record{created}, nil),
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return(nil, errors.New("timeout")),
		m.sheet.EXPECT().UpsertMany(gomock.Any(), peopleSpec, []models.Record{created}).Return(1, nil),
	)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Objects[0].Counters.TabularToRemoteCreated)
	assert.Zero(t, (*saved).Len("people"))
}

func TestSyncService_SyncAll_EmptyNewRowSkipped(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
	expectState(m)

	m.records.EXPECT().GetAll(gomock.Any(), "people").Return(nil, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return([]models.Record{
		rec("", "", 2, map[string]any{"name": "  "}),
	}, nil)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, gomock.Any()).Return(0, nil)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Objects[0].Counters.Skipped)
	assert.Zero(t, report.Objects[0].Counters.TabularToRemoteCreated)
}

func TestSyncService_SyncAll_UnreadableSheetTreatedAsEmpty(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
	expectState(m)

	ada := rec("p1", "2024-01-01", 0, map[string]any{"name": "Ada"})
	m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{ada}, nil).Times(2)
	m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return(nil, errors.New("zip: not a valid zip file"))
	m.sheet.EXPECT().UpsertMany(gomock.Any(), peopleSpec, []models.Record{ada}).Return(1, nil)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, []models.Record{ada}).Return(1, nil)

	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Objects[0].Counters.RemoteToTabular)
}

func TestSyncService_SyncAll_UsesRunIDFromContext(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins)
	expectState(m)

	report, err := svc.SyncAll(utils.WithRunID(context.Background(), "run-42"))
	require.NoError(t, err)
	assert.Equal(t, "run-42", report.RunID)
	assert.Empty(t, report.Objects)
}

func TestSyncService_SyncAll_RunLoggerReachesStores(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins)
	var buf bytes.Buffer
	svc.logger = logger.NewLogger("test", logger.WithOutput(&buf), logger.WithConsole(false))

	m.states.EXPECT().Load(gomock.Any()).DoAndReturn(func(ctx context.Context) (*models.SyncState, error) {
		logger.FromContextOr(ctx, logger.Nop()).Info().Msg("loading state")
		return models.NewSyncState(), nil
	})
	m.states.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.SyncAll(utils.WithRunID(context.Background(), "run-7"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"loading state"`)
	assert.Contains(t, buf.String(), `"run_id":"run-7"`)
}

func TestSyncService_StateLoadedOnceAcrossPasses(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)

	ada := rec("p1", "2024-01-01", 0, map[string]any{"name": named("Ada", "L")})
	ada2 := rec("p1", "2024-02-01", 0, map[string]any{"name": named("Ada", "Lovelace")})

	var saved []*models.SyncState
	m.states.EXPECT().Load(gomock.Any()).Return(models.NewSyncState(), nil).Times(1)
	m.states.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s *models.SyncState) error {
			saved = append(saved, s)
			return nil
		},
	).Times(2)

	gomock.InOrder(
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{ada}, nil),
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{ada2}, nil),
	)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, gomock.Any()).Return(1, nil).Times(2)

	first, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Drift{New: 1}, first.Objects[0].Drift)

	second, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Drift{Changed: 1}, second.Objects[0].Drift)

	require.Len(t, saved, 2)
	assert.Same(t, saved[0], saved[1])
	marker, _ := saved[1].Marker("people", "p1")
	assert.Equal(t, "2024-02-01", marker)
}

func TestSyncService_FailedStateLoadIsRetried(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins)

	gomock.InOrder(
		m.states.EXPECT().Load(gomock.Any()).Return(nil, errors.New("locked")),
		m.states.EXPECT().Load(gomock.Any()).Return(models.NewSyncState(), nil),
	)
	m.states.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.SyncAll(context.Background())
	require.ErrorIs(t, err, ErrStateLoad)

	_, err = svc.SyncAll(context.Background())
	require.NoError(t, err)
}

func TestSyncService_SyncAll_CancelledBeforeStart(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, companiesSpec, peopleSpec)
	expectState(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Objects)
}

func TestSyncService_StateErrors(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
		m.states.EXPECT().Load(gomock.Any()).Return(nil, errors.New("corrupt"))

		report, err := svc.SyncAll(context.Background())
		assert.ErrorIs(t, err, ErrStateLoad)
		require.NotNil(t, report)
		assert.Empty(t, report.Objects)
	})

	t.Run("save", func(t *testing.T) {
		svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
		m.states.EXPECT().Load(gomock.Any()).Return(models.NewSyncState(), nil)
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return(nil, nil)
		m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, gomock.Any()).Return(0, nil)
		m.states.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		report, err := svc.Pull(context.Background())
		assert.ErrorIs(t, err, ErrStatePersistence)
		require.NotNil(t, report)
		assert.Len(t, report.Objects, 1)
	})
}

// ── Pull ──────────────────────────────────────────────────────────────────────

func TestSyncService_Pull_OverwritesSheetAndObservesState(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyTabularWins, peopleSpec)
	saved := expectState(m)

	remote := []models.Record{
		rec("p1", "2024-01-01", 0, map[string]any{"name": "Ada"}),
		rec("p2", "", 0, map[string]any{"name": "Bob"}),
	}
	m.records.EXPECT().GetAll(gomock.Any(), "people").Return(remote, nil)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, remote).Return(2, nil)

	report, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ModePull, report.Mode)
	assert.Equal(t, 2, report.Objects[0].Counters.RemoteToTabular)

	marker, _ := (*saved).Marker("people", "p1")
	assert.Equal(t, "2024-01-01", marker)
	marker, _ = (*saved).Marker("people", "p2")
	assert.Equal(t, "2024-06-01T12:00:00Z", marker)
}

func TestSyncService_Pull_OverwriteFailureIsABatchFailure(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
	expectState(m)

	m.records.EXPECT().GetAll(gomock.Any(), "people").Return([]models.Record{rec("p1", "", 0, nil)}, nil)
	m.sheet.EXPECT().OverwriteAll(gomock.Any(), peopleSpec, gomock.Any()).Return(0, errors.New("permission denied"))

	report, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Objects[0].FailedBatches())
	assert.Zero(t, report.Objects[0].Counters.RemoteToTabular)
}

// ── Push ──────────────────────────────────────────────────────────────────────

func TestSyncService_Push_WritesSheetToCRMAndBackfillsIDs(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins, peopleSpec)
	saved := expectState(m)

	remote := []models.Record{
		rec("1", "2024-01-02", 0, map[string]any{"name": named("Alice", "Smith")}),
		rec("3", "2024-01-01", 0, map[string]any{"name": "Carol"}),
	}
	tabular := []models.Record{
		rec("1", "2024-01-01", 2, map[string]any{"name": "Alice S."}),
		rec("", "", 3, map[string]any{"name": "Bob"}),
	}
	bob := rec("2", "2024-06-01", 3, map[string]any{"name": named("Bob", "")})
	alice := rec("1", "2024-06-01", 2, map[string]any{"name": named("Alice", "S.")})

	gomock.InOrder(
		m.records.EXPECT().GetAll(gomock.Any(), "people").Return(remote, nil),
		m.sheet.EXPECT().ReadAll(gomock.Any(), peopleSpec).Return(tabular, nil),
		m.records.EXPECT().CreateMany(gomock.Any(), "people", gomock.Len(1)).Return([]models.Record{bob}, nil),
		m.records.EXPECT().UpdateMany(gomock.Any(), "people", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, records []models.Record) ([]models.Record, error) {
				require.Len(t, records, 1)
				assert.Equal(t, "1", records[0].ID)
				assert.Equal(t, named("Alice", "S."), records[0].Get("name"))
				return []models.Record{alice}, nil
			},
		),
		m.sheet.EXPECT().UpsertMany(gomock.Any(), peopleSpec, []models.Record{bob}).Return(1, nil),
	)

	report, err := svc.Push(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.Counters{
		RemoteToTabular:        1,
		TabularToRemoteCreated: 1,
		TabularToRemoteUpdated: 1,
		Conflicts:              1,
	}, report.Objects[0].Counters)

	marker, _ := (*saved).Marker("people", "1")
	assert.Equal(t, "2024-06-01", marker)
	_, ok := (*saved).Marker("people", "3")
	assert.True(t, ok)
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestSyncService_Health(t *testing.T) {
	svc, m := newTestSyncSvc(t, models.StrategyRemoteWins)
	m.records.EXPECT().Health(gomock.Any()).Return(errors.New("unreachable"))

	assert.ErrorContains(t, svc.Health(context.Background()), "unreachable")
}

package store

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/models"
)

const (
	stateTable = "sync_state"

	// upsertChunk bounds the rows of one INSERT; sqlite allows 999 bound
	// parameters by default and every row takes three.
	upsertChunk = 300

	upsertConflict = "ON CONFLICT(object_type, record_id) DO UPDATE SET version = excluded.version"
)

type stateEntry struct {
	object, id, marker string
}

type sqliteStateStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteStateStore constructs a [StateStore] over the sync_state table of
// db. The schema is expected to be migrated.
func NewSQLiteStateStore(db *DB, log *logger.Logger) StateStore {
	return &sqliteStateStore{db: db, logger: log}
}

// Load implements [StateStore].
func (s *sqliteStateStore) Load(ctx context.Context) (*models.SyncState, error) {
	log := logger.FromContextOr(ctx, s.logger)

	query, args, err := sq.Select("object_type", "record_id", "version").
		From(stateTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "sqliteStateStore.Load").Msg("failed to query sync state")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	state := models.NewSyncState()
	for rows.Next() {
		var e stateEntry
		if err = rows.Scan(&e.object, &e.id, &e.marker); err != nil {
			log.Err(err).Str("func", "sqliteStateStore.Load").Msg("failed to scan sync state row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		state.Set(e.object, e.id, e.marker)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return state, nil
}

// Save implements [StateStore]. Entries are upserted in chunks inside one
// transaction, so a failed save leaves the previous state intact. Rows for
// ids no longer in state are kept.
func (s *sqliteStateStore) Save(ctx context.Context, state *models.SyncState) error {
	log := logger.FromContextOr(ctx, s.logger)
	entries := flattenState(state)
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "sqliteStateStore.Save").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer func() { _ = tx.Rollback() }()

	for chunk := range slices.Chunk(entries, upsertChunk) {
		insert := sq.Insert(stateTable).Columns("object_type", "record_id", "version")
		for _, e := range chunk {
			insert = insert.Values(e.object, e.id, e.marker)
		}

		query, args, buildErr := insert.Suffix(upsertConflict).ToSql()
		if buildErr != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "sqliteStateStore.Save").
				Int("rows", len(chunk)).
				Msg("failed to upsert sync state")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "sqliteStateStore.Save").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	s.logger.Debug().Int("entries", len(entries)).Msg("sync state saved")
	return nil
}

func (s *sqliteStateStore) Close() error {
	return s.db.Close()
}

// flattenState lists state entries sorted by object type then id.
func flattenState(state *models.SyncState) []stateEntry {
	if state == nil {
		return nil
	}

	objects := make([]string, 0, len(state.Objects))
	for object := range state.Objects {
		objects = append(objects, object)
	}
	slices.Sort(objects)

	var entries []stateEntry
	for _, object := range objects {
		ids := make([]string, 0, len(state.Objects[object]))
		for id := range state.Objects[object] {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			entries = append(entries, stateEntry{object: object, id: id, marker: state.Objects[object][id]})
		}
	}
	return entries
}

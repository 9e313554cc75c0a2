// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

// fileStateStore keeps the state as one JSON document
// {"object": {"id": "marker"}}.
type fileStateStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStateStore constructs a [StateStore] backed by the JSON file at path.
func NewFileStateStore(path string, log *logger.Logger) StateStore {
	return &fileStateStore{path: path, logger: log}
}

// Load implements [StateStore]. A missing file is an empty state; an
// undecodable one is [ErrCorruptState].
func (s *fileStateStore) Load(ctx context.Context) (*models.SyncState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Str("path", s.path).Msg("no sync state yet")
			return models.NewSyncState(), nil
		}
		return nil, fmt.Errorf("read sync state %s: %w", s.path, err)
	}

	state := models.NewSyncState()
	if len(data) == 0 {
		return state, nil
	}
	if err = json.Unmarshal(data, &state.Objects); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptState, s.path, err)
	}
	if state.Objects == nil {
		state.Objects = make(map[string]map[string]string)
	}
	return state, nil
}

// Save implements [StateStore] with a temp-file, fsync, rename write.
func (s *fileStateStore) Save(ctx context.Context, state *models.SyncState) error {
	if state == nil {
		state = models.NewSyncState()
	}

	err := utils.WriteFileAtomic(s.path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Objects)
	})
	if err != nil {
		return fmt.Errorf("save sync state %s: %w", s.path, err)
	}

	s.logger.Debug().Str("path", s.path).Msg("sync state saved")
	return nil
}

func (s *fileStateStore) Close() error {
	return nil
}

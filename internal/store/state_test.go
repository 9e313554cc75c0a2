package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/models"
)

func TestNewStateStore_File(t *testing.T) {
	s, err := NewStateStore(context.Background(), config.State{Path: filepath.Join(t.TempDir(), "state.json")}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &fileStateStore{}, s)
}

func TestNewStateStore_UnknownBackend(t *testing.T) {
	_, err := NewStateStore(context.Background(), config.State{Path: "x", Backend: "redis"}, logger.Nop())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewStateStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.State{Path: filepath.Join(t.TempDir(), "state.db")}

	s, err := NewStateStore(ctx, cfg, logger.Nop())
	require.NoError(t, err)

	state := models.NewSyncState()
	state.Set("people", "p1", "v1")
	require.NoError(t, s.Save(ctx, state))

	state.Set("people", "p1", "v2")
	state.Set("companies", "c1", "v1")
	require.NoError(t, s.Save(ctx, state))
	require.NoError(t, s.Close())

	s, err = NewStateStore(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.Objects, loaded.Objects)
}

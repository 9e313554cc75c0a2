// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/service"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 5 * time.Minute

// ReportFunc receives the report of every scheduled pass.
type ReportFunc func(*models.Report)

// SyncWorker runs a full two-way pass immediately and then once per
// interval until its context is cancelled.
type SyncWorker struct {
	syncService service.SyncService
	interval    time.Duration
	onReport    ReportFunc

	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

// NewSyncWorker creates a SyncWorker. onReport may be nil.
func NewSyncWorker(syncService service.SyncService, interval time.Duration, onReport ReportFunc, log *logger.Logger) *SyncWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &SyncWorker{
		syncService: syncService,
		interval:    interval,
		onReport:    onReport,
		ids:         utils.NewUUIDGenerator(),
		logger:      log,
	}
}

// Run implements [Worker]. A failed pass is logged and the schedule goes on;
// the next pass starts interval after the previous one finished.
func (w *SyncWorker) Run(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("scheduler started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("scheduler stopped")
			return nil
		case <-timer.C:
		}

		w.runOnce(ctx)
		if ctx.Err() != nil {
			w.logger.Info().Msg("scheduler stopped")
			return nil
		}

		timer.Reset(w.interval)
		w.logger.Info().Time("next_run", time.Now().Add(w.interval)).Msg("waiting for next pass")
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	runID := w.ids.Generate()
	report, err := w.syncService.SyncAll(utils.WithRunID(ctx, runID))
	if err != nil {
		w.logger.Error().Err(err).Str("run_id", runID).Msg("scheduled pass failed")
	}
	if report != nil && w.onReport != nil {
		w.onReport(report)
	}
}

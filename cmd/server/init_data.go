// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/foottraffic/internal/backup"
	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/mapview"
	"github.com/tomtom215/foottraffic/internal/store"
	syncpkg "github.com/tomtom215/foottraffic/internal/sync"
)

// dataComponents is the ingestion side: cache, store, archive and poller.
type dataComponents struct {
	cache     store.LocalCache
	store     *store.Store
	archive   *backup.Manager // nil when the archive is disabled
	projector *mapview.Projector
	stats     *syncpkg.StatsClient
	poller    *syncpkg.Poller
}

func initData(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*dataComponents, error) {
	cache, err := store.OpenCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	d := &dataComponents{cache: cache}

	if cfg.Archive.Enabled {
		d.archive, err = backup.NewManager(backup.FromAppConfig(cfg.Archive))
		if err != nil {
			d.close()
			return nil, fmt.Errorf("create archive: %w", err)
		}
		logging.Info().Str("data_dir", cfg.Archive.DataDir).Int("max_backups", cfg.Archive.MaxBackups).
			Msg("Historical archive enabled")
	}

	// A remote backup wins; otherwise the local archive backs
	// replication and recovery.
	var remote store.Backup
	switch {
	case cfg.Backup.URL != "":
		remote = syncpkg.NewBackupClient(cfg.Backup.URL, cfg.Backup.Timeout, httpClient)
		logging.Info().Str("url", cfg.Backup.URL).Msg("Replicating history to remote backup")
	case d.archive != nil:
		remote = d.archive
		logging.Info().Msg("Replicating history to local archive")
	default:
		logging.Warn().Msg("No backup configured; history survives restarts only through the local cache")
	}

	d.store = store.New(store.Options{
		Cache:        cache,
		Backup:       remote,
		Retention:    cfg.Stats.Retention,
		LoadAttempts: cfg.Backup.LoadAttempts,
		InitialDelay: cfg.Backup.InitialDelay,
		Multiplier:   cfg.Backup.Multiplier,
	})

	report := d.store.Recover(ctx)
	logging.Info().Str("source", report.Source).Int("attempts", report.Attempts).
		Int("locations", report.Locations).Int("samples", report.Samples).Bool("degraded", report.Degraded).
		Msg("State recovered")

	d.projector = mapview.NewProjector(nil)
	var projector *mapview.Projector
	if cfg.Stats.MapEnabled {
		projector = d.projector
	}

	d.stats = syncpkg.NewStatsClient(cfg.Stats.URL, httpClient)
	d.poller = syncpkg.NewPoller(d.stats, d.store, projector, syncpkg.PollerConfig{
		Interval:        cfg.Stats.PollInterval,
		FetchTimeout:    cfg.Stats.FetchTimeout,
		FallbackEnabled: cfg.Stats.FallbackEnabled,
	})
	return d, nil
}

func (d *dataComponents) close() {
	if d.cache == nil {
		return
	}
	if err := d.cache.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing local cache")
	}
}

// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
	"github.com/tomtom215/foottraffic/internal/models"
)

// Recovery sources.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
	SourceNone   = "none"
)

// RecoveryReport describes what Recover restored.
type RecoveryReport struct {
	Source    string `json:"source"`
	Attempts  int    `json:"attempts"`
	Locations int    `json:"locations"`
	Samples   int    `json:"samples"`
	Degraded  bool   `json:"degraded"`
}

// Recover restores state at startup. History comes from the remote backup
// when one is configured and reachable, otherwise from the local cache.
// The latest stats, map snapshot and total are always read locally.
func (s *Store) Recover(ctx context.Context) RecoveryReport {
	log := logging.Ctx(ctx)
	report := RecoveryReport{Source: SourceNone}

	remoteOK := false
	if s.opts.Backup != nil {
		h, attempts, err := s.loadRemote(ctx)
		report.Attempts = attempts
		if err == nil {
			s.setHistory(h)
			s.persistHistory(ctx)
			report.Source = SourceRemote
			remoteOK = true
		} else {
			report.Degraded = true
			log.Warn().Err(err).Int("attempts", attempts).
				Msg("Remote history unavailable; starting in degraded mode from local cache")
		}
	}

	if !remoteOK {
		if ok := s.loadLocalHistory(ctx); ok {
			report.Source = SourceLocal
		}
	}

	s.restoreLatest(ctx)
	s.publishAllAggregates()

	s.degraded.Store(report.Degraded)
	metrics.SetDegraded(report.Degraded)

	report.Locations = len(s.Locations())
	report.Samples = s.SampleCount()
	log.Info().
		Str("source", report.Source).
		Int("locations", report.Locations).
		Int("samples", report.Samples).
		Bool("degraded", report.Degraded).
		Msg("State recovered")
	return report
}

func (s *Store) loadRemote(ctx context.Context) (models.HistoricalMap, int, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.InitialDelay
	eb.Multiplier = s.opts.Multiplier
	eb.RandomizationFactor = 0
	eb.MaxInterval = time.Minute
	eb.MaxElapsedTime = 0

	bo := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.opts.LoadAttempts-1)), ctx)

	attempts := 0
	var out models.HistoricalMap
	err := backoff.RetryNotify(func() error {
		attempts++
		h, err := s.opts.Backup.Load(ctx)
		if err != nil {
			return err
		}
		out = h
		return nil
	}, bo, func(err error, wait time.Duration) {
		logging.Ctx(ctx).Info().Err(err).Int("attempt", attempts).Dur("retry_in", wait).
			Msg("Historical load failed; retrying")
	})
	return out, attempts, err
}

func (s *Store) loadLocalHistory(ctx context.Context) bool {
	var raw map[string]json.RawMessage
	ok, err := s.load(KeyHistoricalData, &raw)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Local history unreadable; starting empty")
		return false
	}
	if !ok {
		return false
	}
	s.setHistory(models.DecodeHistoricalMap(raw))
	return true
}

func (s *Store) restoreLatest(ctx context.Context) {
	log := logging.Ctx(ctx)

	var sample models.StatSample
	if ok, err := s.load(KeyLatestStats, &sample); err != nil {
		log.Warn().Err(err).Str("key", KeyLatestStats).Msg("Ignoring unreadable cache entry")
	} else if ok {
		s.stats.Publish(sample)
	}

	var snap models.MapSnapshot
	if ok, err := s.load(KeyLatestMapData, &snap); err != nil {
		log.Warn().Err(err).Str("key", KeyLatestMapData).Msg("Ignoring unreadable cache entry")
	} else if ok {
		s.mapSnap.Publish(snap)
	}

	var total int
	if ok, err := s.load(KeyLatestTotalCount, &total); err != nil {
		log.Warn().Err(err).Str("key", KeyLatestTotalCount).Msg("Ignoring unreadable cache entry")
	} else if ok {
		s.total.Publish(total)
	}
}

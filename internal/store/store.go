// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/aggregate"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
	"github.com/tomtom215/foottraffic/internal/models"
)

// DefaultRetention is the history window per location.
const DefaultRetention = 24 * time.Hour

// Backup is the remote historical backup.
type Backup interface {
	Save(ctx context.Context, historical models.HistoricalMap) error
	Load(ctx context.Context) (models.HistoricalMap, error)
}

// Options configures a Store.
type Options struct {
	Cache     LocalCache
	Backup    Backup // nil disables replication and remote recovery
	Retention time.Duration

	// Recovery backoff: LoadAttempts total tries, the first retry after
	// InitialDelay, each later one Multiplier times longer.
	LoadAttempts int
	InitialDelay time.Duration
	Multiplier   float64

	Now func() time.Time
}

// Store is the shared dashboard state.
type Store struct {
	opts Options

	stats      *Subject[models.StatSample]
	mapSnap    *Subject[models.MapSnapshot]
	total      *Subject[int]
	aggregates *Subject[models.LocationAggregates]

	histMu  sync.RWMutex
	history models.HistoricalMap

	degraded    atomic.Bool
	replicating sync.WaitGroup
}

// New creates a store. A nil cache is replaced by a MemoryCache.
func New(opts Options) *Store {
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.LoadAttempts <= 0 {
		opts.LoadAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 1.5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		opts:       opts,
		stats:      NewSubject[models.StatSample](),
		mapSnap:    NewSubject[models.MapSnapshot](),
		total:      NewSubject[int](),
		aggregates: NewSubject[models.LocationAggregates](),
		history:    make(models.HistoricalMap),
	}
}

// LatestStats returns the most recent sample.
func (s *Store) LatestStats() (models.StatSample, bool) { return s.stats.Get() }

// MapSnapshot returns the most recent map snapshot.
func (s *Store) MapSnapshot() (models.MapSnapshot, bool) { return s.mapSnap.Get() }

// TotalCount returns the sum of the latest map snapshot's marker counts.
func (s *Store) TotalCount() int {
	v, _ := s.total.Get()
	return v
}

// SubscribeStats registers fn for every ingested sample.
func (s *Store) SubscribeStats(fn func(models.StatSample)) func() { return s.stats.Subscribe(fn) }

// SubscribeMap registers fn for every map snapshot.
func (s *Store) SubscribeMap(fn func(models.MapSnapshot)) func() { return s.mapSnap.Subscribe(fn) }

// SubscribeTotal registers fn for every total update.
func (s *Store) SubscribeTotal(fn func(int)) func() { return s.total.Subscribe(fn) }

// SubscribeAggregates registers fn for every recomputed location aggregate.
func (s *Store) SubscribeAggregates(fn func(models.LocationAggregates)) func() {
	return s.aggregates.Subscribe(fn)
}

// Degraded reports whether the last recovery fell back to the local cache.
func (s *Store) Degraded() bool { return s.degraded.Load() }

// UpdateStats ingests one validated sample.
func (s *Store) UpdateStats(ctx context.Context, sample models.StatSample) {
	log := logging.Ctx(ctx)

	// 1
	s.stats.Publish(sample)

	// 2
	s.persist(ctx, KeyLatestStats, sample)

	// 4
	series, total := s.appendSample(sample)
	s.persistHistory(ctx)
	metrics.RecordIngest(sample.Location, total)

	// 3, snapshotted after the append so the remote copy includes sample.
	if s.opts.Backup != nil {
		snapshot := s.historySnapshot()
		s.replicating.Add(1)
		go s.replicate(context.WithoutCancel(ctx), snapshot)
	}

	// 5
	s.aggregates.Publish(models.LocationAggregates{
		Location:   sample.Location,
		Aggregates: aggregate.ByMinute(series),
	})

	log.Debug().
		Str("location", sample.Location).
		Int("people_count", sample.PeopleCount).
		Int("series_len", len(series)).
		Msg("Sample ingested")
}

// appendSample adds sample to its series and prunes samples older than the
// retention window measured from the newest sample in the series. It
// returns a copy of the series and the total sample count.
func (s *Store) appendSample(sample models.StatSample) ([]models.StatSample, int) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	series := append(s.history[sample.Location], sample)
	newest := sample.Timestamp
	for _, p := range series {
		if p.Timestamp.After(newest) {
			newest = p.Timestamp
		}
	}
	cutoff := newest.Add(-s.opts.Retention)
	kept := series[:0]
	for _, p := range series {
		if !p.Timestamp.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	s.history[sample.Location] = kept

	out := make([]models.StatSample, len(kept))
	copy(out, kept)
	return out, s.history.SampleCount()
}

func (s *Store) replicate(ctx context.Context, snapshot models.HistoricalMap) {
	defer s.replicating.Done()
	start := time.Now()
	err := s.opts.Backup.Save(ctx, snapshot)
	metrics.RecordReplication(err, time.Since(start))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("samples", snapshot.SampleCount()).Msg("History replication failed")
	}
}

// WaitReplication blocks until in-flight replications finish.
func (s *Store) WaitReplication() { s.replicating.Wait() }

// UpdateMapSnapshot publishes a new map snapshot and its total, then
// persists both.
func (s *Store) UpdateMapSnapshot(ctx context.Context, snap models.MapSnapshot) {
	total := snap.Total()
	s.mapSnap.Publish(snap)
	s.total.Publish(total)
	s.persist(ctx, KeyLatestMapData, snap)
	s.persist(ctx, KeyLatestTotalCount, total)
}

// History returns a copy of one location's series, oldest first.
func (s *Store) History(location string) []models.StatSample {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	series := s.history[location]
	out := make([]models.StatSample, len(series))
	copy(out, series)
	return out
}

// Historical returns a deep copy of the whole history.
func (s *Store) Historical() models.HistoricalMap { return s.historySnapshot() }

// Locations lists known locations in name order.
func (s *Store) Locations() []string {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	out := make([]string, 0, len(s.history))
	for loc := range s.history {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// SampleCount is the number of samples across all locations.
func (s *Store) SampleCount() int {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	return s.history.SampleCount()
}

// AggregatedRange computes minute aggregates of location's samples within
// the trailing hours. hours <= 0 means the whole window.
func (s *Store) AggregatedRange(location string, hours int) []models.MinuteAggregate {
	series := s.History(location)
	if hours > 0 {
		series = aggregate.Since(series, s.opts.Now().Add(-time.Duration(hours)*time.Hour))
	}
	return aggregate.ByMinute(series)
}

// ReplaceHistory swaps in a history map, for example after an archive
// restore, and republishes every location's aggregates.
func (s *Store) ReplaceHistory(ctx context.Context, h models.HistoricalMap) {
	s.setHistory(h)
	s.persistHistory(ctx)
	s.publishAllAggregates()
}

func (s *Store) setHistory(h models.HistoricalMap) {
	h = h.Clone()
	if h == nil {
		h = make(models.HistoricalMap)
	}
	for loc, series := range h {
		sort.SliceStable(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
		h[loc] = series
	}
	s.histMu.Lock()
	s.history = h
	metrics.HistorySamples.Set(float64(h.SampleCount()))
	s.histMu.Unlock()
}

func (s *Store) publishAllAggregates() {
	for _, loc := range s.Locations() {
		s.aggregates.Publish(models.LocationAggregates{
			Location:   loc,
			Aggregates: aggregate.ByMinute(s.History(loc)),
		})
	}
}

func (s *Store) historySnapshot() models.HistoricalMap {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	return s.history.Clone()
}

func (s *Store) persistHistory(ctx context.Context) {
	s.persist(ctx, KeyHistoricalData, s.historySnapshot())
}

// persist writes v under key. Failures are logged and counted.
func (s *Store) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err == nil {
		err = s.opts.Cache.Set(key, data)
	}
	if err != nil {
		metrics.CacheWriteErrors.WithLabelValues(key).Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Local cache write failed")
	}
}

// load reads key into v. A miss returns false without error.
func (s *Store) load(key string, v any) (bool, error) {
	data, err := s.opts.Cache.Get(key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

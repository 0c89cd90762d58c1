// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/foottraffic/internal/metrics"
	"github.com/tomtom215/foottraffic/internal/models"
)

type fakeBackup struct {
	mu        sync.Mutex
	saved     []models.HistoricalMap
	saveErr   error
	loadErrs  int // fail this many Load calls before succeeding
	loadCalls int
	data      models.HistoricalMap
}

func (f *fakeBackup) Save(_ context.Context, h models.HistoricalMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, h)
	return f.saveErr
}

func (f *fakeBackup) Load(_ context.Context) (models.HistoricalMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	if f.loadCalls <= f.loadErrs {
		return nil, errors.New("backup unavailable")
	}
	return f.data.Clone(), nil
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)

func sample(loc string, at time.Time, people int) models.StatSample {
	return models.StatSample{Location: loc, PeopleCount: people, AvgDwellTime: float64(people) / 2, Timestamp: at}
}

func newTestStore(cache LocalCache, backup Backup) *Store {
	opts := Options{
		Cache:        cache,
		InitialDelay: time.Millisecond,
		Now:          func() time.Time { return t0.Add(time.Hour) },
	}
	if backup != nil {
		opts.Backup = backup
	}
	return New(opts)
}

func TestUpdateStatsSideEffects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewMemoryCache()
	backup := &fakeBackup{}
	s := newTestStore(cache, backup)

	var order []string
	var mu sync.Mutex
	note := func(what string) {
		mu.Lock()
		order = append(order, what)
		mu.Unlock()
	}
	s.SubscribeStats(func(models.StatSample) { note("stats") })
	var lastAgg models.LocationAggregates
	s.SubscribeAggregates(func(a models.LocationAggregates) {
		note("aggregates")
		lastAgg = a
	})

	s.UpdateStats(ctx, sample("Market", t0, 10))
	s.UpdateStats(ctx, sample("Market", t0.Add(30*time.Second), 20))
	s.WaitReplication()

	if len(order) != 4 || order[0] != "stats" || order[1] != "aggregates" {
		t.Errorf("notification order = %v", order)
	}
	if lastAgg.Location != "Market" || len(lastAgg.Aggregates) != 1 || lastAgg.Aggregates[0].PeopleCount != 15 {
		t.Errorf("aggregates = %+v", lastAgg)
	}

	latest, ok := s.LatestStats()
	if !ok || latest.PeopleCount != 20 {
		t.Errorf("LatestStats() = %+v, %v", latest, ok)
	}

	raw, err := cache.Get(KeyLatestStats)
	if err != nil {
		t.Fatalf("latest_stats not cached: %v", err)
	}
	var cached models.StatSample
	if err := json.Unmarshal(raw, &cached); err != nil || cached.PeopleCount != 20 {
		t.Errorf("cached latest = %+v, %v", cached, err)
	}
	if _, err := cache.Get(KeyHistoricalData); err != nil {
		t.Errorf("historical_data not cached: %v", err)
	}

	backup.mu.Lock()
	defer backup.mu.Unlock()
	if len(backup.saved) != 2 {
		t.Fatalf("replications = %d, want 2", len(backup.saved))
	}
	counts := map[int]bool{backup.saved[0].SampleCount(): true, backup.saved[1].SampleCount(): true}
	if !counts[1] || !counts[2] {
		t.Errorf("replicated snapshots should include each sample, got sizes %v", counts)
	}
}

func TestUpdateStatsPrunesRelativeToNewest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(nil, nil)

	s.UpdateStats(ctx, sample("Gate", t0, 1))
	s.UpdateStats(ctx, sample("Gate", t0.Add(23*time.Hour), 2))
	if n := len(s.History("Gate")); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}

	s.UpdateStats(ctx, sample("Gate", t0.Add(25*time.Hour), 3))
	h := s.History("Gate")
	if len(h) != 2 || h[0].PeopleCount != 2 {
		t.Errorf("history = %+v", h)
	}

	// An out-of-order older sample is pruned against the newest one.
	s.UpdateStats(ctx, sample("Gate", t0, 4))
	if n := len(s.History("Gate")); n != 2 {
		t.Errorf("stale sample kept, len = %d", n)
	}

	s.UpdateStats(ctx, sample("School", t0, 5))
	if locs := s.Locations(); len(locs) != 2 || locs[0] != "Gate" || locs[1] != "School" {
		t.Errorf("Locations() = %v", locs)
	}
	if s.SampleCount() != 3 {
		t.Errorf("SampleCount() = %d, want 3", s.SampleCount())
	}
}

func TestReplicationFailureIsOnlyLogged(t *testing.T) {
	ctx := context.Background()
	backup := &fakeBackup{saveErr: errors.New("boom")}
	s := newTestStore(nil, backup)

	before := testutil.ToFloat64(metrics.ReplicationsTotal.WithLabelValues(metrics.ResultFailure))
	s.UpdateStats(ctx, sample("Market", t0, 1))
	s.WaitReplication()

	if got := testutil.ToFloat64(metrics.ReplicationsTotal.WithLabelValues(metrics.ResultFailure)) - before; got != 1 {
		t.Errorf("failure counter delta = %v, want 1", got)
	}
	if len(s.History("Market")) != 1 {
		t.Error("sample dropped after replication failure")
	}
}

func TestUpdateMapSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewMemoryCache()
	s := newTestStore(cache, nil)

	var totals []int
	s.SubscribeTotal(func(v int) { totals = append(totals, v) })

	snap := models.MapSnapshot{Zoom: 12, Markers: []models.MapMarker{{ID: "1", Count: 5}, {ID: "2", Count: 7}}}
	s.UpdateMapSnapshot(ctx, snap)

	if s.TotalCount() != 12 || len(totals) != 1 || totals[0] != 12 {
		t.Errorf("TotalCount() = %d, totals = %v", s.TotalCount(), totals)
	}
	if got, ok := s.MapSnapshot(); !ok || len(got.Markers) != 2 {
		t.Errorf("MapSnapshot() = %+v, %v", got, ok)
	}
	if v, err := cache.Get(KeyLatestTotalCount); err != nil || string(v) != "12" {
		t.Errorf("cached total = %q, %v", v, err)
	}
	if _, err := cache.Get(KeyLatestMapData); err != nil {
		t.Errorf("map not cached: %v", err)
	}
}

func TestAggregatedRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(nil, nil) // now = t0 + 1h

	s.UpdateStats(ctx, sample("Market", t0.Add(-3*time.Hour), 10))
	s.UpdateStats(ctx, sample("Market", t0.Add(30*time.Minute), 20))

	if got := s.AggregatedRange("Market", 0); len(got) != 2 {
		t.Errorf("unbounded = %d aggregates, want 2", len(got))
	}
	got := s.AggregatedRange("Market", 1)
	if len(got) != 1 || got[0].PeopleCount != 20 {
		t.Errorf("1h window = %+v", got)
	}
	if got := s.AggregatedRange("Nowhere", 1); got == nil || len(got) != 0 {
		t.Errorf("unknown location = %#v, want empty", got)
	}
}

func TestRecoverFromRemote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backup := &fakeBackup{
		loadErrs: 2,
		data: models.HistoricalMap{
			"Market": {sample("Market", t0.Add(time.Minute), 8), sample("Market", t0, 4)},
		},
	}
	cache := NewMemoryCache()
	s := newTestStore(cache, backup)

	var aggs []models.LocationAggregates
	s.SubscribeAggregates(func(a models.LocationAggregates) { aggs = append(aggs, a) })

	report := s.Recover(ctx)
	if report.Source != SourceRemote || report.Attempts != 3 || report.Degraded {
		t.Fatalf("report = %+v", report)
	}
	h := s.History("Market")
	if len(h) != 2 || h[0].PeopleCount != 4 {
		t.Errorf("history not sorted oldest first: %+v", h)
	}
	if len(aggs) != 1 || aggs[0].Location != "Market" {
		t.Errorf("aggregates after recover = %+v", aggs)
	}
	if _, err := cache.Get(KeyHistoricalData); err != nil {
		t.Errorf("recovered history not written locally: %v", err)
	}
}

func TestRecoverDegradedFallsBackToLocal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := NewMemoryCache()
	_ = cache.Set(KeyHistoricalData, []byte(`{"School":[{"people_count":3,"location":"School","timestamp":"2026-03-01T09:00:00Z"}],"Broken":"x"}`))
	_ = cache.Set(KeyLatestStats, []byte(`{"people_count":3,"location":"School","timestamp":"2026-03-01T09:00:00Z"}`))
	_ = cache.Set(KeyLatestMapData, []byte(`{"zoom":12,"markers":[{"id":"1","count":9}]}`))
	_ = cache.Set(KeyLatestTotalCount, []byte(`9`))

	backup := &fakeBackup{loadErrs: 100}
	s := newTestStore(cache, backup)

	report := s.Recover(ctx)
	if report.Source != SourceLocal || !report.Degraded || report.Attempts != 3 {
		t.Fatalf("report = %+v", report)
	}
	if !s.Degraded() {
		t.Error("Degraded() = false")
	}
	backup.mu.Lock()
	calls := backup.loadCalls
	backup.mu.Unlock()
	if calls != 3 {
		t.Errorf("load calls = %d, want 3", calls)
	}
	if len(s.History("School")) != 1 {
		t.Errorf("local history not loaded")
	}
	if h := s.History("Broken"); len(h) != 0 {
		t.Errorf("corrupt series = %+v, want empty", h)
	}
	if latest, ok := s.LatestStats(); !ok || latest.PeopleCount != 3 {
		t.Errorf("latest not restored: %+v", latest)
	}
	if s.TotalCount() != 9 {
		t.Errorf("TotalCount() = %d, want 9", s.TotalCount())
	}
	if m, ok := s.MapSnapshot(); !ok || m.Zoom != 12 {
		t.Errorf("map not restored: %+v", m)
	}
}

func TestRecoverWithoutBackup(t *testing.T) {
	t.Parallel()
	s := newTestStore(NewMemoryCache(), nil)
	report := s.Recover(context.Background())
	if report.Source != SourceNone || report.Degraded || report.Attempts != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRecoverStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Options{Backup: &fakeBackup{loadErrs: 100}, InitialDelay: time.Hour})
	done := make(chan RecoveryReport, 1)
	go func() { done <- s.Recover(ctx) }()

	select {
	case r := <-done:
		if !r.Degraded {
			t.Errorf("report = %+v, want degraded", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recover ignored context cancellation")
	}
}

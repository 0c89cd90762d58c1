// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package sync

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/foottraffic/internal/aggregate"
	"github.com/tomtom215/foottraffic/internal/mapview"
	"github.com/tomtom215/foottraffic/internal/models"
	"github.com/tomtom215/foottraffic/internal/store"
)

type fakeFetcher struct {
	mu    sync.Mutex
	raws  []models.RawStats
	errs  []error
	calls atomic.Int32
	block bool
}

func (f *fakeFetcher) FetchStats(ctx context.Context) (models.RawStats, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return models.RawStats{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return models.RawStats{}, err
		}
	}
	if len(f.raws) == 0 {
		return models.RawStats{}, errors.New("no more stats")
	}
	raw := f.raws[0]
	f.raws = f.raws[1:]
	return raw, nil
}

func rawStats(people float64, loc string) models.RawStats {
	return models.RawStats{PeopleCount: &people, Location: &loc}
}

var pollNow = time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

func testPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:        time.Hour,
		FetchTimeout:    50 * time.Millisecond,
		FallbackEnabled: true,
		Now:             func() time.Time { return pollNow },
		Rand:            func() float64 { return 0.5 },
	}
}

func TestPollFetchedIngestsAndProjects(t *testing.T) {
	t.Parallel()
	st := store.New(store.Options{})
	f := &fakeFetcher{raws: []models.RawStats{rawStats(14, "Palengke")}}
	p := NewPoller(f, st, mapview.NewProjector(func() float64 { return 0.5 }), testPollerConfig())

	if got := p.Poll(context.Background()); got != PollFetched {
		t.Fatalf("Poll() = %s", got)
	}
	latest, ok := st.LatestStats()
	if !ok || latest.PeopleCount != 14 || latest.Location != "Palengke" || !latest.Timestamp.Equal(pollNow) {
		t.Errorf("LatestStats() = %+v", latest)
	}
	snap, ok := st.MapSnapshot()
	if !ok || snap.ZoneInfo != mapview.CameraPalengke {
		t.Errorf("MapSnapshot() = %+v, %v", snap, ok)
	}
	if st.TotalCount() != snap.Total() || st.TotalCount() == 0 {
		t.Errorf("TotalCount() = %d, snapshot total = %d", st.TotalCount(), snap.Total())
	}
}

func TestPollWithoutProjector(t *testing.T) {
	t.Parallel()
	st := store.New(store.Options{})
	f := &fakeFetcher{raws: []models.RawStats{rawStats(3, "Gate")}}
	p := NewPoller(f, st, nil, testPollerConfig())

	p.Poll(context.Background())
	if _, ok := st.MapSnapshot(); ok {
		t.Error("map snapshot published with projection disabled")
	}
}

func TestPollFallbackOnlyBeforeFirstSample(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.New(store.Options{})
	f := &fakeFetcher{errs: []error{errors.New("timeout"), errors.New("timeout")}}
	p := NewPoller(f, st, nil, testPollerConfig())

	if got := p.Poll(ctx); got != PollFallback {
		t.Fatalf("first Poll() = %s, want fallback", got)
	}
	first, ok := st.LatestStats()
	if !ok || first.PeopleCount <= 0 {
		t.Fatalf("fallback sample = %+v", first)
	}

	if got := p.Poll(ctx); got != PollKept {
		t.Fatalf("second Poll() = %s, want kept", got)
	}
	second, _ := st.LatestStats()
	if second != first {
		t.Errorf("sample changed after failure: %+v -> %+v", first, second)
	}
	if n := len(st.History(FallbackLocation)); n != 1 {
		t.Errorf("history len = %d, want 1", n)
	}
}

func TestPollFailureKeepsFetchedSample(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.New(store.Options{})
	f := &fakeFetcher{raws: []models.RawStats{rawStats(9, "Gate")}, errs: []error{nil, errors.New("down")}}
	p := NewPoller(f, st, nil, testPollerConfig())

	p.Poll(ctx)
	if got := p.Poll(ctx); got != PollKept {
		t.Fatalf("Poll() = %s, want kept", got)
	}
	if s, _ := st.LatestStats(); s.PeopleCount != 9 || s.Location != "Gate" {
		t.Errorf("LatestStats() = %+v", s)
	}
}

func TestPollFallbackDisabled(t *testing.T) {
	t.Parallel()
	st := store.New(store.Options{})
	cfg := testPollerConfig()
	cfg.FallbackEnabled = false
	p := NewPoller(&fakeFetcher{errs: []error{errors.New("down")}}, st, nil, cfg)

	if got := p.Poll(context.Background()); got != PollKept {
		t.Fatalf("Poll() = %s", got)
	}
	if _, ok := st.LatestStats(); ok {
		t.Error("sample published with fallback disabled")
	}
}

func TestPollFetchTimeout(t *testing.T) {
	t.Parallel()
	st := store.New(store.Options{})
	p := NewPoller(&fakeFetcher{block: true}, st, nil, testPollerConfig())

	start := time.Now()
	if got := p.Poll(context.Background()); got != PollFallback {
		t.Fatalf("Poll() = %s", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch not bounded by timeout: %v", elapsed)
	}
}

func TestPollerStartStop(t *testing.T) {
	t.Parallel()
	st := store.New(store.Options{})
	f := &fakeFetcher{raws: []models.RawStats{rawStats(1, "A"), rawStats(2, "A"), rawStats(3, "A")}}
	cfg := testPollerConfig()
	cfg.Interval = 10 * time.Millisecond
	p := NewPoller(f, st, nil, cfg)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !p.Running() {
		t.Fatal("Running() = false after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.calls.Load() < 2 {
		t.Errorf("polls = %d, want >= 2", f.calls.Load())
	}

	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	if p.Running() {
		t.Error("Running() = true after Stop")
	}
	calls := f.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if f.calls.Load() != calls {
		t.Error("poller kept running after Stop")
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	st := store.New(store.Options{})
	cfg := testPollerConfig()
	cfg.Interval = 5 * time.Millisecond
	p := NewPoller(&fakeFetcher{}, st, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	_ = p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop ignored context cancellation")
	}
	_ = p.Stop()
}

func TestSynthesize(t *testing.T) {
	t.Parallel()
	for _, hour := range []int{0, 3, 9, 13, 18, 23} {
		now := time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
		for _, u := range []float64{0, 0.5, 0.999} {
			s := Synthesize(now, func() float64 { return u })
			if s.PeopleCount < 1 {
				t.Errorf("hour %d u %v: people = %d", hour, u, s.PeopleCount)
			}
			m := aggregate.HourMultiplier(hour)
			lo := int(math.Floor(FallbackBase * m * 0.85))
			hi := int(math.Ceil(FallbackBase * m * 1.15))
			if s.PeopleCount < lo || s.PeopleCount > hi {
				t.Errorf("hour %d u %v: people = %d outside [%d, %d]", hour, u, s.PeopleCount, lo, hi)
			}
			if s.AvgDwellTime < 120 || s.AvgDwellTime > 240 {
				t.Errorf("avg dwell = %v", s.AvgDwellTime)
			}
			if !s.Timestamp.Equal(now) || s.Location != FallbackLocation {
				t.Errorf("sample = %+v", s)
			}
		}
	}
}

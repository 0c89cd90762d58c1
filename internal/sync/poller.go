// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package sync

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/mapview"
	"github.com/tomtom215/foottraffic/internal/metrics"
	"github.com/tomtom215/foottraffic/internal/models"
)

// Poll defaults.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultFetchTimeout = 3 * time.Second
)

// Sink receives accepted samples. *store.Store satisfies it.
type Sink interface {
	UpdateStats(ctx context.Context, sample models.StatSample)
	UpdateMapSnapshot(ctx context.Context, snap models.MapSnapshot)
	LatestStats() (models.StatSample, bool)
}

// PollerConfig tunes a Poller.
type PollerConfig struct {
	Interval        time.Duration
	FetchTimeout    time.Duration
	FallbackEnabled bool

	Now  func() time.Time
	Rand func() float64
}

// PollResult is the outcome of one poll.
type PollResult string

// Poll outcomes.
const (
	PollFetched  PollResult = "fetched"
	PollFallback PollResult = "fallback"
	PollKept     PollResult = "kept"
)

// Poller periodically pulls the stats feed into a Sink.
type Poller struct {
	fetcher   StatsFetcher
	sink      Sink
	projector *mapview.Projector // nil disables map projection
	config    PollerConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	pollMu sync.Mutex
}

// NewPoller creates a poller. projector may be nil.
func NewPoller(fetcher StatsFetcher, sink Sink, projector *mapview.Projector, config PollerConfig) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Rand == nil {
		config.Rand = rand.Float64
	}
	return &Poller{
		fetcher:   fetcher,
		sink:      sink,
		projector: projector,
		config:    config,
	}
}

// Start begins polling. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	stop := p.stopChan
	p.mu.Unlock()

	logging.Info().Dur("interval", p.config.Interval).Dur("fetch_timeout", p.config.FetchTimeout).
		Msg("Starting stats poller")

	p.wg.Add(1)
	go p.pollLoop(ctx, stop)
	return nil
}

// Stop halts polling and waits for an in-flight poll. Safe to call twice.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logging.Info().Msg("Stats poller stopped")
	return nil
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) pollLoop(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	p.Poll(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one fetch-and-ingest cycle.
func (p *Poller) Poll(ctx context.Context) PollResult {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	log := logging.Ctx(ctx)
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	raw, err := p.fetcher.FetchStats(fetchCtx)
	cancel()

	if err == nil {
		sample := Validate(raw, p.config.Now())
		p.ingest(ctx, sample)
		metrics.RecordPoll(metrics.ResultSuccess, time.Since(start))
		return PollFetched
	}

	if _, ok := p.sink.LatestStats(); ok || !p.config.FallbackEnabled {
		log.Debug().Err(err).Msg("Stats fetch failed; keeping last known sample")
		metrics.RecordPoll(metrics.ResultFailure, time.Since(start))
		return PollKept
	}

	sample := Synthesize(p.config.Now(), p.config.Rand)
	log.Info().Err(err).Int("people_count", sample.PeopleCount).
		Msg("Stats fetch failed before first sample; using synthesized fallback")
	p.ingest(ctx, sample)
	metrics.RecordPoll(metrics.ResultFallback, time.Since(start))
	return PollFallback
}

func (p *Poller) ingest(ctx context.Context, sample models.StatSample) {
	p.sink.UpdateStats(ctx, sample)
	if p.projector == nil {
		return
	}
	view := p.projector.Project(sample, p.config.Now())
	p.sink.UpdateMapSnapshot(ctx, view.Map)
}

// String identifies the poller in supervisor logs.
func (p *Poller) String() string { return "stats-poller" }

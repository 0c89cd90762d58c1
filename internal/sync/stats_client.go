// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package sync

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/foottraffic/internal/breaker"
	"github.com/tomtom215/foottraffic/internal/models"
)

// StatsPath is the upstream stats endpoint.
const StatsPath = "/api/stats"

// Stats feed errors.
var (
	ErrStatsUnsuccessful = errors.New("stats feed reported failure")
	ErrNoStats           = errors.New("stats feed returned no stats object")
)

// StatsFetcher is the poller's view of the stats feed.
type StatsFetcher interface {
	FetchStats(ctx context.Context) (models.RawStats, error)
}

// StatsClient reads the latest sample from the video-analysis backend.
type StatsClient struct {
	url     string
	client  *http.Client
	breaker *breaker.Breaker[models.RawStats]
}

// NewStatsClient creates a client for baseURL. A nil httpClient gets a
// client with a 10s safety timeout; per-poll deadlines come from ctx.
func NewStatsClient(baseURL string, httpClient *http.Client) *StatsClient {
	if httpClient == nil {
		httpClient = defaultHTTPClient(10 * time.Second)
	}
	return &StatsClient{
		url:     joinURL(baseURL, StatsPath),
		client:  httpClient,
		breaker: breaker.New[models.RawStats]("stats-feed", breaker.Settings{Timeout: 15 * time.Second}),
	}
}

// FetchStats returns the raw stats object. The body must be
// {"success": true, "stats": {...}}.
func (c *StatsClient) FetchStats(ctx context.Context) (models.RawStats, error) {
	return c.breaker.Execute(func() (models.RawStats, error) {
		var env models.StatsEnvelope
		if err := getJSON(ctx, c.client, c.url, &env); err != nil {
			return models.RawStats{}, err
		}
		if !env.Success {
			return models.RawStats{}, ErrStatsUnsuccessful
		}
		if env.Stats == nil {
			return models.RawStats{}, ErrNoStats
		}
		return *env.Stats, nil
	})
}

// BreakerState reports the stats feed breaker state.
func (c *StatsClient) BreakerState() string { return c.breaker.State() }

// Validate normalizes a raw payload. See models.RawStats.Sample for the rules.
func Validate(raw models.RawStats, now time.Time) models.StatSample {
	return raw.Sample(now)
}

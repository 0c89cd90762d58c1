// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package sync feeds the shared store from the video-analysis backend and
mirrors history to the remote backup endpoint.

Key Components:

  - StatsClient: GET {base}/api/stats behind a circuit breaker
  - Validate: normalizes the raw stats payload into a StatSample
  - Poller: fetches every PollInterval and ingests accepted samples
  - Synthesize: the time-of-day weighted fallback sample
  - BackupClient: POST /api/save-historical and GET /api/load-historical,
    satisfying store.Backup

Poll cycle:

 1. Fetch with a per-request timeout (FetchTimeout, default 3s). Only the
    fetch is bound by it, not ingestion.
 2. On success, Validate and hand the sample to store.UpdateStats, then
    project the map view and publish it with UpdateMapSnapshot.
 3. On failure, synthesize a fallback sample only if the store has never
    held one. Otherwise the last known sample stays in place.

Usage Example:

	client := sync.NewStatsClient(cfg.Stats.URL, nil)
	poller := sync.NewPoller(client, st, mapview.NewProjector(nil), sync.PollerConfig{
	    Interval:        cfg.Stats.PollInterval,
	    FetchTimeout:    cfg.Stats.FetchTimeout,
	    FallbackEnabled: cfg.Stats.FallbackEnabled,
	})
	if err := poller.Start(ctx); err != nil {
	    return err
	}
	defer poller.Stop()
*/
package sync

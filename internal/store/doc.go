// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package store holds the dashboard's shared state: the latest sample, the
per-location history window, the derived map snapshot and total, and the
per-location minute aggregates.

One Store is built at startup and injected into the poller, the API and the
websocket hub. Each observable value is a Subject: readers either call the
getter or subscribe and receive the current value immediately followed by
every later update.

# Ingestion

UpdateStats applies a sample in a fixed order:

 1. publish it to stats subscribers
 2. persist it to the local cache under latest_stats
 3. replicate the history (before this sample) to the remote backup in
    the background; failures are only logged
 4. append it to its location's series and drop samples older than the
    retention window, measured from the newest sample
 5. recompute that location's minute aggregates and publish them

Concurrent calls are not serialized end to end; the last write wins for
the latest value.

# Recovery

Recover loads history from the remote backup with exponential backoff and
falls back to the local cache when every attempt fails, in which case the
store reports degraded mode. The latest stats, map and total always come
from the local cache.
*/
package store

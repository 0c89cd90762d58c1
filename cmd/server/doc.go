// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Command server runs the FootTraffic dashboard backend.

It polls the video-analysis stats feed, keeps a rolling per-location history,
derives the map and forecast views, and serves them over a REST API and a
WebSocket. Access to the dashboard data requires a two-step login: a
password or OIDC sign-in followed by an emailed six-digit code.

# Process Tree

	foottraffic
	├── data-layer       nats-embedded, session-registry
	├── messaging-layer  websocket-hub, websocket-bus-subscriber, stats-poller
	└── api-layer        http-server

# Configuration

Settings load from built-in defaults, then an optional config file
(CONFIG_PATH, default config.yaml), then environment variables. The most
common ones:

	STATS_URL              analysis backend base URL
	BACKUP_URL             remote historical backup (empty: use the local archive)
	JWT_SECRET             token signing secret
	VERIFICATION_PROVIDER  emailjs, smtp or log
	EVENTS_ENABLED         publish samples on the event bus
	NATS_EMBEDDED          run an in-process NATS server

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains, the
poller finishes its in-flight fetch, pending replication writes complete
and the stores close.
*/
package main

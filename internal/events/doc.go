// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package events publishes store updates on a watermill event bus.

Topics:

	foottraffic.stats.ingested  StatsIngested, one per accepted sample
	foottraffic.map.updated     MapUpdated, one per map snapshot

Transports:

  - gochannel: in-process pub/sub (default)
  - nats: core NATS through watermill-nats, against an external server or
    one embedded with nats-server

Attach bridges a store to the bus; any number of nodes can then consume the
topics (the websocket package does so to serve dashboards from a replica).

	bus, err := events.NewBus(events.Config{Transport: events.TransportGoChannel})
	detach := events.Attach(st, bus)
	defer detach()

Payloads are JSON (goccy/go-json). Message metadata carries the correlation
ID of the context that produced the event, when there is one.
*/
package events

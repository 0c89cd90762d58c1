// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package websocket pushes live dashboard updates to browser clients.

A Hub owns the connected clients and fans messages out to them; each Client
runs a read pump (answers pings) and a write pump (drains its send queue).
New clients receive the current stats, map and total before live traffic.

Message Types:

  - stats_update: latest validated sample
  - aggregate_update: minute aggregates of one location
  - map_update: map snapshot with markers
  - total_update: {"total": n}, the sum of marker counts
  - ping / pong: client keepalive

Feeding the hub:

	hub := websocket.NewHub()
	hub.SetWelcome(websocket.Welcome(st))
	detach := websocket.AttachStore(hub, st, bus == nil)
	defer detach()

	if bus != nil {
	    sub := websocket.NewBusSubscriber(hub, bus) // stats and map from the bus
	    go sub.Serve(ctx)
	}
	go hub.RunWithContext(ctx)

	r.Get("/ws", hub.Handler(websocket.OriginChecker(cfg.Security.CORSOrigins)))

Slow clients whose send queue fills are disconnected rather than allowed to
stall the broadcast loop.
*/
package websocket

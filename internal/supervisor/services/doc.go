// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package services adapts FootTraffic components to suture.Service.

Most long-running components already expose Serve(ctx) and a String name
and are added to the tree directly: the websocket hub, the bus subscriber,
the session registry and the embedded NATS server. This package covers the
two shapes that need translating:

	HTTPServerService   ListenAndServe/Shutdown to Serve, with a drain timeout
	StartStopService    Start/Stop to Serve (the stats poller)

Serve returns ctx.Err() on a clean stop so suture does not count it as a
failure.
*/
package services

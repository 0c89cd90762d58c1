// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package supervisor runs FootTraffic's long-lived goroutines under a suture v4
supervisor tree.

# Tree

	foottraffic (root)
	├── data-layer
	│   ├── nats-embedded          (when events.embedded is set)
	│   └── session-registry       (idle session sweeper)
	├── messaging-layer
	│   ├── websocket-hub
	│   ├── websocket-bus-subscriber (when events are enabled)
	│   └── stats-poller
	└── api-layer
	    └── http-server

Each layer restarts its own services. A service that keeps failing puts only
its layer into backoff.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddComponents(supervisor.Components{
		Sessions:   registry,
		Hub:        hub,
		Poller:     poller,
		HTTPServer: srv,
	})
	return tree.Serve(ctx)

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the process logger.
*/
package supervisor

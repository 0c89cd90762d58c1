// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/events"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/store"
	ws "github.com/tomtom215/foottraffic/internal/websocket"
)

// eventComponents carries live updates from the store to the hub. With
// events disabled the hub subscribes to the store directly and every field
// but detach is nil.
type eventComponents struct {
	server     *events.EmbeddedServer
	bus        *events.Bus
	subscriber *ws.BusSubscriber
	detach     []func()
}

func initEvents(cfg *config.Config, st *store.Store, hub *ws.Hub) (*eventComponents, error) {
	ec := &eventComponents{}

	if !cfg.Events.Enabled {
		ec.detach = append(ec.detach, ws.AttachStore(hub, st, true))
		logging.Info().Msg("Event bus disabled; hub reads the store directly")
		return ec, nil
	}

	var clientURL string
	if cfg.Events.Embedded {
		srv, err := events.NewEmbeddedServer(events.ServerConfig{
			Host: cfg.Events.EmbeddedHost,
			Port: cfg.Events.EmbeddedPort,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		ec.server = srv
		clientURL = srv.ClientURL()
	}

	busCfg := events.FromAppConfig(cfg.Events, clientURL)
	bus, err := events.NewBus(busCfg)
	if err != nil {
		ec.close()
		return nil, fmt.Errorf("connect event bus: %w", err)
	}
	ec.bus = bus

	ec.detach = append(ec.detach,
		events.Attach(st, bus),
		// Stats and map snapshots arrive over the bus.
		ws.AttachStore(hub, st, false),
	)
	ec.subscriber = ws.NewBusSubscriber(hub, bus)
	logging.Info().Str("transport", busCfg.Transport).Msg("Event bus connected")
	return ec, nil
}

func (ec *eventComponents) close() {
	for _, d := range ec.detach {
		d()
	}
	if ec.bus != nil {
		if err := ec.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	// The supervisor normally stops the embedded server; this covers
	// startup failures before the tree runs.
	if ec.server != nil && ec.server.IsRunning() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ec.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error stopping embedded NATS server")
		}
	}
}

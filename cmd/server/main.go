// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/foottraffic/internal/api"
	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/supervisor"
	ws "github.com/tomtom215/foottraffic/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("FootTraffic exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().Str("version", version).Str("environment", cfg.Server.Environment).
		Msg("Starting FootTraffic with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	data, err := initData(ctx, cfg, httpClient)
	if err != nil {
		return err
	}
	defer data.close()

	identity, err := initIdentity(ctx, cfg, httpClient)
	if err != nil {
		return err
	}
	defer identity.close()

	hub := ws.NewHub()
	hub.SetWelcome(ws.Welcome(data.store))

	ev, err := initEvents(cfg, data.store, hub)
	if err != nil {
		return err
	}
	defer ev.close()

	handler, err := api.NewHandler(api.Deps{
		Config:       cfg,
		Store:        data.store,
		Projector:    data.projector,
		Archive:      data.archive,
		Sessions:     identity.sessions,
		Passwords:    identity.passwords,
		Tokens:       identity.tokens,
		Guard:        identity.guard,
		Hub:          hub,
		BreakerState: data.stats.BreakerState,
		Version:      version,
		StartTime:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create API handler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler).SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	components := supervisor.Components{
		Sessions:   identity.sessions,
		Hub:        hub,
		Poller:     data.poller,
		HTTPServer: srv,
	}
	// Interface fields stay untyped nil when the component is off.
	if ev.server != nil {
		components.NATSServer = ev.server
	}
	if ev.subscriber != nil {
		components.BusSubscriber = ev.subscriber
	}
	tree.AddComponents(components)

	logging.Info().Str("addr", srv.Addr).Msg("FootTraffic ready")

	err = tree.Serve(ctx)

	// Let queued replication writes land before the stores close.
	data.store.WaitReplication()

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("FootTraffic stopped")
	return nil
}

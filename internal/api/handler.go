// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"errors"
	"time"

	"github.com/tomtom215/foottraffic/internal/auth"
	"github.com/tomtom215/foottraffic/internal/authz"
	"github.com/tomtom215/foottraffic/internal/backup"
	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/mapview"
	"github.com/tomtom215/foottraffic/internal/store"
	ws "github.com/tomtom215/foottraffic/internal/websocket"
)

// Deps are the collaborators of a Handler. Archive, Passwords and Hub may
// be nil; the routes that need them then answer 404 or are not mounted.
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Projector *mapview.Projector
	Archive   *backup.Manager
	Sessions  *auth.Registry
	Passwords *auth.PasswordProvider
	Tokens    *auth.TokenManager
	Guard     *authz.Guard
	Hub       *ws.Hub

	// BreakerState reports the stats client's circuit breaker, if any.
	BreakerState func() string

	Version   string
	StartTime time.Time
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_stats.go: health and dashboard data endpoints
//   - handlers_backup.go: historical replication and archive endpoints
//   - handlers_auth.go: login, verification and session endpoints
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	projector *mapview.Projector
	archive   *backup.Manager
	sessions  *auth.Registry
	passwords *auth.PasswordProvider
	tokens    *auth.TokenManager
	guard     *authz.Guard
	hub       *ws.Hub
	breaker   func() string
	version   string
	startTime time.Time
}

// NewHandler validates deps and returns a Handler.
func NewHandler(d Deps) (*Handler, error) {
	switch {
	case d.Config == nil:
		return nil, errors.New("api: config is required")
	case d.Store == nil:
		return nil, errors.New("api: store is required")
	case d.Sessions == nil:
		return nil, errors.New("api: session registry is required")
	case d.Guard == nil:
		return nil, errors.New("api: guard is required")
	}
	if d.Projector == nil {
		d.Projector = mapview.NewProjector(nil)
	}
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.StartTime.IsZero() {
		d.StartTime = time.Now()
	}
	return &Handler{
		cfg:       d.Config,
		store:     d.Store,
		projector: d.Projector,
		archive:   d.Archive,
		sessions:  d.Sessions,
		passwords: d.Passwords,
		tokens:    d.Tokens,
		guard:     d.Guard,
		hub:       d.Hub,
		breaker:   d.BreakerState,
		version:   d.Version,
		startTime: d.StartTime,
	}, nil
}

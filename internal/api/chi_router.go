// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/foottraffic/internal/authz"
	"github.com/tomtom215/foottraffic/internal/middleware"
	ws "github.com/tomtom215/foottraffic/internal/websocket"
)

// Router wires handlers to chi routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	guard         *authz.Middleware
}

// NewRouter creates a router from a handler and the security section of
// its config.
func NewRouter(h *Handler) *Router {
	return &Router{
		handler:       h,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(h.cfg.Security)),
		guard:         authz.NewMiddleware(h.guard, h.StatusFor, denyAPI),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		// Credential and code endpoints get the strict limit.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAuth())
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/verify", h.Verify)
			r.Post("/resend", h.Resend)
		})

		r.Get("/federated", h.Federated)
		r.Get("/callback", h.Callback)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
		r.Get("/guard", h.Guard)
	})

	// Replication peers carry no browser session.
	if h.archive != nil {
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Post("/api/save-historical", h.SaveHistorical)
			r.Get("/api/load-historical", h.LoadHistorical)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.guard.API(authz.ClassProtected))

		r.Get("/api/stats", h.Stats)
		r.Get("/api/aggregates/{location}", h.Aggregates)
		r.Get("/api/history/{location}", h.History)
		r.Get("/api/locations", h.Locations)
		r.Get("/api/map", h.Map)
		r.Get("/api/view", h.View)
		r.Get("/api/peak-hours", h.PeakHours)
		r.Get("/api/weekly-summary", h.WeeklySummary)

		if h.archive != nil {
			r.Get("/api/backups", h.ListBackups)
			r.Post("/api/backups/{filename}/restore", h.RestoreBackup)
		}
		if h.hub != nil {
			r.Get("/ws", h.hub.Handler(ws.OriginChecker(h.cfg.Security.CORSOrigins)))
		}
	})

	return r
}

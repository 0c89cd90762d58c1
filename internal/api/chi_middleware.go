// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/foottraffic/internal/config"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int // seconds

	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	RateLimitDisabled     bool
}

// ChiMiddlewareConfigFrom maps the security section.
func ChiMiddlewareConfigFrom(sec config.SecurityConfig) ChiMiddlewareConfig {
	return ChiMiddlewareConfig{
		CORSAllowedOrigins:    sec.CORSOrigins,
		CORSMaxAge:            86400,
		RateLimitRequests:     sec.RateLimitReqs,
		RateLimitWindow:       sec.RateLimitWindow,
		AuthRateLimitRequests: sec.AuthRateLimitReqs,
		AuthRateLimitWindow:   sec.AuthRateLimitWindow,
		RateLimitDisabled:     sec.RateLimitDisabled,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware builds the CORS handler once.
func NewChiMiddleware(cfg ChiMiddlewareConfig) *ChiMiddleware {
	// Credentials are only allowed with an explicit origin list; browsers
	// reject credentialed responses for "*".
	allowCredentials := true
	for _, o := range cfg.CORSAllowedOrigins {
		if o == "*" {
			allowCredentials = false
		}
	}
	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID", "X-Correlation-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: allowCredentials,
			MaxAge:           cfg.CORSMaxAge,
		}),
	}
}

// CORS returns the go-chi/cors middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

func passthrough(next http.Handler) http.Handler { return next }

// RateLimit limits general API traffic per client IP.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// RateLimitAuth is the stricter limit on credential and code endpoints.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.limit(m.config.AuthRateLimitRequests, m.config.AuthRateLimitWindow)
}

func (m *ChiMiddleware) limit(n int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || n <= 0 || window <= 0 {
		return passthrough
	}
	return httprate.Limit(n, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many requests, slow down")
		}),
	)
}

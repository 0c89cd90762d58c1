// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package authz

import (
	"net/http"

	"github.com/tomtom215/foottraffic/internal/auth"
	"github.com/tomtom215/foottraffic/internal/logging"
)

// StatusFunc resolves the session status of a request.
type StatusFunc func(r *http.Request) auth.Status

// DenyFunc writes the response for a denied API request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, d Decision)

// Middleware applies a Guard to chi routes.
type Middleware struct {
	guard  *Guard
	status StatusFunc
	deny   DenyFunc
}

// NewMiddleware creates guard middleware. A nil deny writes a plain 403.
func NewMiddleware(guard *Guard, status StatusFunc, deny DenyFunc) *Middleware {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, _ Decision) {
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	}
	return &Middleware{guard: guard, status: status, deny: deny}
}

// View redirects browsers that may not see class to their home view.
func (m *Middleware) View(class ViewClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, ok := m.decide(w, r, class)
			if !ok {
				return
			}
			if !d.Allowed {
				http.Redirect(w, r, d.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// API rejects requests that may not reach class via the deny func.
func (m *Middleware) API(class ViewClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, ok := m.decide(w, r, class)
			if !ok {
				return
			}
			if !d.Allowed {
				m.deny(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) decide(w http.ResponseWriter, r *http.Request, class ViewClass) (Decision, bool) {
	d, err := m.guard.Decide(m.status(r), class)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return Decision{}, false
	}
	return d, true
}

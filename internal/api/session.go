// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/foottraffic/internal/auth"
	"github.com/tomtom215/foottraffic/internal/authz"
)

// machineFor returns the machine behind the request's session cookie.
func (h *Handler) machineFor(r *http.Request) (*auth.Machine, bool) {
	c, err := r.Cookie(h.cfg.Session.CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return h.sessions.Get(c.Value)
}

// ensureSession returns the request's machine, starting a session and
// setting its cookie when there is none.
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) *auth.Machine {
	if m, ok := h.machineFor(r); ok {
		return m
	}
	id, m := h.sessions.Create()
	http.SetCookie(w, h.cookie(h.cfg.Session.CookieName, id, h.sessions.IdleTimeout()))
	return m
}

func (h *Handler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
	if maxAge < 0 {
		c.MaxAge = -1
	}
	return c
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, h.cookie(h.cfg.Session.TokenCookieName, token, h.tokens.TTL()))
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(h.cfg.Session.TokenCookieName, "", -1))
}

// tokenFrom reads the session token from the Authorization header, then
// from the token cookie.
func (h *Handler) tokenFrom(r *http.Request) string {
	if v := r.Header.Get("Authorization"); len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	if c, err := r.Cookie(h.cfg.Session.TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// StatusFor resolves a request's session status: the session machine
// first, then a valid token. Anything else is anonymous.
func (h *Handler) StatusFor(r *http.Request) auth.Status {
	if m, ok := h.machineFor(r); ok {
		if st := m.State().Status(); st != auth.StatusAnonymous {
			return st
		}
	}
	if h.tokens != nil {
		if tok := h.tokenFrom(r); tok != "" {
			if _, err := h.tokens.Validate(tok); err == nil {
				return auth.StatusAuthenticated
			}
		}
	}
	return auth.StatusAnonymous
}

// denyAPI answers a request the guard refused.
func denyAPI(w http.ResponseWriter, r *http.Request, d authz.Decision) {
	rw := NewResponseWriter(w, r)
	if d.Redirect == authz.LoginPath {
		rw.ErrorWithDetails(http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required",
			map[string]string{"redirect": d.Redirect})
		return
	}
	rw.ErrorWithDetails(http.StatusForbidden, ErrCodeForbidden, "Not allowed in the current session state",
		map[string]string{"redirect": d.Redirect})
}

// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package authz decides which views a session may reach based on its
// authentication status, using Casbin.
//
// Every route belongs to one view class:
//
//	guest      login and sign-up; only for signed-out sessions
//	verify     the code entry view; only while a code is outstanding
//	protected  the dashboard and its data
//	public     health, metrics and the session endpoints
//
// The policy grants (status, class, "view") triples:
//
//	p, anonymous,            guest,     view
//	p, pending_verification, verify,    view
//	p, authenticated,        protected, view
//	p, *,                    public,    view
//
// A denied request is sent to the one place its status may go: /login for
// anonymous sessions, /verify for pending ones and /dashboard for
// authenticated ones.
package authz

// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package api serves the FootTraffic HTTP surface on a chi router.

Routes:

	GET  /api/health                      public
	GET  /metrics                         public (Prometheus)
	GET  /ws                              authenticated, WebSocket upgrade
	GET  /api/stats                       authenticated, upstream-compatible body
	GET  /api/aggregates/{location}       authenticated, ?hours=N trailing window
	GET  /api/history/{location}          authenticated
	GET  /api/locations                   authenticated
	GET  /api/map                         authenticated
	GET  /api/view                        authenticated, full dashboard projection
	GET  /api/peak-hours                  authenticated
	GET  /api/weekly-summary              authenticated
	POST /api/save-historical             public, upstream-compatible body
	GET  /api/load-historical             public, upstream-compatible body
	GET  /api/backups                     authenticated
	POST /api/backups/{filename}/restore  authenticated
	POST /api/auth/register|login|verify|resend|logout
	GET  /api/auth/federated|callback|session|guard

Every endpoint except the upstream-compatible ones answers with the
envelope

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

The historical endpoints are machine-to-machine: other FootTraffic
instances replicate to them with the sync.BackupClient, which carries no
browser session.

Sessions are identified by an HttpOnly cookie that maps to an
auth.Machine in the session registry. Verifying the emailed code also sets
a signed JWT cookie, which, or an Authorization: Bearer header, stands in
for an expired browser session on API requests.
*/
package api

// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package middleware provides the infrastructure HTTP middleware shared by
every route: request and correlation IDs for log tracing, and Prometheus
request instrumentation keyed by chi route pattern.

Order matters. RequestID runs first so the metrics middleware's debug log
carries the IDs:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Authentication, authorization and rate limiting live in the api and authz
packages.
*/
package middleware

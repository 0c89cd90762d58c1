// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package logging is the single zerolog-backed logging sink for FootTraffic.
//
// All packages log through the package-level helpers:
//
//	logging.Info().Str("location", loc).Msg("Sample ingested")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Replication failed")
//
// Libraries that need a *slog.Logger (sutureslog) get one from NewSlogLogger.
//
// Output is JSON by default. Set Format to "console" for local development.
package logging

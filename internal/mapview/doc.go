// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package mapview derives the dashboard map and hourly views from the latest
sample.

The map shows a fixed set of Manila locations plus the live camera. Every
location gets a synthetic 24-slot hourly series: 20 historical hours shaped
by the time-of-day profile in package aggregate, then 4 forecast hours. The
live camera's current hour carries the real people count and dwell time.

A View is recomputed from scratch on every sample:

	p := mapview.NewProjector(nil)
	view := p.Project(sample, time.Now())
	st.UpdateMapSnapshot(ctx, view.Map)

Projector keeps the last View so HTTP handlers can serve peak hours and the
weekly summary without recomputing (and re-randomising) them.
*/
package mapview

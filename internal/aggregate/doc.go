// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package aggregate turns raw foot-traffic samples into the figures the
dashboard shows.

Everything here is a pure function of its inputs (plus an injected random
source where noise is part of the model), so results can be recomputed at any
time and compared in tests.

# Per-minute aggregates

ByMinute buckets one location's samples by local wall-clock minute (HH:MM)
and averages people count and dwell time per bucket:

	series := store.History("Market")
	aggs := aggregate.ByMinute(series)
	// [{Time:"09:00" PeopleCount:15 AvgDwellTime:... DataPoints:2} ...]

Means are rounded to one decimal place and the result is ordered by
(hour, minute). Samples from different days that share a wall-clock minute
fall in the same bucket; callers bound the input window first.

# Derived dashboard figures

  - TrafficCategory: High / Medium / Low bands for a people count
  - HourMultiplier: the time-of-day busyness profile
  - PeakHours: the three busiest hourly slots with relative status text
  - Weekly: the weekly projection from a current total
  - Forecast: trend plus bounded noise over the most recent values
*/
package aggregate

// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package sync

import (
	"math"
	"time"

	"github.com/tomtom215/foottraffic/internal/aggregate"
	"github.com/tomtom215/foottraffic/internal/models"
)

// FallbackBase is the typical people count the fallback profile scales.
const FallbackBase = 50

// FallbackLocation labels synthesized samples.
const FallbackLocation = models.UnknownLocation

// Synthesize builds a plausible sample for now: FallbackBase shaped by the
// hour-of-day profile with +/-15% jitter, never fewer than one person.
// rnd returns values in [0, 1).
func Synthesize(now time.Time, rnd func() float64) models.StatSample {
	people := int(math.Floor(aggregate.Jitter(FallbackBase*aggregate.HourMultiplier(now.Hour()), rnd())))
	if people < 1 {
		people = 1
	}
	avg := math.Round((120+rnd()*120)*10) / 10
	return models.StatSample{
		Location:         FallbackLocation,
		PeopleCount:      people,
		AvgDwellTime:     avg,
		HighestDwellTime: math.Round(avg*1.5*10) / 10,
		Timestamp:        now,
	}
}

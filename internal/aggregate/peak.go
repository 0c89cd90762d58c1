// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/foottraffic/internal/models"
)

// ErrNotEnoughPoints is returned by PeakHours for fewer than three slots.
var ErrNotEnoughPoints = errors.New("at least three hourly points are required")

// HourlyPoint is the combined traffic of all locations for one hour slot.
type HourlyPoint struct {
	Label      string `json:"time"`
	Hour       int    `json:"hour"`
	Traffic    int    `json:"traffic"`
	IsForecast bool   `json:"is_forecast"`
}

// PeakHours picks the three busiest slots. The busiest is the peak maximum,
// the second the peak end and the third the peak start. Ties keep input order.
func PeakHours(points []HourlyPoint, now time.Time) (models.PeakHours, error) {
	if len(points) < 3 {
		return models.PeakHours{}, ErrNotEnoughPoints
	}

	sorted := make([]HourlyPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Traffic > sorted[j].Traffic
	})

	current := now.Hour()
	point := func(p HourlyPoint) models.PeakPoint {
		return models.PeakPoint{Time: p.Label, Status: peakStatus(p.Hour, current, p.IsForecast)}
	}

	return models.PeakHours{
		PeakStart: point(sorted[2]),
		PeakMax:   point(sorted[0]),
		PeakEnd:   point(sorted[1]),
	}, nil
}

func peakStatus(hour, current int, forecast bool) string {
	diff := ((hour-current)%24 + 24) % 24
	switch {
	case diff == 0 && !forecast:
		return "happening now"
	case diff == 1:
		return "in 1 hour"
	}
	status := fmt.Sprintf("in %d hours", diff)
	if forecast {
		status += " (forecast)"
	}
	return status
}

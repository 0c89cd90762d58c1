// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package aggregate

import "fmt"

// Traffic category labels.
const (
	TrafficHigh   = "High"
	TrafficMedium = "Medium"
	TrafficLow    = "Low"
)

// TrafficCategory bands a people count: above 50 is High, above 20 Medium.
func TrafficCategory(count int) string {
	switch {
	case count > 50:
		return TrafficHigh
	case count > 20:
		return TrafficMedium
	default:
		return TrafficLow
	}
}

// HourMultiplier is the relative busyness of a local hour (0-23).
// Rush hours peak at 2.0, the small hours drop to 0.3.
func HourMultiplier(hour int) float64 {
	switch {
	case hour >= 5 && hour <= 7:
		return 1.2
	case hour >= 8 && hour <= 10:
		return 1.8
	case hour >= 11 && hour <= 12:
		return 1.4
	case hour >= 13 && hour <= 14:
		return 1.9
	case hour >= 15 && hour <= 16:
		return 1.3
	case hour >= 17 && hour <= 19:
		return 2.0
	case hour >= 20 && hour <= 21:
		return 1.5
	case hour >= 22 && hour <= 23:
		return 0.8
	case hour >= 0 && hour <= 4:
		return 0.3
	default:
		return 1.0
	}
}

// Jitter scales v by a factor drawn from [0.85, 1.15) using u in [0, 1).
func Jitter(v, u float64) float64 {
	return v * (0.85 + u*0.3)
}

// HourLabel renders a 24h hour as a 12h dashboard label ("12 AM", "3 PM").
func HourLabel(hour int) string {
	hour = ((hour % 24) + 24) % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d %s", h12, suffix)
}

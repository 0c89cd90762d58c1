// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package aggregate

import "math"

// forecastWindow is how many trailing values feed the trend.
const forecastWindow = 4

// Forecast extends values by n steps. Each step is the recent mean plus a
// decaying trend term and noise whose amplitude grows with the horizon.
// rnd returns values in [0, 1); results are never negative.
func Forecast(values []float64, n int, rnd func() float64) []int {
	out := make([]int, n)
	if len(values) == 0 || n <= 0 {
		return out
	}

	recent := values
	if len(recent) > forecastWindow {
		recent = recent[len(recent)-forecastWindow:]
	}
	var sum float64
	for _, v := range recent {
		sum += v
	}
	avg := sum / float64(len(recent))
	trend := (recent[len(recent)-1] - recent[0]) / float64(len(recent))

	for i := range out {
		step := float64(i)
		effect := trend * (1 - step*0.2)
		noise := avg * (0.05 + step*0.02) * (rnd() - 0.5)
		out[i] = int(math.Max(0, math.Round(avg+effect*(step+1)+noise)))
	}
	return out
}

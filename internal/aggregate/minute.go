// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/foottraffic/internal/models"
)

type minuteKey struct {
	hour, minute int
}

type minuteSum struct {
	people, dwell float64
	n             int
}

// ByMinute groups samples by local HH:MM and returns the per-minute means,
// sorted by hour then minute. An empty series yields an empty, non-nil slice.
func ByMinute(series []models.StatSample) []models.MinuteAggregate {
	buckets := make(map[minuteKey]*minuteSum)
	for i := range series {
		ts := series[i].Timestamp.Local()
		k := minuteKey{hour: ts.Hour(), minute: ts.Minute()}
		b, ok := buckets[k]
		if !ok {
			b = &minuteSum{}
			buckets[k] = b
		}
		b.people += float64(series[i].PeopleCount)
		b.dwell += series[i].AvgDwellTime
		b.n++
	}

	out := make([]models.MinuteAggregate, 0, len(buckets))
	for k, b := range buckets {
		out = append(out, models.MinuteAggregate{
			Time:         fmt.Sprintf("%02d:%02d", k.hour, k.minute),
			Hour:         k.hour,
			Minute:       k.minute,
			PeopleCount:  round1(b.people / float64(b.n)),
			AvgDwellTime: round1(b.dwell / float64(b.n)),
			DataPoints:   b.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out
}

// Since returns the samples at or after cutoff. A zero cutoff returns the
// whole series. The input is not modified.
func Since(series []models.StatSample, cutoff time.Time) []models.StatSample {
	if cutoff.IsZero() {
		return series
	}
	out := make([]models.StatSample, 0, len(series))
	for i := range series {
		if !series[i].Timestamp.Before(cutoff) {
			out = append(out, series[i])
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

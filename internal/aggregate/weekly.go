// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package aggregate

import (
	"math"
	"time"

	"github.com/tomtom215/foottraffic/internal/models"
)

// Weekly projects the current combined traffic onto a week. Weekends project
// a busier weekday and a quieter weekend, weekdays the reverse.
func Weekly(total int, day time.Weekday) models.WeeklySummary {
	weekend := day == time.Saturday || day == time.Sunday

	mondayF, weekdayF, weekendF := 0.9, 0.9, 1.3
	if day == time.Monday {
		mondayF = 1
	}
	if weekend {
		weekdayF, weekendF = 1.2, 0.8
	}

	t := float64(total)
	s := models.WeeklySummary{
		Monday:  int(math.Floor(t * mondayF)),
		Weekday: int(math.Floor(t * weekdayF)),
		Weekend: int(math.Floor(t * weekendF)),
	}
	s.Total = s.Monday + s.Weekday*4 + s.Weekend*2
	return s
}

// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/models"
)

// Topics.
const (
	TopicStatsIngested = "foottraffic.stats.ingested"
	TopicMapUpdated    = "foottraffic.map.updated"
)

// Metadata keys.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataLocation      = "location"
	MetadataSource        = "source"
)

// StatsIngested announces an accepted sample.
type StatsIngested struct {
	Sample     models.StatSample `json:"sample"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// MapUpdated announces a new map snapshot.
type MapUpdated struct {
	Snapshot   models.MapSnapshot `json:"snapshot"`
	Total      int                `json:"total"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Decode unmarshals a payload published on one of the topics.
func Decode[T StatsIngested | MapUpdated](payload []byte) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decode event: %w", err)
	}
	return v, nil
}

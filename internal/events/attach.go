// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package events

import (
	"context"
	"time"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/models"
)

// Source is the part of the store Attach needs.
type Source interface {
	SubscribeStats(fn func(models.StatSample)) func()
	SubscribeMap(fn func(models.MapSnapshot)) func()
}

// Publisher is the part of the bus Attach needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any, meta map[string]string) error
}

// Attach publishes every stats sample and map snapshot the source emits.
// The returned function detaches both subscriptions.
func Attach(src Source, pub Publisher) func() {
	log := logging.Component("events")

	unsubStats := src.SubscribeStats(func(s models.StatSample) {
		ev := StatsIngested{Sample: s, OccurredAt: time.Now().UTC()}
		meta := map[string]string{MetadataLocation: s.Location, MetadataSource: "poller"}
		if err := pub.Publish(context.Background(), TopicStatsIngested, ev, meta); err != nil {
			log.Warn().Err(err).Str("topic", TopicStatsIngested).Msg("Event publish failed")
		}
	})
	unsubMap := src.SubscribeMap(func(m models.MapSnapshot) {
		ev := MapUpdated{Snapshot: m, Total: m.Total(), OccurredAt: time.Now().UTC()}
		if err := pub.Publish(context.Background(), TopicMapUpdated, ev, map[string]string{MetadataSource: "poller"}); err != nil {
			log.Warn().Err(err).Str("topic", TopicMapUpdated).Msg("Event publish failed")
		}
	})

	return func() {
		unsubStats()
		unsubMap()
	}
}

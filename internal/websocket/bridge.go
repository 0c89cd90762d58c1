// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/foottraffic/internal/events"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/models"
)

// StoreSource is the part of the store the hub reads.
type StoreSource interface {
	LatestStats() (models.StatSample, bool)
	MapSnapshot() (models.MapSnapshot, bool)
	TotalCount() int
	SubscribeStats(fn func(models.StatSample)) func()
	SubscribeMap(fn func(models.MapSnapshot)) func()
	SubscribeTotal(fn func(int)) func()
	SubscribeAggregates(fn func(models.LocationAggregates)) func()
}

// Welcome builds the snapshot a new client receives before live updates.
func Welcome(src StoreSource) func() []Message {
	return func() []Message {
		var out []Message
		if s, ok := src.LatestStats(); ok {
			out = append(out, Message{Type: MessageTypeStatsUpdate, Data: s})
		}
		if m, ok := src.MapSnapshot(); ok {
			out = append(out, Message{Type: MessageTypeMapUpdate, Data: m})
		}
		out = append(out, Message{Type: MessageTypeTotalUpdate, Data: TotalUpdateData{Total: src.TotalCount()}})
		return out
	}
}

// AttachStore forwards store updates to the hub. Aggregates and totals are
// always forwarded; stats and map snapshots only when withLive is set,
// which is the case when no event bus carries them. The returned function
// detaches.
func AttachStore(h *Hub, src StoreSource, withLive bool) func() {
	unsubs := []func(){
		src.SubscribeAggregates(h.BroadcastAggregates),
		src.SubscribeTotal(h.BroadcastTotal),
	}
	if withLive {
		unsubs = append(unsubs,
			src.SubscribeStats(h.BroadcastStats),
			src.SubscribeMap(h.BroadcastMap),
		)
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// EventSource is the part of the event bus the subscriber needs.
type EventSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// BusSubscriber bridges bus events to WebSocket broadcasts.
type BusSubscriber struct {
	hub    *Hub
	source EventSource

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewBusSubscriber creates a bus to WebSocket bridge.
func NewBusSubscriber(hub *Hub, source EventSource) *BusSubscriber {
	return &BusSubscriber{hub: hub, source: source}
}

// Start subscribes to the stats and map topics. Calling it while running
// is a no-op.
func (s *BusSubscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	stats, err := s.source.Subscribe(subCtx, events.TopicStatsIngested)
	if err != nil {
		cancel()
		return err
	}
	maps, err := s.source.Subscribe(subCtx, events.TopicMapUpdated)
	if err != nil {
		cancel()
		return err
	}

	s.running = true
	s.cancel = cancel
	s.wg.Add(2)
	go s.consume(subCtx, stats, s.handleStats)
	go s.consume(subCtx, maps, s.handleMap)

	logging.Info().Msg("Event bus to WebSocket subscriber started")
	return nil
}

// Stop cancels the subscriptions and waits for the consumers.
func (s *BusSubscriber) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	logging.Info().Msg("Event bus to WebSocket subscriber stopped")
}

// Serve implements suture.Service.
func (s *BusSubscriber) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

func (s *BusSubscriber) String() string { return "websocket-bus-subscriber" }

func (s *BusSubscriber) consume(ctx context.Context, msgs <-chan *message.Message, handle func([]byte) error) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := handle(msg.Payload); err != nil {
				logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable event")
			}
			// Undecodable events are acked too; redelivery cannot fix them.
			msg.Ack()
		}
	}
}

var errEmptyEvent = errors.New("empty event payload")

func (s *BusSubscriber) handleStats(payload []byte) error {
	if len(payload) == 0 {
		return errEmptyEvent
	}
	ev, err := events.Decode[events.StatsIngested](payload)
	if err != nil {
		return err
	}
	s.hub.BroadcastStats(ev.Sample)
	return nil
}

func (s *BusSubscriber) handleMap(payload []byte) error {
	if len(payload) == 0 {
		return errEmptyEvent
	}
	ev, err := events.Decode[events.MapUpdated](payload)
	if err != nil {
		return err
	}
	s.hub.BroadcastMap(ev.Snapshot)
	return nil
}

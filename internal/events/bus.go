// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/foottraffic/internal/config"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
)

// Transports.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// ErrBusClosed is returned by Publish and Subscribe after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Config selects and tunes the transport.
type Config struct {
	Transport string
	NATSURL   string

	// Buffer is the gochannel per-subscriber buffer. Default 64.
	Buffer int

	// Logger defaults to a zerolog adapter for the "events" component.
	Logger watermill.LoggerAdapter
}

// FromAppConfig maps the events section. clientURL overrides NATSURL when
// an embedded server is running.
func FromAppConfig(cfg config.EventsConfig, clientURL string) Config {
	out := Config{Transport: cfg.Transport, NATSURL: cfg.NATSURL}
	if clientURL != "" {
		out.Transport = TransportNATS
		out.NATSURL = clientURL
	}
	return out
}

// Bus publishes and subscribes to FootTraffic topics.
type Bus struct {
	transport  string
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewBus connects the configured transport.
func NewBus(cfg Config) (*Bus, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewWatermillAdapter(logging.Component("events"))
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportGoChannel
	}

	b := &Bus{transport: cfg.Transport, logger: cfg.Logger}
	switch cfg.Transport {
	case TransportGoChannel:
		if cfg.Buffer <= 0 {
			cfg.Buffer = 64
		}
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: int64(cfg.Buffer)}, cfg.Logger)
		b.publisher, b.subscriber = ch, ch
	case TransportNATS:
		pub, sub, err := newNATS(cfg.NATSURL, cfg.Logger)
		if err != nil {
			return nil, err
		}
		b.publisher, b.subscriber = pub, sub
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
	}
	return b, nil
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("foottraffic"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newNATS(url string, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	if url == "" {
		url = natsgo.DefaultURL
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   5 * time.Second,
		CloseTimeout:     5 * time.Second,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return pub, sub, nil
}

// Transport names the active transport.
func (b *Bus) Transport() string { return b.transport }

// Publish encodes payload as JSON and publishes it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any, meta map[string]string) (err error) {
	defer func() { metrics.RecordEventPublish(topic, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	for k, v := range meta {
		msg.Metadata.Set(k, v)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns messages on topic until ctx is cancelled or the bus is
// closed. Consumers must Ack each message.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close shuts the transport down. Safe to call twice.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	// The gochannel transport is both publisher and subscriber.
	if any(b.subscriber) != any(b.publisher) {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package relay

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/desertthunder/spotlake/internal/shared"
	natsgo "github.com/nats-io/nats.go"
)

const (
	maxReconnects = 10
	reconnectWait = 2 * time.Second
	closeTimeout  = 10 * time.Second
)

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(maxReconnects),
		natsgo.ReconnectWait(reconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// NewNATSSubscriber connects a core NATS subscriber for cfg.
//
// Subscribers in the same queue group share notifications, so each one starts a single run
// however many relays are listening.
func NewNATSSubscriber(cfg shared.EventsConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("%w: events.nats_url", shared.ErrMissingConfig)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     closeTimeout,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}
	return sub, nil
}

// NewNATSPublisher connects a core NATS publisher for cfg.
func NewNATSPublisher(cfg shared.EventsConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("%w: events.nats_url", shared.ErrMissingConfig)
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return pub, nil
}

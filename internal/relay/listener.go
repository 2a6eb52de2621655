package relay

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/metrics"
)

// Listener feeds messages from a watermill subscriber into a [Relay].
type Listener struct {
	subscriber message.Subscriber
	topic      string
	relay      *Relay
	transport  string
	logger     *log.Logger
}

// NewListener creates a Listener on topic. transport labels notification metrics (e.g. "nats").
func NewListener(subscriber message.Subscriber, topic, transport string, relay *Relay, logger *log.Logger) *Listener {
	return &Listener{
		subscriber: subscriber,
		topic:      topic,
		relay:      relay,
		transport:  transport,
		logger:     logger,
	}
}

// Run processes messages until ctx is cancelled or the subscription closes.
//
// A message is acked once its job run has started and nacked otherwise.
func (l *Listener) Run(ctx context.Context) error {
	messages, err := l.subscriber.Subscribe(ctx, l.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", l.topic, err)
	}

	l.logger.Info("listening for notifications", "topic", l.topic, "transport", l.transport)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg *message.Message) {
	_, err := l.relay.Notify(ctx, msg.Payload)
	metrics.RecordNotification(l.transport, err)
	if err != nil {
		l.logger.Warn("notification not handled", "message_uuid", msg.UUID, "error", err)
		msg.Nack()
		return
	}
	msg.Ack()
}

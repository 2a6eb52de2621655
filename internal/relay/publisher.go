package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Publisher sends [ObjectCreated] notifications for one bucket.
type Publisher struct {
	publisher message.Publisher
	topic     string
	bucket    string
	now       func() time.Time
}

// NewPublisher creates a Publisher that sends to topic.
func NewPublisher(publisher message.Publisher, topic, bucket string) *Publisher {
	return &Publisher{publisher: publisher, topic: topic, bucket: bucket, now: time.Now}
}

// PublishObjectCreated announces that key was written with size bytes.
func (p *Publisher) PublishObjectCreated(ctx context.Context, key string, size int64) error {
	data, err := json.Marshal(ObjectCreated{
		Bucket:    p.bucket,
		Key:       key,
		Size:      size,
		EventTime: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("bucket", p.bucket)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish notification for %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

package events

import (
	"context"

	"github.com/shareit-platform/service-booking/internal/pkg/kafka"
)

// Source identifies this service in published CloudEvents.
const Source = "shareit-booking"

type eventWriter interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// KafkaPublisher wraps domain events in CloudEvents and writes them to a
// single topic.
type KafkaPublisher struct {
	writer eventWriter
	topic  string
}

// NewKafkaPublisher creates a publisher writing to topic through producer.
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: producer, topic: topic}
}

// Publish implements application.EventPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, data any) error {
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return err
	}
	ce.Subject = key
	return p.writer.PublishEvent(ctx, p.topic, key, ce)
}

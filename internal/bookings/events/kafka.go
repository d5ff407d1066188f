package events

import (
	"context"

	"spacebook/pkg/kafka"
	"spacebook/pkg/middleware"
)

const source = "bookings"

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys events by resource id so all changes to one resource land on
// the same partition in commit order. The request id, when present, travels
// as the correlation id.
func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

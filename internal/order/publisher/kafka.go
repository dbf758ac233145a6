package publisher

import (
	"context"
	"encoding/json"

	"github.com/fekuna/storefront-service/internal/order"
)

// Producer is the part of broker.KafkaProducer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(p Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

// PublishOrderEvent keys the message by order ID so every event of one order
// lands on the same partition.
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event order.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, event.OrderID, payload, map[string]string{
		"event-type": event.Type,
	})
}

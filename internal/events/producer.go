package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topic names for storefront events.
const (
	TopicUsers    = "storefront.users"
	TopicCarts    = "storefront.carts"
	TopicOrders   = "storefront.orders"
	TopicProducts = "storefront.products"
)

// Producer publishes domain events to kafka. A nil Producer is valid and
// drops every publish, so callers never need to branch on whether event
// delivery is configured.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer returns a Producer for the given brokers, or nil when no
// brokers are configured.
func NewProducer(brokers []string) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

// Publish serializes the event as JSON and writes it keyed by key so all
// events for one entity land in the same partition.
func (p *Producer) Publish(ctx context.Context, topic, key string, event map[string]any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// Package events publishes sync lifecycle events to Kafka for downstream
// consumers (notifications, analytics). The publisher is optional; the server
// runs fine without brokers configured.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const Topic = "connection_synced"

// ConnectionSynced is emitted once per connection sync that applied at least
// one change to the ledger.
type ConnectionSynced struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	ItemID     string    `json:"item_id"`
	Applied    int       `json:"applied"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Value: data})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

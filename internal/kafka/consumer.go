package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume delivers decoded reservation events to handler until the context is
// canceled or the reader fails. Payloads that do not decode are logged and
// skipped; a poison message must not wedge the group.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ReservationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			log.Printf("decode reservation event: %v", err)
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(value []byte) (ReservationEvent, error) {
	var event ReservationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return ReservationEvent{}, err
	}
	return event, nil
}

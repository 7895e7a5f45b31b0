package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReservationEvent describes a reservation lifecycle transition for
// downstream consumers (notifications, auditing).
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	Username      string    `json:"username"`
	FlightIDs     []int64   `json:"flight_ids,omitempty"`
	Balance       int       `json:"balance,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const (
	EventReservationBooked = "reservation_booked"
	EventReservationPaid   = "reservation_paid"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

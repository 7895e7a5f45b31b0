package email

import (
	"context"
	"fmt"

	"github.com/aarondkim/flights/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	switch event.Type {
	case kafka.EventReservationPaid:
		fmt.Printf("send email to %s: reservation %d paid, remaining balance %d\n", event.Username, event.ReservationID, event.Balance)
	default:
		fmt.Printf("send email to %s: reservation %d %s\n", event.Username, event.ReservationID, event.Type)
	}
	return nil
}

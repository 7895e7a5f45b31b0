// Package trips implements the session-oriented reservation engine: login,
// itinerary search, booking, payment and reservation listing, each business
// operation demarcated as one store transaction.
package trips

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aarondkim/flights/internal/cache"
	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/kafka"
	"github.com/aarondkim/flights/internal/repository"
	"github.com/aarondkim/flights/internal/store"
)

// TxRunner demarcates a function as one transaction. Write commits, Read
// always rolls back; both re-run the function from scratch on a retryable
// write conflict.
type TxRunner interface {
	Write(ctx context.Context, fn func(ctx context.Context, q store.Queryer) error) error
	Read(ctx context.Context, fn func(ctx context.Context, q store.Queryer) error) error
}

type Cache interface {
	GetSearch(ctx context.Context, key cache.SearchKey) ([]domain.Itinerary, error)
	SetSearch(ctx context.Context, key cache.SearchKey, itineraries []domain.Itinerary) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	store        TxRunner
	users        repository.UserRepository
	flights      repository.FlightRepository
	reservations repository.ReservationRepository
	cache        Cache
	producer     Producer
	eventsTopic  string
	notifyTopic  string
}

type ServiceOption func(*Service)

func WithCache(c Cache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

func WithProducer(p Producer, eventsTopic string) ServiceOption {
	return func(s *Service) {
		s.producer = p
		s.eventsTopic = eventsTopic
	}
}

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notifyTopic = topic
	}
}

func NewService(
	txs TxRunner,
	users repository.UserRepository,
	flights repository.FlightRepository,
	reservations repository.ReservationRepository,
	opts ...ServiceOption,
) *Service {
	svc := &Service{
		store:        txs,
		users:        users,
		flights:      flights,
		reservations: reservations,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// publish is best effort: a lost event never fails a committed operation.
func (s *Service) publish(ctx context.Context, event kafka.ReservationEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event.OccurredAt = time.Now()
	key := strconv.FormatInt(event.ReservationID, 10)
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		log.Printf("publish %s event for reservation %d: %v", event.Type, event.ReservationID, err)
		return
	}
	if s.notifyTopic != "" {
		if err := s.producer.Publish(ctx, s.notifyTopic, key, event); err != nil {
			log.Printf("publish %s notification for reservation %d: %v", event.Type, event.ReservationID, err)
		}
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aarondkim/flights/config"
	"github.com/aarondkim/flights/internal/bootstrap"
	"github.com/aarondkim/flights/internal/cache"
	"github.com/aarondkim/flights/internal/kafka"
	"github.com/aarondkim/flights/internal/repository"
	"github.com/aarondkim/flights/internal/service/trips"
	"github.com/aarondkim/flights/internal/session"
	"github.com/aarondkim/flights/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	txs := store.New(pool, cfg.Booking.MaxTxAttempts, time.Duration(cfg.Booking.RetryBackoffMS)*time.Millisecond)
	searchCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSec)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	svc := trips.NewService(
		txs,
		repository.NewUserRepository(),
		repository.NewFlightRepository(),
		repository.NewReservationRepository(),
		trips.WithCache(searchCache),
		trips.WithProducer(producer, cfg.Kafka.ReservationsTopic),
		trips.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	registry := session.NewRegistry(svc)

	if err := bootstrap.Run(ctx, cfg, registry); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

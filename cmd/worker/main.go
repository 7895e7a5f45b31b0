package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aarondkim/flights/config"
	"github.com/aarondkim/flights/internal/email"
	"github.com/aarondkim/flights/internal/kafka"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	if err := consumer.Consume(ctx, sender.Send); err != nil && ctx.Err() == nil {
		log.Printf("consumer stopped: %v", err)
	}
}

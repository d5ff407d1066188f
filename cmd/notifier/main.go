package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"spacebook/internal/notifier"
	"spacebook/pkg/config"
	"spacebook/pkg/kafka"
	kafka_config "spacebook/pkg/kafka/config"
	kafkamiddleware "spacebook/pkg/kafka/middleware"

	"github.com/joho/godotenv"
)

const ServiceName = "notifier"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	n := notifier.New(notifier.NewLogSender(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log,
		cfg.BookingEventsTopic,
		cfg.NotifierGroupID,
		cfg.BookingEventsDLQTopic,
		n.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Notifier consuming booking events",
		"topic", cfg.BookingEventsTopic,
		"group_id", cfg.NotifierGroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	cfg.Log.Info("Shutting down notifier", "metrics", metrics)
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sace/internal/config"
	"sace/internal/logging"
	"sace/internal/notify"
	"sace/pkg/kafka"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewNotifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := zap.NewProduction()
	if cfg.Debug {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(fmt.Sprintf("cannot create logger: %v", err))
	}
	logger := logging.New(zapLogger)
	defer func() { _ = logger.Sync() }()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaGroupID,
		Topics:  []string{cfg.KafkaReviewTopic},
	}, logger)
	if err != nil {
		logger.Fatal(ctx, "cannot create kafka consumer", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	logger.Info(ctx, "Starting review notifier",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaReviewTopic),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	notifier := notify.New(notify.NewLogSink(logger), logger)
	if err := consumer.Run(ctx, notifier.Handle); err != nil {
		logger.Error(ctx, "consumer stopped", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sace/internal/config"
	"sace/internal/devserver"
	"sace/internal/logging"
	"sace/internal/model"
	"sace/pkg/kafka"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create config: %v\n", err)
		os.Exit(1)
	}

	var zapLogger *zap.Logger
	if cfg.Debug {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	logger := logging.New(zapLogger)
	defer func() { _ = logger.Sync() }()

	repo, err := devserver.OpenRepository(cfg.DBPath)
	if err != nil {
		logger.Fatal(ctx, "cannot open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer func() { _ = repo.Close() }()

	if created, err := devserver.SeedInstructor(repo, cfg.SeedEmail, cfg.SeedPassword); err != nil {
		logger.Fatal(ctx, "cannot seed instructor", zap.Error(err))
	} else if created {
		logger.Info(ctx, "seeded instructor account", zap.String("email", cfg.SeedEmail))
	}

	var publisher devserver.Publisher = devserver.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers})
		if err != nil {
			logger.Fatal(ctx, "cannot create kafka producer", zap.Error(err))
		}
		defer func() { _ = producer.Close() }()
		publisher = devserver.NewKafkaPublisher(producer, cfg.KafkaReviewTopic)
		logger.Info(ctx, "publishing review events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaReviewTopic))
	}

	server, err := devserver.New(devserver.Deps{
		Repo:      repo,
		Tokens:    devserver.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Google:    devserver.NewGoogleTokenDecoder(cfg.GoogleClientID),
		Publisher: publisher,
		Metrics:   devserver.NewMetrics(),
		Logger:    logger,
	}, devserver.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		SignupRole:         model.Role(cfg.SignupRole),
	})
	if err != nil {
		logger.Fatal(ctx, "cannot create server", zap.Error(err))
	}

	port := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info(ctx, "Starting server", zap.String("port", port))

	srv := &http.Server{
		Addr:              port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", zap.Error(err))
	}
	logger.Info(ctx, "Server stopped")
}

package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sace/internal/logging"
)

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message. A failed message is logged and committed
// so that it cannot block the partition.
type Handler func(ctx context.Context, msg kafka.Message) error

type Consumer struct {
	reader MessageReader
	logger *logging.Logger
}

func NewConsumer(cfg ConsumerConfig, logger *logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("kafka: at least one topic is required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
	})
	return NewConsumerWithReader(reader, logger), nil
}

func NewConsumerWithReader(r MessageReader, logger *logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Consumer{reader: r, logger: logger}
}

// Run fetches messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info(ctx, "consumer shutting down")
				return nil
			}
			c.logger.Error(ctx, "failed to fetch message", zap.Error(err))
			continue
		}

		if err := handle(ctx, msg); err != nil {
			c.logger.Warn(ctx, "failed to handle message",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error(ctx, "failed to commit message", zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

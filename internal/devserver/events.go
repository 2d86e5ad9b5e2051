package devserver

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"sace/internal/ctxdata"
	"sace/internal/logging"
	"sace/internal/model"
)

// ReviewEvent is emitted whenever an instructor changes a submission status.
type ReviewEvent struct {
	SubmissionID int64                  `json:"submissionId"`
	OwnerEmail   string                 `json:"ownerEmail"`
	Reviewer     string                 `json:"reviewer"`
	From         model.SubmissionStatus `json:"from"`
	To           model.SubmissionStatus `json:"to"`
	OccurredAt   time.Time              `json:"occurredAt"`
}

type Publisher interface {
	PublishReview(ctx context.Context, event ReviewEvent) error
}

// MessageSender is satisfied by *kafka.Producer.
type MessageSender interface {
	Send(ctx context.Context, topic, key string, message any, headers map[string]string) error
}

type KafkaPublisher struct {
	sender MessageSender
	topic  string
}

func NewKafkaPublisher(sender MessageSender, topic string) *KafkaPublisher {
	return &KafkaPublisher{sender: sender, topic: topic}
}

func (p *KafkaPublisher) PublishReview(ctx context.Context, event ReviewEvent) error {
	headers := map[string]string{"event": "submission.reviewed"}
	if traceID, ok := ctxdata.GetTraceID(ctx); ok {
		headers["X-Trace-Id"] = traceID
	}
	return p.sender.Send(ctx, p.topic, strconv.FormatInt(event.SubmissionID, 10), event, headers)
}

// LogPublisher writes review events to the log. Used when no broker is set.
type LogPublisher struct {
	logger *logging.Logger
}

func NewLogPublisher(logger *logging.Logger) *LogPublisher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishReview(ctx context.Context, event ReviewEvent) error {
	p.logger.Info(ctx, "submission reviewed",
		zap.Int64("submission_id", event.SubmissionID),
		zap.String("owner", event.OwnerEmail),
		zap.String("reviewer", event.Reviewer),
		zap.String("from", event.From.String()),
		zap.String("to", event.To.String()),
	)
	return nil
}

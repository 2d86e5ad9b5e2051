// Package notify turns review events into messages for the submission owner.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sace/internal/ctxdata"
	"sace/internal/devserver"
	"sace/internal/logging"
	"sace/internal/model"
)

// Notification is what the owner of a reviewed submission is told.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

type Notifier struct {
	sink   Sink
	logger *logging.Logger
}

func New(sink Sink, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Notifier{sink: sink, logger: logger}
}

// Handle decodes one review event and delivers the matching notification.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	for _, h := range msg.Headers {
		if h.Key == "X-Trace-Id" {
			ctx = ctxdata.WithTraceID(ctx, string(h.Value))
		}
	}

	var event devserver.ReviewEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode review event: %w", err)
	}
	if event.OwnerEmail == "" {
		n.logger.Debug(ctx, "review event without owner", zap.Int64("submission_id", event.SubmissionID))
		return nil
	}
	return n.sink.Deliver(ctx, Compose(event))
}

func Compose(e devserver.ReviewEvent) Notification {
	var subject, body string
	switch e.To.Normalized() {
	case model.SubmissionStatusApproved:
		subject = fmt.Sprintf("Submission #%d approved", e.SubmissionID)
		body = "Your SRS document was approved."
	case model.SubmissionStatusRejected:
		subject = fmt.Sprintf("Submission #%d declined", e.SubmissionID)
		body = "Your SRS document was declined. Upload a new version when it is ready."
	default:
		subject = fmt.Sprintf("Submission #%d is %s", e.SubmissionID, e.To.Detail())
		body = "An instructor has started reviewing your SRS document."
	}
	if e.Reviewer != "" {
		body += " Reviewer: " + e.Reviewer + "."
	}
	return Notification{Recipient: e.OwnerEmail, Subject: subject, Body: body}
}

// LogSink writes notifications to the log instead of sending them.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, n Notification) error {
	s.logger.Info(ctx, "notification",
		zap.String("to", n.Recipient),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
	)
	return nil
}

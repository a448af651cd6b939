package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"stockflow/internal/pkg/logger"
)

// HandlerFunc processes one message. A returned error sends the message to the failure handler.
type HandlerFunc func(ctx context.Context, msg kafka.Message) error

// Consumer is a fetch/handle/commit loop over one reader.
// Offsets are committed after handling, so delivery is at-least-once.
type Consumer struct {
	reader         MessageReader
	handle         HandlerFunc
	failureHandler *FailureHandler
	retryDelay     time.Duration
}

func NewConsumer(reader MessageReader, handle HandlerFunc, failureHandler *FailureHandler) *Consumer {
	return &Consumer{
		reader:         reader,
		handle:         handle,
		failureHandler: failureHandler,
		retryDelay:     time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	topic := c.reader.Config().Topic
	logger.Ctx(ctx).Info().Str("topic", topic).Msg("✅ Kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Ctx(ctx).Info().Str("topic", topic).Msg("🛑 Kafka consumer shutting down")
				return nil
			}
			logger.Ctx(ctx).Error().Err(err).Str("topic", topic).Msg("could not fetch message, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		msgCtx := ExtractTraceContext(ctx, msg.Headers)
		if err := c.handle(msgCtx, msg); err != nil {
			if c.failureHandler != nil {
				c.failureHandler.Handle(msgCtx, msg, err)
			} else {
				logger.Ctx(msgCtx).Error().Err(err).
					Str("topic", msg.Topic).
					Int64("offset", msg.Offset).
					Msg("message handling failed, skipping")
			}
		}

		// Handled or dead-lettered either way.
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("topic", topic).Msg("failed to commit message")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

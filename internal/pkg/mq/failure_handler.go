package mq

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
)

// Dead-letter headers describing where a message came from and why it failed.
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderErrorType         = "x-error-type"
	HeaderErrorMessage      = "x-error-message"
)

// FailureHandler forwards messages that could not be processed to a dead-letter topic.
type FailureHandler struct {
	writer   MessageWriter
	dltTopic string
}

func NewFailureHandler(writer MessageWriter, dltTopic string) *FailureHandler {
	return &FailureHandler{writer: writer, dltTopic: dltTopic}
}

// Handle never fails: when the dead-letter write itself fails the message is logged and dropped.
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, cause error) {
	headers := append([]kafka.Header{}, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderErrorType, Value: []byte(fmt.Sprintf("%T", cause))},
		kafka.Header{Key: HeaderErrorMessage, Value: []byte(cause.Error())},
	)

	dead := kafka.Message{
		Topic:   h.dltTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := h.writer.WriteMessages(ctx, dead); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("original_topic", msg.Topic).
			Int64("original_offset", msg.Offset).
			Str("value", string(msg.Value)).
			Msg("🚨 CRITICAL: failed to forward message to dead-letter topic, message dropped")
		return
	}

	metrics.DeadLetters.WithLabelValues(msg.Topic).Inc()
	logger.Ctx(ctx).Warn().Err(cause).
		Str("original_topic", msg.Topic).
		Int64("original_offset", msg.Offset).
		Str("dlt_topic", h.dltTopic).
		Msg("Message moved to dead-letter topic")
}

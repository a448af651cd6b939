package mq

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

// fakeReader serves a fixed batch, then blocks until ctx is cancelled.
type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{pending: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	if len(r.pending) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Config() kafka.ReaderConfig { return kafka.ReaderConfig{Topic: "new-inventory"} }
func (r *fakeReader) Close() error               { return nil }

func TestKafkaHeaderCarrier(t *testing.T) {
	carrier := KafkaHeaderCarrier{}
	carrier.Set("a", "1")
	carrier.Set("b", "2")
	carrier.Set("a", "3")

	assert.Equal(t, "3", carrier.Get("a"))
	assert.Equal(t, "2", carrier.Get("b"))
	assert.Equal(t, "", carrier.Get("missing"))
	assert.ElementsMatch(t, []string{"a", "b"}, carrier.Keys())
}

func TestTraceContextRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "produce")
	defer span.End()

	headers := InjectTraceContext(ctx, nil)
	extracted := ExtractTraceContext(context.Background(), headers)

	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}

func TestProduceMessage(t *testing.T) {
	w := &recordingWriter{}

	err := ProduceMessage(context.Background(), w, "inventory-updated", []byte("1"), []byte(`{"productId":1}`))

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "inventory-updated", w.msgs[0].Topic)
	assert.Equal(t, []byte("1"), w.msgs[0].Key)
	carrier := KafkaHeaderCarrier(w.msgs[0].Headers)
	assert.NotEmpty(t, carrier.Get(HeaderMessageID))
}

func TestProduceMessageWrapsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}

	err := ProduceMessage(context.Background(), w, "new-category", []byte("7"), []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "new-category")
	assert.Contains(t, err.Error(), "broker down")
}

func TestConsumerDeadLettersFailedMessagesAndCommitsAll(t *testing.T) {
	good := kafka.Message{Topic: "new-inventory", Offset: 1, Value: []byte("ok")}
	bad := kafka.Message{Topic: "new-inventory", Partition: 2, Offset: 2, Value: []byte("poison")}
	reader := newFakeReader(good, bad)
	dlt := &recordingWriter{}

	var handled []string
	consumer := NewConsumer(reader, func(_ context.Context, msg kafka.Message) error {
		handled = append(handled, string(msg.Value))
		if string(msg.Value) == "poison" {
			return errors.New("cannot decode")
		}
		return nil
	}, NewFailureHandler(dlt, "stockflow-dlt"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	<-reader.drained
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"ok", "poison"}, handled)
	assert.Len(t, reader.committed, 2)
	require.Len(t, dlt.msgs, 1)

	dead := dlt.msgs[0]
	assert.Equal(t, "stockflow-dlt", dead.Topic)
	carrier := KafkaHeaderCarrier(dead.Headers)
	assert.Equal(t, "new-inventory", carrier.Get(HeaderOriginalTopic))
	assert.Equal(t, "2", carrier.Get(HeaderOriginalPartition))
	assert.Equal(t, "2", carrier.Get(HeaderOriginalOffset))
	assert.Equal(t, "cannot decode", carrier.Get(HeaderErrorMessage))
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/kirinyoku/tix-inventory/internal/domain"
	kafkax "github.com/kirinyoku/tix-inventory/internal/kafka"
	"github.com/kirinyoku/tix-inventory/internal/transport/command"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// fakeConsumer hands out queued messages, then blocks until ctx is done.
type fakeConsumer struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
}

func newFakeConsumer(msgs ...kafka.Message) *fakeConsumer {
	return &fakeConsumer{queue: msgs, drained: make(chan struct{})}
}

func (c *fakeConsumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	c.mu.Lock()
	if len(c.queue) > 0 {
		m := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		return m, nil
	}
	c.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (c *fakeConsumer) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.committed = append(c.committed, msgs...)
	if len(c.queue) == 0 {
		select {
		case <-c.drained:
		default:
			close(c.drained)
		}
	}
	return nil
}

func (c *fakeConsumer) Close() error { return nil }

type fakeProducer struct {
	mu      sync.Mutex
	written []kafka.Message
	fail    error
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail != nil {
		return p.fail
	}
	p.written = append(p.written, msgs...)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, req command.Request) command.Reply {
	if req.Pattern != command.PatternGetByTicketType {
		return command.Reply{ID: req.ID, Code: command.CodeBadRequest, Message: "unknown pattern"}
	}
	return command.Reply{ID: req.ID, Success: true, Data: req.Data, Message: "ok"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_RepliesThenCommits(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	good := kafka.Message{
		Key:   []byte("tt-1"),
		Value: []byte(`{"pattern":"inventory.get-by-ticket-type","id":"req-1","data":{"ticketTypeId":"tt-1"}}`),
		Headers: []kafka.Header{
			{Key: kafkax.HeaderReplyTopic, Value: []byte("client.replies")},
			{Key: "traceparent", Value: []byte("00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")},
		},
		Offset: 1,
	}
	malformed := kafka.Message{
		Value:   []byte(`not json`),
		Headers: []kafka.Header{{Key: kafkax.HeaderCorrelationID, Value: []byte("corr-2")}},
		Offset:  2,
	}

	consumer := newFakeConsumer(good, malformed)
	producer := &fakeProducer{}
	srv := NewServer([]kafkax.Consumer{consumer}, producer, echoDispatcher{}, "inventory.replies", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	<-consumer.drained
	cancel()
	require.NoError(t, <-done)

	require.Len(t, producer.written, 2)
	require.Len(t, consumer.committed, 2)

	first := producer.written[0]
	assert.Equal(t, "client.replies", first.Topic)
	assert.Equal(t, []byte("tt-1"), first.Key)
	assert.Equal(t, "req-1", kafkax.Header(first, kafkax.HeaderCorrelationID))

	var reply command.Reply
	require.NoError(t, json.Unmarshal(first.Value, &reply))
	assert.True(t, reply.Success)
	assert.Equal(t, "req-1", reply.ID)
	assert.JSONEq(t, `{"ticketTypeId":"tt-1"}`, string(reply.Data))

	traceparent := kafkax.Header(first, "traceparent")
	assert.Contains(t, traceparent, "4bf92f3577b34da6a3ce929d0e0e4736", "the trace continues into the reply")

	second := producer.written[1]
	assert.Equal(t, "inventory.replies", second.Topic)
	require.NoError(t, json.Unmarshal(second.Value, &reply))
	assert.False(t, reply.Success)
	assert.Equal(t, command.CodeBadRequest, reply.Code)
	assert.Equal(t, "corr-2", reply.ID)
}

func TestServer_DoesNotCommitUndeliveredReplies(t *testing.T) {
	consumer := newFakeConsumer(kafka.Message{
		Value: []byte(`{"pattern":"inventory.get-by-ticket-type","id":"r","data":{}}`),
	})
	producer := &fakeProducer{fail: errors.New("broker down")}
	srv := NewServer([]kafkax.Consumer{consumer}, producer, echoDispatcher{}, "inventory.replies", discardLogger())

	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "broker down")
	assert.Empty(t, consumer.committed)
}

func TestAlertProducer_PublishAlert(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	producer := &fakeProducer{}
	p := NewAlertProducer(producer, "inventory.alerts")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	alert := domain.LowStockAlert{
		TicketTypeID:   "tt-1",
		EventID:        "ev-1",
		AvailableCount: 3,
		Threshold:      10,
		AlertLevel:     domain.AlertCritical,
	}
	require.NoError(t, p.PublishAlert(ctx, alert))

	require.Len(t, producer.written, 1)
	msg := producer.written[0]
	assert.Equal(t, "inventory.alerts", msg.Topic)
	assert.Equal(t, []byte("tt-1"), msg.Key)
	assert.NotEmpty(t, kafkax.Header(msg, "traceparent"))

	var got domain.LowStockAlert
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, alert, got)
}

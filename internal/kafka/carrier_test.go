package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier_RoundTripsTraceContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})

	prop := propagation.TraceContext{}
	var headers []kafka.Header

	prop.Inject(trace.ContextWithSpanContext(context.Background(), sc), HeaderCarrier{Headers: &headers})
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", HeaderCarrier{Headers: &headers}.Get("traceparent"))

	ctx := prop.Extract(context.Background(), HeaderCarrier{Headers: &headers})
	got := trace.SpanContextFromContext(ctx)
	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
}

func TestHeaderCarrier_SetReplaces(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: HeaderReplyTopic, Value: []byte("a")}}}

	c := HeaderCarrier{Headers: &msg.Headers}
	c.Set(HeaderReplyTopic, "b")
	c.Set(HeaderCorrelationID, "42")

	assert.Equal(t, "b", Header(msg, HeaderReplyTopic))
	assert.Equal(t, "42", Header(msg, HeaderCorrelationID))
	assert.ElementsMatch(t, []string{HeaderReplyTopic, HeaderCorrelationID}, c.Keys())
	assert.Empty(t, Header(msg, "missing"))
}

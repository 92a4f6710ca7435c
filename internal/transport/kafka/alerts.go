package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirinyoku/tix-inventory/internal/domain"
	kafkax "github.com/kirinyoku/tix-inventory/internal/kafka"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// AlertProducer publishes low stock alerts keyed by ticket type, so the
// alerts of one ticket type stay ordered.
type AlertProducer struct {
	producer kafkax.Producer
	topic    string
}

func NewAlertProducer(producer kafkax.Producer, topic string) *AlertProducer {
	return &AlertProducer{producer: producer, topic: topic}
}

func (p *AlertProducer) PublishAlert(ctx context.Context, a domain.LowStockAlert) error {
	const op = "kafka.AlertProducer.PublishAlert"

	value, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(a.TicketTypeID),
		Value: value,
	}

	otel.GetTextMapPropagator().Inject(ctx, kafkax.HeaderCarrier{Headers: &msg.Headers})

	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

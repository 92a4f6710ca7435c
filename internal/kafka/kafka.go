package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	GroupID      string
	CommandTopic string
	ReplyTopic   string
	AlertTopic   string
	Consumers    int
}

// Enabled reports whether a broker is configured at all.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// Consumer is the part of *kafka.Reader the command server needs.
type Consumer interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer is the part of *kafka.Writer the command server and the alert
// publisher need.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewConsumer joins the command topic's consumer group. Offsets are committed
// explicitly, once the reply for a message has been written.
func NewConsumer(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.CommandTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}

// NewProducer returns a writer without a fixed topic: every message names
// its own.
func NewProducer(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// Ping dials the first reachable broker.
func Ping(ctx context.Context, cfg Config) error {
	const op = "kafka.Ping"

	var lastErr error
	for _, b := range cfg.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}

		return conn.Close()
	}

	return fmt.Errorf("%s: no broker reachable: %w", op, lastErr)
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkax "github.com/kirinyoku/tix-inventory/internal/kafka"
	"github.com/kirinyoku/tix-inventory/internal/transport/command"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req command.Request) command.Reply
}

const (
	writeAttempts = 3
	writeBackoff  = 200 * time.Millisecond
)

// Server answers commands read from the command topic. Each consumer handles
// its partitions sequentially and commits a message only after its reply has
// been written, so a crash redelivers instead of dropping a command.
type Server struct {
	consumers  []kafkax.Consumer
	producer   kafkax.Producer
	dispatcher Dispatcher
	replyTopic string
	log        *slog.Logger
}

func NewServer(
	consumers []kafkax.Consumer,
	producer kafkax.Producer,
	dispatcher Dispatcher,
	replyTopic string,
	log *slog.Logger,
) *Server {
	return &Server{
		consumers:  consumers,
		producer:   producer,
		dispatcher: dispatcher,
		replyTopic: replyTopic,
		log:        log,
	}
}

// Run consumes until ctx is done or a reply cannot be delivered.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range s.consumers {
		g.Go(func() error {
			return s.consume(gctx, i, c)
		})
	}

	return g.Wait()
}

// Close closes every consumer.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.consumers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Server) consume(ctx context.Context, worker int, c kafkax.Consumer) error {
	const op = "kafka.Server.consume"

	log := s.log.With(slog.Int("worker", worker))

	for {
		msg, err := c.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("%s: fetch: %w", op, err)
		}

		reply := s.handle(ctx, msg)

		if err := s.writeReply(ctx, reply); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("%s: reply: %w", op, err)
		}

		if err := c.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("%s: commit: %w", op, err)
		}

		log.Debug("command answered",
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)
	}
}

// handle decodes and dispatches one message and builds the reply message.
func (s *Server) handle(ctx context.Context, msg kafka.Message) kafka.Message {
	ctx = otel.GetTextMapPropagator().Extract(ctx, kafkax.HeaderCarrier{Headers: &msg.Headers})

	correlationID := kafkax.Header(msg, kafkax.HeaderCorrelationID)

	var (
		req   command.Request
		reply command.Reply
	)

	if err := json.Unmarshal(msg.Value, &req); err != nil {
		s.log.Warn("malformed command",
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err),
		)

		reply = command.Reply{
			ID:      correlationID,
			Code:    command.CodeBadRequest,
			Error:   "Bad Request",
			Message: "malformed command envelope",
		}
	} else {
		if req.ID == "" {
			req.ID = correlationID
		}

		reply = s.dispatcher.Dispatch(ctx, req)
	}

	if correlationID == "" {
		correlationID = reply.ID
	}

	value, err := json.Marshal(reply)
	if err != nil {
		s.log.Error("encode reply", slog.String("id", reply.ID), slog.Any("error", err))
		value, _ = json.Marshal(command.Reply{
			ID:      reply.ID,
			Code:    command.CodeInternal,
			Error:   "Internal Server Error",
			Message: "internal error",
		})
	}

	topic := kafkax.Header(msg, kafkax.HeaderReplyTopic)
	if topic == "" {
		topic = s.replyTopic
	}

	out := kafka.Message{
		Topic: topic,
		Key:   msg.Key,
		Value: value,
		Headers: []kafka.Header{
			{Key: kafkax.HeaderCorrelationID, Value: []byte(correlationID)},
		},
	}

	otel.GetTextMapPropagator().Inject(ctx, kafkax.HeaderCarrier{Headers: &out.Headers})

	return out
}

func (s *Server) writeReply(ctx context.Context, msg kafka.Message) error {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		if err = s.producer.WriteMessages(ctx, msg); err == nil {
			return nil
		}

		s.log.Warn("write reply",
			slog.String("topic", msg.Topic),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * writeBackoff):
		}
	}

	return err
}

package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StockPubSub fans committed counter changes out to every instance.
type StockPubSub struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

func NewStockPubSub(rdb *redis.Client, log *slog.Logger) *StockPubSub {
	return &StockPubSub{
		rdb:     rdb,
		channel: ChannelStockChanged(),
		log:     log,
	}
}

func (p *StockPubSub) PublishChange(ctx context.Context, ch domain.StockChange) error {
	b, err := json.Marshal(ch)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe delivers changes to handler until ctx is done. Malformed payloads
// are logged and skipped.
func (p *StockPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ch domain.StockChange)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	msgs := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return nil
			}

			var ch domain.StockChange
			if err := json.Unmarshal([]byte(m.Payload), &ch); err != nil || ch.TicketTypeID == "" {
				p.log.Warn("skipping malformed stock change", slog.String("payload", m.Payload))
				continue
			}

			handler(ctx, ch)
		}
	}
}

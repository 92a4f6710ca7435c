package changes

import (
	"context"
	"log/slog"

	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
)

type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, eventID string) error
}

type Publisher interface {
	PublishChange(ctx context.Context, ch domain.StockChange) error
}

// Notifier runs the after-commit side effects of a counter change: the
// aggregate report of the event is invalidated and the new counts are
// broadcast. Failures are logged, never returned; the write already committed.
type Notifier struct {
	cache StatsInvalidator
	pub   Publisher
	clock clock.Clock
	log   *slog.Logger
}

func NewNotifier(cache StatsInvalidator, pub Publisher, clk clock.Clock, log *slog.Logger) *Notifier {
	return &Notifier{
		cache: cache,
		pub:   pub,
		clock: clk,
		log:   log,
	}
}

// Committed reports the new counts of a ticket type. A nil Notifier is a
// no-op.
func (n *Notifier) Committed(ctx context.Context, ch domain.StockChange) {
	if n == nil {
		return
	}

	n.invalidate(ctx, ch.EventID)
	n.publish(ctx, ch)
}

// Removed reports that a ticket type left the event.
func (n *Notifier) Removed(ctx context.Context, ticketTypeID, eventID string) {
	if n == nil {
		return
	}

	n.invalidate(ctx, eventID)
	n.publish(ctx, domain.StockChange{
		TicketTypeID: ticketTypeID,
		EventID:      eventID,
		Removed:      true,
	})
}

func (n *Notifier) publish(ctx context.Context, ch domain.StockChange) {
	if n.pub == nil {
		return
	}

	ch.TsUnix = n.clock.Now().Unix()

	if err := n.pub.PublishChange(ctx, ch); err != nil {
		n.log.Warn("publish stock change",
			slog.String("ticket_type_id", ch.TicketTypeID),
			slog.Any("error", err),
		)
	}
}

func (n *Notifier) invalidate(ctx context.Context, eventID string) {
	if n.cache == nil {
		return
	}

	if err := n.cache.InvalidateStats(ctx, eventID); err != nil {
		n.log.Warn("invalidate stats cache",
			slog.String("event_id", eventID),
			slog.Any("error", err),
		)
	}
}

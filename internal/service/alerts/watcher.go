package alerts

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kirinyoku/tix-inventory/internal/domain"
)

type Subscriber interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, ch domain.StockChange)) error
}

type Publisher interface {
	PublishAlert(ctx context.Context, a domain.LowStockAlert) error
}

// Levels remembers the last alert level reported per ticket type. Instances
// that share one Levels report each level change once between them.
type Levels interface {
	// Swap stores level and reports whether it differs from the stored one.
	// Storing AlertNone forgets the ticket type.
	Swap(ctx context.Context, ticketTypeID string, level domain.AlertLevel) (bool, error)
}

// Watcher classifies every committed stock change and reports a ticket type
// once per alert level it enters. Returning to a healthy level, deactivation
// and removal reset it.
type Watcher struct {
	sub       Subscriber
	pub       Publisher
	levels    Levels
	threshold int64
	log       *slog.Logger
}

// NewWatcher builds a watcher. pub may be nil, in which case alerts are only
// logged. levels may be nil for a single instance; levels are then kept in
// memory.
func NewWatcher(sub Subscriber, pub Publisher, levels Levels, threshold int64, log *slog.Logger) *Watcher {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}

	if levels == nil {
		levels = NewMemLevels()
	}

	return &Watcher{
		sub:       sub,
		pub:       pub,
		levels:    levels,
		threshold: threshold,
		log:       log,
	}
}

// Run consumes changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	err := w.sub.Subscribe(ctx, w.Handle)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func (w *Watcher) Handle(ctx context.Context, ch domain.StockChange) {
	level := ch.AlertLevel(w.threshold)

	changed, err := w.levels.Swap(ctx, ch.TicketTypeID, level)
	if err != nil {
		// a duplicate alert beats a lost one
		w.log.Warn("swap alert level",
			slog.String("ticket_type_id", ch.TicketTypeID),
			slog.Any("error", err),
		)
		changed = level != domain.AlertNone
	}

	if !changed || level == domain.AlertNone {
		return
	}

	alert := domain.LowStockAlert{
		TicketTypeID:   ch.TicketTypeID,
		EventID:        ch.EventID,
		AvailableCount: ch.Available,
		Threshold:      w.threshold,
		AlertLevel:     level,
	}

	w.log.Warn("low stock",
		slog.String("ticket_type_id", alert.TicketTypeID),
		slog.String("event_id", alert.EventID),
		slog.Int64("available", alert.AvailableCount),
		slog.String("level", string(level)),
	)

	if w.pub == nil {
		return
	}

	if err := w.pub.PublishAlert(ctx, alert); err != nil {
		w.log.Error("publish low stock alert",
			slog.String("ticket_type_id", alert.TicketTypeID),
			slog.Any("error", err),
		)
	}
}

// MemLevels is a process-local Levels.
type MemLevels struct {
	mu   sync.Mutex
	last map[string]domain.AlertLevel
}

func NewMemLevels() *MemLevels {
	return &MemLevels{last: make(map[string]domain.AlertLevel)}
}

func (m *MemLevels) Swap(_ context.Context, ticketTypeID string, level domain.AlertLevel) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if level == domain.AlertNone {
		_, had := m.last[ticketTypeID]
		delete(m.last, ticketTypeID)
		return had, nil
	}

	if m.last[ticketTypeID] == level {
		return false, nil
	}

	m.last[ticketTypeID] = level

	return true, nil
}

// Len reports how many ticket types are currently in an alert level.
func (m *MemLevels) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.last)
}

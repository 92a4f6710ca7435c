package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/repository"
)

// Reader is the snapshot read side of the store.
type Reader interface {
	GetInventory(ctx context.Context, ticketTypeID string) (domain.Inventory, error)
	ListInventoryByEvent(ctx context.Context, eventID string) ([]domain.Inventory, error)
	GetStockLevel(ctx context.Context, ticketTypeID string) (domain.StockLevel, error)
	ListStockLevels(ctx context.Context, f domain.StockFilter) ([]domain.StockLevel, error)
	GetTicketType(ctx context.Context, id string) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, f domain.TicketTypeFilter) ([]domain.TicketType, error)
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
}

// StatsCache memoizes aggregate reports for a short time.
type StatsCache interface {
	Stats(ctx context.Context, eventID string, loader func(ctx context.Context) (domain.Stats, error)) (domain.Stats, error)
}

type Config struct {
	LowStockThreshold int64
}

type Service struct {
	reader Reader
	cache  StatsCache
	clock  clock.Clock
	cfg    Config
}

// New builds the read service. cache may be nil, in which case every report
// is computed from the store.
func New(reader Reader, cache StatsCache, clk clock.Clock, cfg Config) *Service {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = domain.DefaultLowStockThreshold
	}

	return &Service{
		reader: reader,
		cache:  cache,
		clock:  clk,
		cfg:    cfg,
	}
}

// CheckAvailability is advisory: it answers from live counters without
// holding anything, so a later Reserve may still fail.
//
// Parameters:
//   - ctx: request-scoped context.
//   - ticketTypeID: ID of the ticket type.
//   - quantity: number of tickets wanted, must be positive.
//
// Returns:
//   - domain.Availability: whether quantity can be bought now, and the live
//     available count even when the ticket type is inactive or off sale.
//   - error: domain.ErrNotFound if the ticket type does not exist.
//   - error: domain.ErrInvalidQuantity if quantity is not positive.
func (s *Service) CheckAvailability(ctx context.Context, ticketTypeID string, quantity int64) (domain.Availability, error) {
	const op = "service.query.CheckAvailability"

	if quantity <= 0 {
		return domain.Availability{}, fmt.Errorf("%s: %w: quantity must be positive, got %d", op, domain.ErrInvalidQuantity, quantity)
	}

	lvl, err := s.reader.GetStockLevel(ctx, ticketTypeID)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("%s: %w", op, notFound(err, ticketTypeID))
	}

	return domain.Availability{
		Available:      lvl.IsActive && lvl.OnSale(s.clock.Now()) && lvl.Available >= quantity,
		RemainingCount: lvl.Available,
	}, nil
}

// GetInventory returns the ledger snapshot of a ticket type.
//
// Returns:
//   - error: domain.ErrNotFound if the ticket type does not exist.
func (s *Service) GetInventory(ctx context.Context, ticketTypeID string) (domain.Inventory, error) {
	const op = "service.query.GetInventory"

	inv, err := s.reader.GetInventory(ctx, ticketTypeID)
	if err != nil {
		return domain.Inventory{}, fmt.Errorf("%s: %w", op, notFound(err, ticketTypeID))
	}

	return inv, nil
}

func (s *Service) ListInventoryByEvent(ctx context.Context, eventID string) ([]domain.Inventory, error) {
	const op = "service.query.ListInventoryByEvent"

	out, err := s.reader.ListInventoryByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// LowStockAlerts classifies every active ticket type with at most threshold
// tickets left. A threshold of zero or less uses the configured default.
func (s *Service) LowStockAlerts(ctx context.Context, threshold int64) ([]domain.LowStockAlert, error) {
	const op = "service.query.LowStockAlerts"

	if threshold <= 0 {
		threshold = s.cfg.LowStockThreshold
	}

	levels, err := s.reader.ListStockLevels(ctx, domain.StockFilter{
		MaxAvailable: &threshold,
		ActiveOnly:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	alerts := make([]domain.LowStockAlert, 0, len(levels))
	for _, l := range levels {
		level := domain.AlertFor(l.Available, threshold)
		if level == domain.AlertNone {
			continue
		}

		alerts = append(alerts, domain.LowStockAlert{
			TicketTypeID:   l.TicketTypeID,
			EventID:        l.EventID,
			AvailableCount: l.Available,
			Threshold:      threshold,
			AlertLevel:     level,
		})
	}

	return alerts, nil
}

// Stats aggregates the ledger of one event, or of every ticket type when
// eventID is empty.
func (s *Service) Stats(ctx context.Context, eventID string) (domain.Stats, error) {
	const op = "service.query.Stats"

	load := func(ctx context.Context) (domain.Stats, error) {
		levels, err := s.reader.ListStockLevels(ctx, domain.StockFilter{EventID: eventID})
		if err != nil {
			return domain.Stats{}, err
		}

		return domain.Aggregate(levels), nil
	}

	var (
		stats domain.Stats
		err   error
	)

	if s.cache != nil {
		stats, err = s.cache.Stats(ctx, eventID, load)
	} else {
		stats, err = load(ctx)
	}
	if err != nil {
		return domain.Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

// GetTicketType returns a ticket type by ID.
//
// Returns:
//   - error: domain.ErrNotFound if the ticket type does not exist.
func (s *Service) GetTicketType(ctx context.Context, id string) (domain.TicketType, error) {
	const op = "service.query.GetTicketType"

	t, err := s.reader.GetTicketType(ctx, id)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("%s: %w", op, notFound(err, id))
	}

	return t, nil
}

// ListTicketTypes lists ticket types matching f. Without an event and an
// explicit activity filter only active ticket types are listed.
func (s *Service) ListTicketTypes(ctx context.Context, f domain.TicketTypeFilter) ([]domain.TicketType, error) {
	const op = "service.query.ListTicketTypes"

	if f.EventID == "" && f.IsActive == nil {
		active := true
		f.IsActive = &active
	}

	out, err := s.reader.ListTicketTypes(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListTicketTypesByEvent lists the active ticket types of an event, cheapest
// first.
func (s *Service) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	const op = "service.query.ListTicketTypesByEvent"

	out, err := s.reader.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return err
}

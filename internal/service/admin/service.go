package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/repository"
	"github.com/kirinyoku/tix-inventory/internal/service/changes"
	"github.com/kirinyoku/tix-inventory/internal/uow"
)

// Service manages the lifecycle of ticket types and the administrative
// override of their counters.
type Service struct {
	uow    uow.Runner
	clock  clock.Clock
	notify *changes.Notifier
	newID  func() string
}

func New(runner uow.Runner, clk clock.Clock, notify *changes.Notifier) *Service {
	return &Service{
		uow:    runner,
		clock:  clk,
		notify: notify,
		newID:  uuid.NewString,
	}
}

// CreateTicketType provisions a ticket type and its ledger in one transaction.
//
// Parameters:
//   - ctx: request-scoped context.
//   - spec: attributes of the new ticket type.
//
// Returns:
//   - domain.TicketType: the stored ticket type, all tickets available.
//   - error: domain.ErrWindowViolation if the sale window is empty or inverted.
//   - error: domain.ErrInvalidQuantity if quantity, price or maxPerUser is out of range.
func (s *Service) CreateTicketType(ctx context.Context, spec domain.TicketTypeSpec) (domain.TicketType, error) {
	const op = "service.admin.CreateTicketType"

	t, err := domain.NewTicketType(spec)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	t.ID = s.newID()
	t.CreatedAt = now
	t.UpdatedAt = now

	var out domain.TicketType

	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.Tx, after func(uow.AfterCommit)) error {
		created, err := tx.TicketTypes().Create(ctx, t, s.newID())
		if err != nil {
			return translate(err, t.ID)
		}

		out = created

		after(func(ctx context.Context) {
			s.notify.Committed(ctx, out.StockChange())
		})

		return nil
	})
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateTicketType merges patch into a ticket type. A capacity change shifts
// the available pool by the difference and is written to the ledger in the
// same transaction.
//
// Returns:
//   - error: domain.ErrNotFound if the ticket type does not exist.
//   - error: domain.ErrInvalidQuantity if the new capacity is below sold plus reserved.
//   - error: domain.ErrWindowViolation if the merged sale window is invalid.
func (s *Service) UpdateTicketType(ctx context.Context, id string, patch domain.TicketTypePatch) (domain.TicketType, error) {
	const op = "service.admin.UpdateTicketType"

	var out domain.TicketType

	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.Tx, after func(uow.AfterCommit)) error {
		cur, err := tx.TicketTypes().GetForUpdate(ctx, id)
		if err != nil {
			return translate(err, id)
		}

		next, err := cur.Apply(patch)
		if err != nil {
			return err
		}

		next.UpdatedAt = s.clock.Now()

		out, err = tx.TicketTypes().Update(ctx, next)
		if err != nil {
			return translate(err, id)
		}

		after(func(ctx context.Context) {
			s.notify.Committed(ctx, out.StockChange())
		})

		return nil
	})
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeleteTicketType removes a ticket type that has never sold a ticket. Its
// active holds are cancelled and its ledger is removed with it.
//
// Returns:
//   - error: domain.ErrNotFound if the ticket type does not exist.
//   - error: domain.ErrConflict if tickets of the type have been sold.
func (s *Service) DeleteTicketType(ctx context.Context, id string) error {
	const op = "service.admin.DeleteTicketType"

	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.Tx, after func(uow.AfterCommit)) error {
		cur, err := tx.TicketTypes().GetForUpdate(ctx, id)
		if err != nil {
			return translate(err, id)
		}

		if cur.SoldQuantity > 0 {
			return fmt.Errorf("%w: cannot delete ticket type with %d sold tickets", domain.ErrConflict, cur.SoldQuantity)
		}

		if _, err := tx.Holds().CancelActive(ctx, id, s.clock.Now()); err != nil {
			return err
		}

		if err := tx.TicketTypes().Delete(ctx, id); err != nil {
			return translate(err, id)
		}

		after(func(ctx context.Context) {
			s.notify.Removed(ctx, cur.ID, cur.EventID)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// OverrideInventory overwrites individual counters of a ticket type. The
// result must still balance against the unchanged total.
//
// Returns:
//   - error: domain.ErrNotFound if the ticket type does not exist.
//   - error: domain.ErrInvalidQuantity if the counters would not balance.
func (s *Service) OverrideInventory(ctx context.Context, ticketTypeID string, patch domain.CountsPatch) (domain.Inventory, error) {
	const op = "service.admin.OverrideInventory"

	var out domain.Inventory

	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.Tx, after func(uow.AfterCommit)) error {
		inv, err := tx.Ledger().LoadForUpdate(ctx, ticketTypeID)
		if err != nil {
			return translate(err, ticketTypeID)
		}

		next, err := inv.Counts.Apply(patch)
		if err != nil {
			return err
		}

		out, err = tx.Ledger().Commit(ctx, ticketTypeID, next, s.clock.Now())
		if err != nil {
			return translate(err, ticketTypeID)
		}

		after(func(ctx context.Context) {
			s.notify.Committed(ctx, out.StockChange())
		})

		return nil
	})
	if err != nil {
		return domain.Inventory{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func translate(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: ticket type %s clashes with a stored ticket type or its ledger", domain.ErrConflict, id)
	default:
		return err
	}
}

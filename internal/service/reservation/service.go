package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/repository"
	"github.com/kirinyoku/tix-inventory/internal/service/changes"
	"github.com/kirinyoku/tix-inventory/internal/uow"
)

// Service is the only mutator of ledger counters. Each transition loads the
// counters under a row lock, validates, and commits in one transaction; it
// never retries and never deduplicates.
type Service struct {
	uow    uow.Runner
	clock  clock.Clock
	notify *changes.Notifier
}

func New(runner uow.Runner, clk clock.Clock, notify *changes.Notifier) *Service {
	return &Service{
		uow:    runner,
		clock:  clk,
		notify: notify,
	}
}

type transition func(c domain.Counts, n int64) (domain.Counts, error)

// Reserve moves quantity tickets from available to reserved.
//
// Parameters:
//   - ctx: request-scoped context.
//   - ticketTypeID: ID of the ticket type.
//   - quantity: number of tickets, must be positive.
//
// Returns:
//   - domain.Inventory: the committed ledger snapshot.
//   - error: domain.ErrInsufficientInventory if fewer tickets are available.
//   - error: domain.ErrNotFound if the ticket type does not exist.
//   - error: domain.ErrInvalidQuantity if quantity is not positive.
func (s *Service) Reserve(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error) {
	const op = "service.reservation.Reserve"

	return s.apply(ctx, op, ticketTypeID, quantity, domain.Counts.Reserve)
}

// Release returns quantity reserved tickets to the available pool.
//
// Returns:
//   - error: domain.ErrOverRelease if fewer tickets are reserved.
//   - error: domain.ErrNotFound if the ticket type does not exist.
func (s *Service) Release(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error) {
	const op = "service.reservation.Release"

	return s.apply(ctx, op, ticketTypeID, quantity, domain.Counts.Release)
}

// Confirm turns quantity reserved tickets into sold ones.
//
// Returns:
//   - error: domain.ErrOverConfirm if fewer tickets are reserved.
//   - error: domain.ErrNotFound if the ticket type does not exist.
func (s *Service) Confirm(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error) {
	const op = "service.reservation.Confirm"

	return s.apply(ctx, op, ticketTypeID, quantity, domain.Counts.Confirm)
}

func (s *Service) apply(
	ctx context.Context,
	op string,
	ticketTypeID string,
	quantity int64,
	move transition,
) (domain.Inventory, error) {
	if quantity <= 0 {
		return domain.Inventory{}, fmt.Errorf("%s: %w: quantity must be positive, got %d", op, domain.ErrInvalidQuantity, quantity)
	}

	var out domain.Inventory

	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.Tx, after func(uow.AfterCommit)) error {
		inv, err := tx.Ledger().LoadForUpdate(ctx, ticketTypeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrNotFound, ticketTypeID)
			}

			return err
		}

		next, err := move(inv.Counts, quantity)
		if err != nil {
			return err
		}

		out, err = tx.Ledger().Commit(ctx, ticketTypeID, next, s.clock.Now())
		if err != nil {
			return err
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

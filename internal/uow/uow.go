package uow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	postgresrepo "github.com/kirinyoku/tix-inventory/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// LedgerRepo is the transactional view of the counters of a ticket type.
type LedgerRepo interface {
	LoadForUpdate(ctx context.Context, ticketTypeID string) (domain.Inventory, error)
	Commit(ctx context.Context, ticketTypeID string, c domain.Counts, at time.Time) (domain.Inventory, error)
}

type TicketTypeRepo interface {
	Create(ctx context.Context, t domain.TicketType, inventoryID string) (domain.TicketType, error)
	GetForUpdate(ctx context.Context, id string) (domain.TicketType, error)
	Update(ctx context.Context, t domain.TicketType) (domain.TicketType, error)
	Delete(ctx context.Context, id string) error
}

type HoldRepo interface {
	CancelActive(ctx context.Context, ticketTypeID string, at time.Time) (int64, error)
}

// Tx hands out repositories bound to one transaction.
type Tx interface {
	Ledger() LedgerRepo
	TicketTypes() TicketTypeRepo
	Holds() HoldRepo
}

// Func is the body of a unit of work. Hooks registered through after run only
// once the transaction has committed.
type Func func(ctx context.Context, tx Tx, after func(AfterCommit)) error

type Runner interface {
	Do(ctx context.Context, fn Func) error
}

// UoW represents a unit of work over the Postgres store.
type UoW struct {
	store *postgresrepo.Store
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(ctx context.Context, fn Func) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside the transaction with the given options. After a
// successful commit, it executes all after-commit hooks in registration order.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn Func) error {
	var hooks []AfterCommit

	err := u.store.RunTx(ctx, opts, func(ctx context.Context, db postgresrepo.DB) error {
		return fn(ctx, &pgTx{store: u.store, db: db}, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

type pgTx struct {
	store *postgresrepo.Store
	db    postgresrepo.DB
}

func (t *pgTx) Ledger() LedgerRepo          { return t.store.Ledger().With(t.db) }
func (t *pgTx) TicketTypes() TicketTypeRepo { return t.store.TicketTypes().With(t.db) }
func (t *pgTx) Holds() HoldRepo             { return t.store.Holds().With(t.db) }

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-inventory/internal/domain"
)

// LedgerRepo loads and commits the counters of one ticket type. It is the
// only writer of counter columns outside ticket type provisioning.
type LedgerRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *LedgerRepo) With(db DB) *LedgerRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *LedgerRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// LoadForUpdate reads the ledger of a ticket type and locks its ticket_types
// row until the surrounding transaction ends. Every counter write goes
// through that row, so holding it serializes writers of one ticket type while
// leaving other ticket types and plain readers untouched.
//
// Counters are read from the locked row: after waiting on the lock, READ
// COMMITTED re-reads only the locked table, joined rows keep their old version.
//
// Returns:
//   - domain.Inventory: the current ledger snapshot.
//   - error: repository.ErrNotFound if the ticket type has no ledger.
func (r *LedgerRepo) LoadForUpdate(ctx context.Context, ticketTypeID string) (domain.Inventory, error) {
	const op = "postgres.LedgerRepo.LoadForUpdate"

	db := r.handle()

	inv, err := scanInventory(db.QueryRow(ctx,
		`SELECT i.id, t.id, t.event_id, t.is_active,
		        t.total_quantity, t.available_quantity, t.sold_quantity, t.reserved_quantity, t.updated_at
		 FROM ticket_types t
		 JOIN inventory i ON i.ticket_type_id = t.id
		 WHERE t.id = $1
		 FOR UPDATE OF t`,
		ticketTypeID,
	))
	if err != nil {
		return domain.Inventory{}, wrapDBErr(op, err)
	}

	return inv, nil
}

// Commit writes new counters to the ticket type and its inventory record in a
// single statement, so neither row can be observed updated without the other.
//
// Returns:
//   - domain.Inventory: the committed ledger snapshot.
//   - error: repository.ErrNotFound if the ticket type has no ledger.
//   - error: repository.ErrConflict if the counters violate the balance constraint.
func (r *LedgerRepo) Commit(
	ctx context.Context,
	ticketTypeID string,
	c domain.Counts,
	at time.Time,
) (domain.Inventory, error) {
	const op = "postgres.LedgerRepo.Commit"

	db := r.handle()

	inv, err := scanInventory(db.QueryRow(ctx,
		`WITH tt AS (
		     UPDATE ticket_types
		     SET total_quantity = $2, available_quantity = $3, reserved_quantity = $4,
		         sold_quantity = $5, updated_at = $6
		     WHERE id = $1
		     RETURNING id, event_id, is_active
		 )
		 UPDATE inventory i
		 SET total_count = $2, available_count = $3, reserved_count = $4,
		     sold_count = $5, last_updated = $6
		 FROM tt
		 WHERE i.ticket_type_id = tt.id
		 RETURNING i.id, i.ticket_type_id, tt.event_id, tt.is_active,
		           i.total_count, i.available_count, i.sold_count, i.reserved_count, i.last_updated`,
		ticketTypeID, c.Total, c.Available, c.Reserved, c.Sold, at,
	))
	if err != nil {
		return domain.Inventory{}, wrapDBErr(op, err)
	}

	return inv, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventory(row rowScanner) (domain.Inventory, error) {
	var inv domain.Inventory
	err := row.Scan(
		&inv.ID,
		&inv.TicketTypeID,
		&inv.EventID,
		&inv.IsActive,
		&inv.Total,
		&inv.Available,
		&inv.Sold,
		&inv.Reserved,
		&inv.LastUpdated,
	)
	return inv, err
}

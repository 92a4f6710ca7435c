package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-inventory/internal/domain"
)

// QueryRepo serves the read side: plain snapshot reads that never take locks.
type QueryRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *QueryRepo) With(db DB) *QueryRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *QueryRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetInventory retrieves the ledger snapshot of a ticket type.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - ticketTypeID: unique identifier of the ticket type.
//
// Returns:
//   - domain.Inventory: the ledger snapshot when found.
//   - error: repository.ErrNotFound if the ticket type has no ledger.
func (r *QueryRepo) GetInventory(ctx context.Context, ticketTypeID string) (domain.Inventory, error) {
	const op = "postgres.QueryRepo.GetInventory"

	db := r.handle()

	inv, err := scanInventory(db.QueryRow(ctx,
		`SELECT i.id, i.ticket_type_id, t.event_id, t.is_active,
		        i.total_count, i.available_count, i.sold_count, i.reserved_count, i.last_updated
		 FROM inventory i
		 JOIN ticket_types t ON t.id = i.ticket_type_id
		 WHERE i.ticket_type_id = $1`,
		ticketTypeID,
	))
	if err != nil {
		return domain.Inventory{}, wrapDBErr(op, err)
	}

	return inv, nil
}

// ListInventoryByEvent lists the ledger snapshots of every ticket type of an
// event. An unknown event yields an empty list.
func (r *QueryRepo) ListInventoryByEvent(ctx context.Context, eventID string) ([]domain.Inventory, error) {
	const op = "postgres.QueryRepo.ListInventoryByEvent"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT i.id, i.ticket_type_id, t.event_id, t.is_active,
		        i.total_count, i.available_count, i.sold_count, i.reserved_count, i.last_updated
		 FROM inventory i
		 JOIN ticket_types t ON t.id = i.ticket_type_id
		 WHERE t.event_id = $1
		 ORDER BY t.created_at, t.id`,
		eventID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Inventory{}
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// GetStockLevel retrieves the sale attributes and live counters of a ticket
// type in one read.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket type has no ledger.
func (r *QueryRepo) GetStockLevel(ctx context.Context, ticketTypeID string) (domain.StockLevel, error) {
	const op = "postgres.QueryRepo.GetStockLevel"

	db := r.handle()

	s, err := scanStockLevel(db.QueryRow(ctx,
		`SELECT t.id, t.event_id, t.is_active, t.sale_start_date, t.sale_end_date,
		        i.total_count, i.available_count, i.sold_count, i.reserved_count
		 FROM ticket_types t
		 JOIN inventory i ON i.ticket_type_id = t.id
		 WHERE t.id = $1`,
		ticketTypeID,
	))
	if err != nil {
		return domain.StockLevel{}, wrapDBErr(op, err)
	}

	return s, nil
}

// ListStockLevels lists stock levels matching the filter.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - f: empty EventID matches every event; nil MaxAvailable matches any count;
//     ActiveOnly drops inactive ticket types.
func (r *QueryRepo) ListStockLevels(ctx context.Context, f domain.StockFilter) ([]domain.StockLevel, error) {
	const op = "postgres.QueryRepo.ListStockLevels"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT t.id, t.event_id, t.is_active, t.sale_start_date, t.sale_end_date,
		        i.total_count, i.available_count, i.sold_count, i.reserved_count
		 FROM ticket_types t
		 JOIN inventory i ON i.ticket_type_id = t.id
		 WHERE ($1 = '' OR t.event_id = $1)
		   AND ($2::bigint IS NULL OR i.available_count <= $2)
		   AND (NOT $3 OR t.is_active)
		 ORDER BY i.available_count, t.id`,
		f.EventID, f.MaxAvailable, f.ActiveOnly,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.StockLevel{}
	for rows.Next() {
		s, err := scanStockLevel(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// GetTicketType retrieves a ticket type by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket type does not exist.
func (r *QueryRepo) GetTicketType(ctx context.Context, id string) (domain.TicketType, error) {
	const op = "postgres.QueryRepo.GetTicketType"

	db := r.handle()

	t, err := scanTicketType(db.QueryRow(ctx,
		`SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id = $1`,
		id,
	))
	if err != nil {
		return domain.TicketType{}, wrapDBErr(op, err)
	}

	return t, nil
}

// ListTicketTypes lists ticket types matching the filter, newest first.
func (r *QueryRepo) ListTicketTypes(ctx context.Context, f domain.TicketTypeFilter) ([]domain.TicketType, error) {
	const op = "postgres.QueryRepo.ListTicketTypes"

	return r.listTicketTypes(ctx, op,
		`SELECT `+ticketTypeColumns+`
		 FROM ticket_types
		 WHERE ($1 = '' OR event_id = $1)
		   AND ($2::boolean IS NULL OR is_active = $2)
		   AND ($3 = '' OR strpos(lower(name), lower($3)) > 0)
		 ORDER BY created_at DESC, id`,
		f.EventID, f.IsActive, f.Name,
	)
}

// ListTicketTypesByEvent lists the active ticket types of an event, cheapest
// first.
func (r *QueryRepo) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	const op = "postgres.QueryRepo.ListTicketTypesByEvent"

	return r.listTicketTypes(ctx, op,
		`SELECT `+ticketTypeColumns+`
		 FROM ticket_types
		 WHERE event_id = $1 AND is_active
		 ORDER BY price_cents, id`,
		eventID,
	)
}

func (r *QueryRepo) listTicketTypes(ctx context.Context, op, sql string, args ...any) ([]domain.TicketType, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TicketType, error) {
		return scanTicketType(row)
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func scanStockLevel(row rowScanner) (domain.StockLevel, error) {
	var s domain.StockLevel
	err := row.Scan(
		&s.TicketTypeID,
		&s.EventID,
		&s.IsActive,
		&s.SaleStartDate,
		&s.SaleEndDate,
		&s.Total,
		&s.Available,
		&s.Sold,
		&s.Reserved,
	)
	return s, err
}

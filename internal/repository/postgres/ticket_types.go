package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/repository"
)

const ticketTypeColumns = `id, event_id, name, description, price_cents,
	total_quantity, available_quantity, reserved_quantity, sold_quantity,
	max_per_user, sale_start_date, sale_end_date, is_active, created_at, updated_at`

type TicketTypeRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketTypeRepo) With(db DB) *TicketTypeRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketTypeRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a ticket type together with its inventory record.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - t: the ticket type; ID, counters and timestamps must be set.
//   - inventoryID: ID of the inventory record to create.
//
// Returns:
//   - domain.TicketType: the stored ticket type.
//   - error: repository.ErrConflict if a ticket type with the same ID exists.
func (r *TicketTypeRepo) Create(ctx context.Context, t domain.TicketType, inventoryID string) (domain.TicketType, error) {
	const op = "postgres.TicketTypeRepo.Create"

	db := r.handle()

	out, err := scanTicketType(db.QueryRow(ctx,
		`WITH tt AS (
		     INSERT INTO ticket_types (`+ticketTypeColumns+`)
		     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		     RETURNING `+ticketTypeColumns+`
		 ), inv AS (
		     INSERT INTO inventory (id, ticket_type_id, total_count, available_count,
		                            reserved_count, sold_count, last_updated)
		     SELECT $16, id, total_quantity, available_quantity,
		            reserved_quantity, sold_quantity, updated_at
		     FROM tt
		 )
		 SELECT `+ticketTypeColumns+` FROM tt`,
		t.ID, t.EventID, t.Name, t.Description, t.PriceCents,
		t.TotalQuantity, t.AvailableQuantity, t.ReservedQuantity, t.SoldQuantity,
		t.MaxPerUser, t.SaleStartDate, t.SaleEndDate, t.IsActive, t.CreatedAt, t.UpdatedAt,
		inventoryID,
	))
	if err != nil {
		return domain.TicketType{}, wrapDBErr(op, err)
	}

	return out, nil
}

// GetForUpdate reads a ticket type and locks its row until the surrounding
// transaction ends.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket type does not exist.
func (r *TicketTypeRepo) GetForUpdate(ctx context.Context, id string) (domain.TicketType, error) {
	const op = "postgres.TicketTypeRepo.GetForUpdate"

	db := r.handle()

	t, err := scanTicketType(db.QueryRow(ctx,
		`SELECT `+ticketTypeColumns+`
		 FROM ticket_types
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	))
	if err != nil {
		return domain.TicketType{}, wrapDBErr(op, err)
	}

	return t, nil
}

// Update writes every mutable attribute of a ticket type and propagates its
// counters to the inventory record in the same statement.
//
// Returns:
//   - domain.TicketType: the stored ticket type.
//   - error: repository.ErrNotFound if the ticket type does not exist.
func (r *TicketTypeRepo) Update(ctx context.Context, t domain.TicketType) (domain.TicketType, error) {
	const op = "postgres.TicketTypeRepo.Update"

	db := r.handle()

	out, err := scanTicketType(db.QueryRow(ctx,
		`WITH tt AS (
		     UPDATE ticket_types
		     SET name = $2, description = $3, price_cents = $4,
		         total_quantity = $5, available_quantity = $6,
		         reserved_quantity = $7, sold_quantity = $8,
		         max_per_user = $9, sale_start_date = $10, sale_end_date = $11,
		         is_active = $12, updated_at = $13
		     WHERE id = $1
		     RETURNING `+ticketTypeColumns+`
		 ), inv AS (
		     UPDATE inventory i
		     SET total_count = tt.total_quantity, available_count = tt.available_quantity,
		         reserved_count = tt.reserved_quantity, sold_count = tt.sold_quantity,
		         last_updated = tt.updated_at
		     FROM tt
		     WHERE i.ticket_type_id = tt.id
		 )
		 SELECT `+ticketTypeColumns+` FROM tt`,
		t.ID, t.Name, t.Description, t.PriceCents,
		t.TotalQuantity, t.AvailableQuantity, t.ReservedQuantity, t.SoldQuantity,
		t.MaxPerUser, t.SaleStartDate, t.SaleEndDate, t.IsActive, t.UpdatedAt,
	))
	if err != nil {
		return domain.TicketType{}, wrapDBErr(op, err)
	}

	return out, nil
}

// Delete removes a ticket type; the inventory record goes with it by cascade.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket type does not exist.
func (r *TicketTypeRepo) Delete(ctx context.Context, id string) error {
	const op = "postgres.TicketTypeRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM ticket_types WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

func scanTicketType(row rowScanner) (domain.TicketType, error) {
	var t domain.TicketType
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Description,
		&t.PriceCents,
		&t.TotalQuantity,
		&t.AvailableQuantity,
		&t.ReservedQuantity,
		&t.SoldQuantity,
		&t.MaxPerUser,
		&t.SaleStartDate,
		&t.SaleEndDate,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

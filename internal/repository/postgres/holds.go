package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-inventory/internal/domain"
)

type HoldRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *HoldRepo) With(db DB) *HoldRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *HoldRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CancelActive marks every active hold of a ticket type as cancelled.
//
// Returns:
//   - int64: the number of holds cancelled.
func (r *HoldRepo) CancelActive(ctx context.Context, ticketTypeID string, at time.Time) (int64, error) {
	const op = "postgres.HoldRepo.CancelActive"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE holds
		 SET status = $2, updated_at = $3
		 WHERE ticket_type_id = $1 AND status = $4`,
		ticketTypeID, string(domain.HoldCancelled), at, string(domain.HoldActive),
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

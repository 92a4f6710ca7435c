package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/repository"
	postgresrepo "github.com/kirinyoku/tix-inventory/internal/repository/postgres"
	"github.com/kirinyoku/tix-inventory/internal/service/admin"
	"github.com/kirinyoku/tix-inventory/internal/service/reservation"
	"github.com/kirinyoku/tix-inventory/internal/testutil"
	"github.com/kirinyoku/tix-inventory/internal/uow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*postgresrepo.Store, *uow.UoW) {
	t.Helper()

	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)

	return store, uow.NewUoW(store)
}

func createTicketType(t *testing.T, u *uow.UoW, total int64) domain.TicketType {
	t.Helper()

	svc := admin.New(u, clock.NewFixed(now), nil)
	tt, err := svc.CreateTicketType(context.Background(), domain.TicketTypeSpec{
		EventID:       "ev-1",
		Name:          "General",
		PriceCents:    5000,
		TotalQuantity: total,
	})
	require.NoError(t, err)

	return tt
}

func assertMirrored(t *testing.T, store *postgresrepo.Store, id string) domain.Inventory {
	t.Helper()

	ctx := context.Background()
	inv, err := store.Query().GetInventory(ctx, id)
	require.NoError(t, err)
	tt, err := store.Query().GetTicketType(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, tt.Counts(), inv.Counts, "inventory must mirror the ticket type")
	assert.NoError(t, inv.Validate())

	return inv
}

func TestLedger_Scenario(t *testing.T) {
	store, u := setup(t)
	tt := createTicketType(t, u, 100)
	svc := reservation.New(u, clock.NewFixed(now), nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, tt.ID, 30)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, tt.ID, 20)
	require.NoError(t, err)
	_, err = svc.Release(ctx, tt.ID, 10)
	require.NoError(t, err)

	inv := assertMirrored(t, store, tt.ID)
	assert.Equal(t, domain.Counts{Total: 100, Available: 80, Sold: 20}, inv.Counts)
	assert.True(t, inv.LastUpdated.Equal(now))

	_, err = svc.Reserve(ctx, tt.ID, 150)
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)

	_, err = svc.Reserve(ctx, "00000000-0000-0000-0000-000000000000", 1)
	require.ErrorIs(t, err, domain.ErrNotFound)

	alerts, err := store.Query().ListStockLevels(ctx, domain.StockFilter{EventID: "ev-1"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertLow, domain.ClassifyStock(alerts[0].Available, 85))
}

func TestLedger_ConcurrentReserves(t *testing.T) {
	store, u := setup(t)

	const (
		available = 20
		attempts  = 60
	)

	tt := createTicketType(t, u, available)
	svc := reservation.New(u, clock.NewFixed(now), nil)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Reserve(context.Background(), tt.ID, 1)
			if err == nil {
				succeeded.Add(1)
				return
			}

			if !errors.Is(err, domain.ErrInsufficientInventory) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(available), succeeded.Load())

	inv := assertMirrored(t, store, tt.ID)
	assert.Equal(t, domain.Counts{Total: available, Reserved: available}, inv.Counts)
}

func TestLedger_CommitRejectsUnbalancedCounts(t *testing.T) {
	store, u := setup(t)
	tt := createTicketType(t, u, 10)

	err := u.Do(context.Background(), func(ctx context.Context, tx uow.Tx, _ func(uow.AfterCommit)) error {
		_, err := tx.Ledger().Commit(ctx, tt.ID, domain.Counts{Total: 10, Available: 10, Sold: 1}, now)
		return err
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	inv := assertMirrored(t, store, tt.ID)
	assert.Equal(t, domain.Counts{Total: 10, Available: 10}, inv.Counts)
}

func TestTicketTypes_Lifecycle(t *testing.T) {
	store, u := setup(t)
	ctx := context.Background()
	svc := admin.New(u, clock.NewFixed(now), nil)

	tt := createTicketType(t, u, 100)

	total := int64(120)
	updated, err := svc.UpdateTicketType(ctx, tt.ID, domain.TicketTypePatch{TotalQuantity: &total})
	require.NoError(t, err)
	assert.Equal(t, int64(120), updated.AvailableQuantity)
	assertMirrored(t, store, tt.ID)

	_, err = store.Query().GetTicketType(ctx, tt.ID)
	require.NoError(t, err)

	listed, err := store.Query().ListTicketTypesByEvent(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = store.Pool().Exec(ctx,
		`INSERT INTO holds (id, ticket_type_id, quantity, status) VALUES ('h-1', $1, 2, 'ACTIVE')`,
		tt.ID,
	)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTicketType(ctx, tt.ID))

	_, err = store.Query().GetInventory(ctx, tt.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	var status string
	require.NoError(t, store.Pool().QueryRow(ctx, `SELECT status FROM holds WHERE id = 'h-1'`).Scan(&status))
	assert.Equal(t, string(domain.HoldCancelled), status)

	sold := createTicketType(t, u, 10)
	res := reservation.New(u, clock.NewFixed(now), nil)
	_, err = res.Reserve(ctx, sold.ID, 5)
	require.NoError(t, err)
	_, err = res.Confirm(ctx, sold.ID, 5)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteTicketType(ctx, sold.ID), domain.ErrConflict)
}

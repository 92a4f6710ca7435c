package reservation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/service/changes"
	"github.com/kirinyoku/tix-inventory/internal/service/reservation"
	"github.com/kirinyoku/tix-inventory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T, seed ...domain.TicketType) (*reservation.Service, *testutil.MemStore, *testutil.Recorder) {
	t.Helper()

	store := testutil.NewMemStore()
	for _, tt := range seed {
		store.Seed(tt)
	}

	rec := &testutil.Recorder{}
	clk := clock.NewFixed(now)
	notify := changes.NewNotifier(rec, rec, clk, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return reservation.New(store, clk, notify), store, rec
}

func TestService_Scenario(t *testing.T) {
	svc, store, rec := newService(t, testutil.TicketType("tt-1", "ev-1", domain.Counts{Total: 100, Available: 100}))
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "tt-1", 30)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, "tt-1", 20)
	require.NoError(t, err)
	inv, err := svc.Release(ctx, "tt-1", 10)
	require.NoError(t, err)

	assert.Equal(t, domain.Counts{Total: 100, Available: 80, Sold: 20}, inv.Counts)
	assert.Equal(t, now, inv.LastUpdated)
	assert.Equal(t, "ev-1", inv.EventID)

	stored, err := store.GetTicketType(ctx, "tt-1")
	require.NoError(t, err)
	assert.Equal(t, inv.Counts, stored.Counts(), "ticket type and inventory must agree")

	assert.Equal(t, 3, rec.ChangeCount())
	last, ok := rec.LastChange()
	require.True(t, ok)
	assert.Equal(t, int64(80), last.Available)
	assert.True(t, last.IsActive)
	assert.Equal(t, now.Unix(), last.TsUnix)
	assert.Equal(t, []string{"ev-1", "ev-1", "ev-1"}, rec.Invalidated)
}

func TestService_FailuresLeaveLedgerUntouched(t *testing.T) {
	seed := testutil.TicketType("tt-1", "ev-1", domain.Counts{Total: 100, Available: 100})

	tests := []struct {
		name string
		run  func(*reservation.Service) error
		want error
	}{
		{"reserve beyond available", func(s *reservation.Service) error {
			_, err := s.Reserve(context.Background(), "tt-1", 150)
			return err
		}, domain.ErrInsufficientInventory},
		{"release beyond reserved", func(s *reservation.Service) error {
			_, err := s.Release(context.Background(), "tt-1", 1)
			return err
		}, domain.ErrOverRelease},
		{"confirm beyond reserved", func(s *reservation.Service) error {
			_, err := s.Confirm(context.Background(), "tt-1", 1)
			return err
		}, domain.ErrOverConfirm},
		{"zero quantity", func(s *reservation.Service) error {
			_, err := s.Reserve(context.Background(), "tt-1", 0)
			return err
		}, domain.ErrInvalidQuantity},
		{"unknown ticket type", func(s *reservation.Service) error {
			_, err := s.Reserve(context.Background(), "missing", 1)
			return err
		}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, rec := newService(t, seed)

			err := tt.run(svc)
			require.ErrorIs(t, err, tt.want)

			inv, err := store.GetInventory(context.Background(), "tt-1")
			require.NoError(t, err)
			assert.Equal(t, seed.Counts(), inv.Counts)
			assert.Zero(t, rec.ChangeCount(), "no side effects without a commit")
		})
	}
}

func TestService_ConcurrentReservesNeverOversell(t *testing.T) {
	const (
		available = 25
		attempts  = 100
	)

	svc, store, _ := newService(t, testutil.TicketType("tt-1", "ev-1", domain.Counts{Total: available, Available: available}))

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		rejected  atomic.Int64
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Reserve(context.Background(), "tt-1", 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientInventory):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(available), succeeded.Load())
	assert.Equal(t, int64(attempts-available), rejected.Load())

	inv, err := store.GetInventory(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Total: available, Reserved: available}, inv.Counts)
}

func TestService_RoundTrips(t *testing.T) {
	start := domain.Counts{Total: 40, Available: 25, Reserved: 5, Sold: 10}
	svc, _, _ := newService(t, testutil.TicketType("tt-1", "ev-1", start))
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "tt-1", 7)
	require.NoError(t, err)
	inv, err := svc.Release(ctx, "tt-1", 7)
	require.NoError(t, err)
	assert.Equal(t, start, inv.Counts)

	_, err = svc.Reserve(ctx, "tt-1", 3)
	require.NoError(t, err)
	inv, err = svc.Confirm(ctx, "tt-1", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Total: 40, Available: 22, Reserved: 5, Sold: 13}, inv.Counts)
	assert.NoError(t, inv.Validate())
}

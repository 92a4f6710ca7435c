package testutil

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/kirinyoku/tix-inventory/internal/domain"
	"github.com/kirinyoku/tix-inventory/internal/repository"
	"github.com/kirinyoku/tix-inventory/internal/uow"
)

// MemStore is an in-memory stand-in for the Postgres store. Units of work run
// one at a time on a private copy of the state that replaces the shared state
// only when the work succeeds, which gives the same all-or-nothing and
// serialized-writer behavior the row locks give in Postgres.
type MemStore struct {
	txMu sync.Mutex

	mu    sync.RWMutex
	state memState
}

type memState struct {
	types     map[string]domain.TicketType
	inventory map[string]string // ticket type id -> inventory id
	holds     map[string]domain.Hold
}

func (s memState) clone() memState {
	return memState{
		types:     maps.Clone(s.types),
		inventory: maps.Clone(s.inventory),
		holds:     maps.Clone(s.holds),
	}
}

func NewMemStore() *MemStore {
	return &MemStore{
		state: memState{
			types:     make(map[string]domain.TicketType),
			inventory: make(map[string]string),
			holds:     make(map[string]domain.Hold),
		},
	}
}

// Seed stores a ticket type with its ledger as-is.
func (m *MemStore) Seed(t domain.TicketType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.types[t.ID] = t
	m.state.inventory[t.ID] = "inv-" + t.ID
}

func (m *MemStore) AddHold(h domain.Hold) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.holds[h.ID] = h
}

func (m *MemStore) Hold(id string) (domain.Hold, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.state.holds[id]
	return h, ok
}

func (m *MemStore) Do(ctx context.Context, fn uow.Func) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	tx := &memTx{state: m.state.clone()}
	m.mu.RUnlock()

	var hooks []uow.AfterCommit
	if err := fn(ctx, tx, func(h uow.AfterCommit) { hooks = append(hooks, h) }); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = tx.state
	m.mu.Unlock()

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

func (m *MemStore) GetInventory(_ context.Context, ticketTypeID string) (domain.Inventory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.inventoryOf(ticketTypeID)
}

func (m *MemStore) ListInventoryByEvent(_ context.Context, eventID string) ([]domain.Inventory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Inventory{}
	for _, t := range m.state.sortedTypes() {
		if t.EventID != eventID {
			continue
		}

		inv, _ := m.state.inventoryOf(t.ID)
		out = append(out, inv)
	}

	return out, nil
}

func (m *MemStore) GetStockLevel(_ context.Context, ticketTypeID string) (domain.StockLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.state.types[ticketTypeID]
	if !ok {
		return domain.StockLevel{}, repository.ErrNotFound
	}

	return stockLevel(t), nil
}

func (m *MemStore) ListStockLevels(_ context.Context, f domain.StockFilter) ([]domain.StockLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.StockLevel{}
	for _, t := range m.state.sortedTypes() {
		if f.EventID != "" && t.EventID != f.EventID {
			continue
		}

		if f.MaxAvailable != nil && t.AvailableQuantity > *f.MaxAvailable {
			continue
		}

		if f.ActiveOnly && !t.IsActive {
			continue
		}

		out = append(out, stockLevel(t))
	}

	return out, nil
}

func (m *MemStore) GetTicketType(_ context.Context, id string) (domain.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.state.types[id]
	if !ok {
		return domain.TicketType{}, repository.ErrNotFound
	}

	return t, nil
}

func (m *MemStore) ListTicketTypes(_ context.Context, f domain.TicketTypeFilter) ([]domain.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.TicketType{}
	for _, t := range m.state.sortedTypes() {
		if f.Matches(t) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.TicketType) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

func (m *MemStore) ListTicketTypesByEvent(_ context.Context, eventID string) ([]domain.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.TicketType{}
	for _, t := range m.state.sortedTypes() {
		if t.EventID == eventID && t.IsActive {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.TicketType) int {
		switch {
		case a.PriceCents < b.PriceCents:
			return -1
		case a.PriceCents > b.PriceCents:
			return 1
		default:
			return 0
		}
	})

	return out, nil
}

func (s memState) sortedTypes() []domain.TicketType {
	ids := slices.Sorted(maps.Keys(s.types))

	out := make([]domain.TicketType, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.types[id])
	}

	return out
}

func (s memState) inventoryOf(ticketTypeID string) (domain.Inventory, error) {
	t, ok := s.types[ticketTypeID]
	if !ok {
		return domain.Inventory{}, repository.ErrNotFound
	}

	return domain.Inventory{
		ID:           s.inventory[ticketTypeID],
		TicketTypeID: t.ID,
		EventID:      t.EventID,
		IsActive:     t.IsActive,
		Counts:       t.Counts(),
		LastUpdated:  t.UpdatedAt,
	}, nil
}

func stockLevel(t domain.TicketType) domain.StockLevel {
	return domain.StockLevel{
		TicketTypeID:  t.ID,
		EventID:       t.EventID,
		IsActive:      t.IsActive,
		SaleStartDate: t.SaleStartDate,
		SaleEndDate:   t.SaleEndDate,
		Counts:        t.Counts(),
	}
}

type memTx struct {
	state memState
}

func (tx *memTx) Ledger() uow.LedgerRepo          { return tx }
func (tx *memTx) TicketTypes() uow.TicketTypeRepo { return memTicketTypes{tx} }
func (tx *memTx) Holds() uow.HoldRepo             { return tx }

func (tx *memTx) LoadForUpdate(_ context.Context, ticketTypeID string) (domain.Inventory, error) {
	return tx.state.inventoryOf(ticketTypeID)
}

func (tx *memTx) Commit(_ context.Context, ticketTypeID string, c domain.Counts, at time.Time) (domain.Inventory, error) {
	t, ok := tx.state.types[ticketTypeID]
	if !ok {
		return domain.Inventory{}, repository.ErrNotFound
	}

	if err := c.Validate(); err != nil {
		return domain.Inventory{}, fmt.Errorf("%w: %w", repository.ErrConflict, err)
	}

	t.SetCounts(c)
	t.UpdatedAt = at
	tx.state.types[ticketTypeID] = t

	return tx.state.inventoryOf(ticketTypeID)
}

func (tx *memTx) CancelActive(_ context.Context, ticketTypeID string, at time.Time) (int64, error) {
	var n int64
	for id, h := range tx.state.holds {
		if h.TicketTypeID != ticketTypeID || h.Status != domain.HoldActive {
			continue
		}

		h.Status = domain.HoldCancelled
		h.UpdatedAt = at
		tx.state.holds[id] = h
		n++
	}

	return n, nil
}

type memTicketTypes struct {
	tx *memTx
}

func (r memTicketTypes) Create(_ context.Context, t domain.TicketType, inventoryID string) (domain.TicketType, error) {
	if _, ok := r.tx.state.types[t.ID]; ok {
		return domain.TicketType{}, repository.ErrConflict
	}

	r.tx.state.types[t.ID] = t
	r.tx.state.inventory[t.ID] = inventoryID

	return t, nil
}

func (r memTicketTypes) GetForUpdate(_ context.Context, id string) (domain.TicketType, error) {
	t, ok := r.tx.state.types[id]
	if !ok {
		return domain.TicketType{}, repository.ErrNotFound
	}

	return t, nil
}

func (r memTicketTypes) Update(_ context.Context, t domain.TicketType) (domain.TicketType, error) {
	if _, ok := r.tx.state.types[t.ID]; !ok {
		return domain.TicketType{}, repository.ErrNotFound
	}

	if err := t.Counts().Validate(); err != nil {
		return domain.TicketType{}, fmt.Errorf("%w: %w", repository.ErrConflict, err)
	}

	r.tx.state.types[t.ID] = t

	return t, nil
}

func (r memTicketTypes) Delete(_ context.Context, id string) error {
	if _, ok := r.tx.state.types[id]; !ok {
		return repository.ErrNotFound
	}

	delete(r.tx.state.types, id)
	delete(r.tx.state.inventory, id)

	return nil
}

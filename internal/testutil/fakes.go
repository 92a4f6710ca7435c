package testutil

import (
	"context"
	"sync"

	"github.com/kirinyoku/tix-inventory/internal/domain"
)

// Recorder captures after-commit side effects.
type Recorder struct {
	mu          sync.Mutex
	Invalidated []string
	Changes     []domain.StockChange
}

func (r *Recorder) InvalidateStats(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Invalidated = append(r.Invalidated, eventID)
	return nil
}

func (r *Recorder) PublishChange(_ context.Context, ch domain.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Changes = append(r.Changes, ch)
	return nil
}

func (r *Recorder) ChangeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.Changes)
}

func (r *Recorder) LastChange() (domain.StockChange, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Changes) == 0 {
		return domain.StockChange{}, false
	}

	return r.Changes[len(r.Changes)-1], true
}

// TicketType builds an active ticket type with the given counters.
func TicketType(id, eventID string, c domain.Counts) domain.TicketType {
	t := domain.TicketType{
		ID:         id,
		EventID:    eventID,
		Name:       "General " + id,
		PriceCents: 5000,
		MaxPerUser: domain.DefaultMaxPerUser,
		IsActive:   true,
	}
	t.SetCounts(c)

	return t
}

package domain

import (
	"fmt"
	"time"
)

// NewTicketType validates a spec and builds the ticket type it describes with
// a fresh ledger. IDs and timestamps are set by the caller.
func NewTicketType(spec TicketTypeSpec) (TicketType, error) {
	if err := ValidateSaleWindow(spec.SaleStartDate, spec.SaleEndDate); err != nil {
		return TicketType{}, err
	}

	if spec.PriceCents < 0 {
		return TicketType{}, fmt.Errorf("%w: price must not be negative", ErrInvalidQuantity)
	}

	maxPerUser := spec.MaxPerUser
	if maxPerUser == 0 {
		maxPerUser = DefaultMaxPerUser
	}

	if err := validateMaxPerUser(maxPerUser); err != nil {
		return TicketType{}, err
	}

	counts, err := NewCounts(spec.TotalQuantity)
	if err != nil {
		return TicketType{}, err
	}

	active := true
	if spec.IsActive != nil {
		active = *spec.IsActive
	}

	t := TicketType{
		EventID:       spec.EventID,
		Name:          spec.Name,
		Description:   spec.Description,
		PriceCents:    spec.PriceCents,
		MaxPerUser:    maxPerUser,
		SaleStartDate: spec.SaleStartDate,
		SaleEndDate:   spec.SaleEndDate,
		IsActive:      active,
	}
	t.SetCounts(counts)

	return t, nil
}

// Apply merges a patch into the ticket type. A capacity change is routed
// through Counts.Resize so the ledger stays balanced.
func (t TicketType) Apply(p TicketTypePatch) (TicketType, error) {
	out := t

	if p.Name != nil {
		out.Name = *p.Name
	}

	if p.Description != nil {
		out.Description = *p.Description
	}

	if p.PriceCents != nil {
		if *p.PriceCents < 0 {
			return t, fmt.Errorf("%w: price must not be negative", ErrInvalidQuantity)
		}
		out.PriceCents = *p.PriceCents
	}

	if p.MaxPerUser != nil {
		if err := validateMaxPerUser(*p.MaxPerUser); err != nil {
			return t, err
		}
		out.MaxPerUser = *p.MaxPerUser
	}

	if p.SaleStartDate != nil {
		out.SaleStartDate = p.SaleStartDate
	}

	if p.SaleEndDate != nil {
		out.SaleEndDate = p.SaleEndDate
	}

	if err := ValidateSaleWindow(out.SaleStartDate, out.SaleEndDate); err != nil {
		return t, err
	}

	if p.IsActive != nil {
		out.IsActive = *p.IsActive
	}

	if p.TotalQuantity != nil {
		counts, err := t.Counts().Resize(*p.TotalQuantity)
		if err != nil {
			return t, err
		}
		out.SetCounts(counts)
	}

	return out, nil
}

func ValidateSaleWindow(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return fmt.Errorf("%w: %s >= %s", ErrWindowViolation, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return nil
}

func validateMaxPerUser(n int) error {
	if n < 1 || n > MaxMaxPerUser {
		return fmt.Errorf("%w: maxPerUser must be between 1 and %d, got %d", ErrInvalidQuantity, MaxMaxPerUser, n)
	}

	return nil
}

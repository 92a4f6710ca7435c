package command

import (
	"time"

	"github.com/kirinyoku/tix-inventory/internal/domain"
)

type TicketTypeRef struct {
	TicketTypeID string `json:"ticketTypeId" validate:"required"`
}

type EventRef struct {
	EventID string `json:"eventId" validate:"required"`
}

type IDRef struct {
	ID string `json:"id" validate:"required"`
}

// QuantityPayload drives check-availability and the three transitions.
// Quantity is range-checked by the ledger so that a non-positive value is
// reported as INVALID_QUANTITY rather than BAD_REQUEST.
type QuantityPayload struct {
	TicketTypeID string `json:"ticketTypeId" validate:"required"`
	Quantity     int64  `json:"quantity"`
	OperationID  string `json:"operationId,omitempty" validate:"omitempty,max=128"`
}

type LowStockPayload struct {
	Threshold int64 `json:"threshold"`
}

type StatsPayload struct {
	EventID string `json:"eventId,omitempty"`
}

type UpdateInventoryPayload struct {
	TicketTypeID   string `json:"ticketTypeId" validate:"required"`
	AvailableCount *int64 `json:"availableCount,omitempty"`
	ReservedCount  *int64 `json:"reservedCount,omitempty"`
	SoldCount      *int64 `json:"soldCount,omitempty"`
}

func (p UpdateInventoryPayload) Patch() domain.CountsPatch {
	return domain.CountsPatch{
		Available: p.AvailableCount,
		Reserved:  p.ReservedCount,
		Sold:      p.SoldCount,
	}
}

type CreateTicketTypePayload struct {
	EventID       string     `json:"eventId" validate:"required"`
	Name          string     `json:"name" validate:"required,max=200"`
	Description   string     `json:"description,omitempty"`
	PriceCents    int64      `json:"priceCents"`
	TotalQuantity int64      `json:"totalQuantity"`
	MaxPerUser    int        `json:"maxPerUser,omitempty"`
	SaleStartDate *time.Time `json:"saleStartDate,omitempty"`
	SaleEndDate   *time.Time `json:"saleEndDate,omitempty"`
	IsActive      *bool      `json:"isActive,omitempty"`
}

func (p CreateTicketTypePayload) Spec() domain.TicketTypeSpec {
	return domain.TicketTypeSpec{
		EventID:       p.EventID,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		TotalQuantity: p.TotalQuantity,
		MaxPerUser:    p.MaxPerUser,
		SaleStartDate: p.SaleStartDate,
		SaleEndDate:   p.SaleEndDate,
		IsActive:      p.IsActive,
	}
}

type FindAllTicketTypesPayload struct {
	EventID  string `json:"eventId,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
	Name     string `json:"name,omitempty"`
}

type UpdateTicketTypePayload struct {
	ID            string     `json:"id" validate:"required"`
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description,omitempty"`
	PriceCents    *int64     `json:"priceCents,omitempty"`
	TotalQuantity *int64     `json:"totalQuantity,omitempty"`
	MaxPerUser    *int       `json:"maxPerUser,omitempty"`
	SaleStartDate *time.Time `json:"saleStartDate,omitempty"`
	SaleEndDate   *time.Time `json:"saleEndDate,omitempty"`
	IsActive      *bool      `json:"isActive,omitempty"`
}

func (p UpdateTicketTypePayload) Patch() domain.TicketTypePatch {
	return domain.TicketTypePatch{
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		TotalQuantity: p.TotalQuantity,
		MaxPerUser:    p.MaxPerUser,
		SaleStartDate: p.SaleStartDate,
		SaleEndDate:   p.SaleEndDate,
		IsActive:      p.IsActive,
	}
}

// TransitionResult is the data of a successful reserve, release or confirm.
type TransitionResult struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Inventory domain.Inventory `json:"inventory"`
}

// TicketTypeAvailability answers ticket-type.check-availability. An unknown
// ticket type is reported as unavailable rather than as an error.
type TicketTypeAvailability struct {
	Available bool `json:"available"`
}

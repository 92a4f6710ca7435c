package domain

import (
	"strings"
	"time"
)

const (
	DefaultMaxPerUser = 10
	MaxMaxPerUser     = 50
)

type HoldStatus string

const (
	HoldActive    HoldStatus = "ACTIVE"
	HoldConfirmed HoldStatus = "CONFIRMED"
	HoldReleased  HoldStatus = "RELEASED"
	HoldCancelled HoldStatus = "CANCELLED"
)

// TicketType is a purchasable SKU of an event with its own quantity pool.
// Its counters mirror the Inventory record of the same ticket type.
type TicketType struct {
	ID                string     `json:"id"`
	EventID           string     `json:"eventId"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	PriceCents        int64      `json:"priceCents"`
	TotalQuantity     int64      `json:"totalQuantity"`
	AvailableQuantity int64      `json:"availableQuantity"`
	ReservedQuantity  int64      `json:"reservedQuantity"`
	SoldQuantity      int64      `json:"soldQuantity"`
	MaxPerUser        int        `json:"maxPerUser"`
	SaleStartDate     *time.Time `json:"saleStartDate,omitempty"`
	SaleEndDate       *time.Time `json:"saleEndDate,omitempty"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (t TicketType) Counts() Counts {
	return Counts{
		Total:     t.TotalQuantity,
		Available: t.AvailableQuantity,
		Reserved:  t.ReservedQuantity,
		Sold:      t.SoldQuantity,
	}
}

func (t TicketType) StockChange() StockChange {
	return StockChange{
		TicketTypeID: t.ID,
		EventID:      t.EventID,
		IsActive:     t.IsActive,
		Counts:       t.Counts(),
	}
}

func (t *TicketType) SetCounts(c Counts) {
	t.TotalQuantity = c.Total
	t.AvailableQuantity = c.Available
	t.ReservedQuantity = c.Reserved
	t.SoldQuantity = c.Sold
}

// Inventory is the ledger snapshot of one ticket type.
type Inventory struct {
	ID           string `json:"id"`
	TicketTypeID string `json:"ticketTypeId"`
	EventID      string `json:"-"`
	IsActive     bool   `json:"-"`
	Counts
	LastUpdated time.Time `json:"lastUpdated"`
}

// StockChange describes the snapshot for broadcasting. The caller stamps it.
func (i Inventory) StockChange() StockChange {
	return StockChange{
		TicketTypeID: i.TicketTypeID,
		EventID:      i.EventID,
		IsActive:     i.IsActive,
		Counts:       i.Counts,
	}
}

// StockLevel joins the sale attributes of a ticket type with its ledger counts.
type StockLevel struct {
	TicketTypeID  string
	EventID       string
	IsActive      bool
	SaleStartDate *time.Time
	SaleEndDate   *time.Time
	Counts
}

// OnSale reports whether now falls inside the sale window. Unset bounds are open.
func (s StockLevel) OnSale(now time.Time) bool {
	if s.SaleStartDate != nil && now.Before(*s.SaleStartDate) {
		return false
	}

	if s.SaleEndDate != nil && now.After(*s.SaleEndDate) {
		return false
	}

	return true
}

type StockFilter struct {
	EventID      string
	MaxAvailable *int64
	ActiveOnly   bool
}

type TicketTypeSpec struct {
	EventID       string
	Name          string
	Description   string
	PriceCents    int64
	TotalQuantity int64
	MaxPerUser    int
	SaleStartDate *time.Time
	SaleEndDate   *time.Time
	IsActive      *bool
}

type TicketTypePatch struct {
	Name          *string
	Description   *string
	PriceCents    *int64
	TotalQuantity *int64
	MaxPerUser    *int
	SaleStartDate *time.Time
	SaleEndDate   *time.Time
	IsActive      *bool
}

type TicketTypeFilter struct {
	EventID  string
	IsActive *bool
	Name     string
}

// Matches applies the filter the way the catalog listing does: name is a
// case-insensitive substring.
func (f TicketTypeFilter) Matches(t TicketType) bool {
	if f.EventID != "" && t.EventID != f.EventID {
		return false
	}

	if f.IsActive != nil && t.IsActive != *f.IsActive {
		return false
	}

	if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
		return false
	}

	return true
}

type Availability struct {
	Available      bool  `json:"available"`
	RemainingCount int64 `json:"remainingCount"`
}

type Hold struct {
	ID           string
	TicketTypeID string
	Quantity     int64
	Status       HoldStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockChange is published after every committed counter change and when a
// ticket type is removed.
type StockChange struct {
	TicketTypeID string `json:"ticketTypeId"`
	EventID      string `json:"eventId"`
	IsActive     bool   `json:"isActive"`
	Removed      bool   `json:"removed,omitempty"`
	Counts
	TsUnix int64 `json:"tsUnix"`
}

// AlertLevel classifies the change the way the low-stock listing does:
// removed, inactive and above-threshold ticket types are healthy.
func (c StockChange) AlertLevel(threshold int64) AlertLevel {
	if c.Removed || !c.IsActive {
		return AlertNone
	}

	return AlertFor(c.Available, threshold)
}

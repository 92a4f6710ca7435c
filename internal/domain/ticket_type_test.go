package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketType(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	tt, err := NewTicketType(TicketTypeSpec{
		EventID:       "event-1",
		Name:          "General",
		PriceCents:    2500,
		TotalQuantity: 100,
		SaleStartDate: &start,
		SaleEndDate:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 100, Available: 100}, tt.Counts())
	assert.Equal(t, DefaultMaxPerUser, tt.MaxPerUser)
	assert.True(t, tt.IsActive)

	_, err = NewTicketType(TicketTypeSpec{TotalQuantity: 10, SaleStartDate: &end, SaleEndDate: &start})
	require.ErrorIs(t, err, ErrWindowViolation)

	_, err = NewTicketType(TicketTypeSpec{TotalQuantity: 10, SaleStartDate: &start, SaleEndDate: &start})
	require.ErrorIs(t, err, ErrWindowViolation)

	_, err = NewTicketType(TicketTypeSpec{TotalQuantity: -1})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewTicketType(TicketTypeSpec{TotalQuantity: 1, MaxPerUser: 51})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestTicketType_Apply(t *testing.T) {
	tt := TicketType{ID: "t1", Name: "VIP", MaxPerUser: 4, IsActive: true}
	tt.SetCounts(Counts{Total: 100, Available: 10, Reserved: 80, Sold: 10})

	total := int64(50)
	_, err := tt.Apply(TicketTypePatch{TotalQuantity: &total})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	total = 150
	name := "VIP+"
	inactive := false
	out, err := tt.Apply(TicketTypePatch{TotalQuantity: &total, Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 150, Available: 60, Reserved: 80, Sold: 10}, out.Counts())
	assert.Equal(t, "VIP+", out.Name)
	assert.False(t, out.IsActive)

	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := end.Add(time.Hour)
	withEnd, err := tt.Apply(TicketTypePatch{SaleEndDate: &end})
	require.NoError(t, err)
	_, err = withEnd.Apply(TicketTypePatch{SaleStartDate: &start})
	require.ErrorIs(t, err, ErrWindowViolation)
}

func TestStockLevel_OnSale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	assert.True(t, StockLevel{}.OnSale(now))
	assert.True(t, StockLevel{SaleStartDate: &before, SaleEndDate: &after}.OnSale(now))
	assert.True(t, StockLevel{SaleStartDate: &now, SaleEndDate: &now}.OnSale(now))
	assert.False(t, StockLevel{SaleStartDate: &after}.OnSale(now))
	assert.False(t, StockLevel{SaleEndDate: &before}.OnSale(now))
}

func TestTicketTypeFilter_Matches(t *testing.T) {
	active := true
	tt := TicketType{EventID: "e1", Name: "Early Bird", IsActive: true}

	assert.True(t, TicketTypeFilter{}.Matches(tt))
	assert.True(t, TicketTypeFilter{EventID: "e1", Name: "bird", IsActive: &active}.Matches(tt))
	assert.False(t, TicketTypeFilter{EventID: "e2"}.Matches(tt))
	assert.False(t, TicketTypeFilter{Name: "vip"}.Matches(tt))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		count     int64
		threshold int64
		want      AlertLevel
	}{
		{0, 10, AlertSoldOut},
		{1, 10, AlertCritical},
		{5, 10, AlertCritical},
		{6, 10, AlertLow},
		{10, 10, AlertLow},
		{11, 10, AlertNone},
		{80, 85, AlertLow},
		{3, 2, AlertCritical},
		{10, 0, AlertLow},
		{11, 0, AlertNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStock(tt.count, tt.threshold), "count=%d threshold=%d", tt.count, tt.threshold)
	}
}

func TestAlertFor(t *testing.T) {
	assert.Equal(t, AlertNone, AlertFor(3, 2), "above the threshold")
	assert.Equal(t, AlertCritical, AlertFor(2, 2))
	assert.Equal(t, AlertSoldOut, AlertFor(0, 2))
	assert.Equal(t, AlertLow, AlertFor(10, 0))
	assert.Equal(t, AlertNone, AlertFor(11, 0))
}

func TestStockChange_AlertLevel(t *testing.T) {
	ch := StockChange{TicketTypeID: "a", IsActive: true, Counts: Counts{Total: 10, Available: 4, Sold: 6}}
	assert.Equal(t, AlertCritical, ch.AlertLevel(10))
	assert.Equal(t, AlertNone, ch.AlertLevel(3))

	inactive := ch
	inactive.IsActive = false
	assert.Equal(t, AlertNone, inactive.AlertLevel(10))

	removed := ch
	removed.Removed = true
	assert.Equal(t, AlertNone, removed.AlertLevel(10))
}

func TestAggregate(t *testing.T) {
	levels := []StockLevel{
		{TicketTypeID: "a", EventID: "e1", Counts: Counts{Total: 100, Available: 80, Sold: 20}},
		{TicketTypeID: "b", EventID: "e1", Counts: Counts{Total: 50, Available: 40, Reserved: 10}},
		{TicketTypeID: "c", EventID: "e2", Counts: Counts{Total: 10, Sold: 10}},
	}

	assert.Equal(t, Stats{
		TotalEvents:      2,
		TotalTicketTypes: 3,
		TotalTickets:     160,
		TotalSold:        30,
		TotalReserved:    10,
		TotalAvailable:   120,
	}, Aggregate(levels))

	assert.Equal(t, Stats{}, Aggregate(nil))
}

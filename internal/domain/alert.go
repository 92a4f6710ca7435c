package domain

type AlertLevel string

const (
	AlertNone     AlertLevel = ""
	AlertLow      AlertLevel = "LOW"
	AlertCritical AlertLevel = "CRITICAL"
	AlertSoldOut  AlertLevel = "SOLD_OUT"
)

const (
	DefaultLowStockThreshold int64 = 10
	criticalStockLevel       int64 = 5
)

type LowStockAlert struct {
	TicketTypeID   string     `json:"ticketTypeId"`
	EventID        string     `json:"eventId"`
	AvailableCount int64      `json:"availableCount"`
	Threshold      int64      `json:"threshold"`
	AlertLevel     AlertLevel `json:"alertLevel"`
}

// ClassifyStock derives the stock-health label of an available count.
// AlertNone means healthy. A non-positive threshold falls back to the default.
func ClassifyStock(count, threshold int64) AlertLevel {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	switch {
	case count <= 0:
		return AlertSoldOut
	case count <= criticalStockLevel:
		return AlertCritical
	case count <= threshold:
		return AlertLow
	default:
		return AlertNone
	}
}

// AlertFor is ClassifyStock behind the listing gate: a count above the
// threshold is healthy even when it would classify as critical.
func AlertFor(count, threshold int64) AlertLevel {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	if count > threshold {
		return AlertNone
	}

	return ClassifyStock(count, threshold)
}

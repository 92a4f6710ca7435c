package domain

type Stats struct {
	TotalEvents      int   `json:"totalEvents"`
	TotalTicketTypes int   `json:"totalTicketTypes"`
	TotalTickets     int64 `json:"totalTickets"`
	TotalSold        int64 `json:"totalSold"`
	TotalReserved    int64 `json:"totalReserved"`
	TotalAvailable   int64 `json:"totalAvailable"`
}

// Aggregate rolls stock levels up into totals and counts the distinct events
// they belong to.
func Aggregate(levels []StockLevel) Stats {
	events := make(map[string]struct{}, len(levels))

	var s Stats
	for _, l := range levels {
		events[l.EventID] = struct{}{}
		s.TotalTickets += l.Total
		s.TotalSold += l.Sold
		s.TotalReserved += l.Reserved
		s.TotalAvailable += l.Available
	}

	s.TotalEvents = len(events)
	s.TotalTicketTypes = len(levels)

	return s
}

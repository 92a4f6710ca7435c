package command

import "encoding/json"

const (
	PatternCheckAvailability = "inventory.check-availability"
	PatternGetByTicketType   = "inventory.get-by-ticket-type"
	PatternGetByEvent        = "inventory.get-by-event"
	PatternReserve           = "inventory.reserve-tickets"
	PatternRelease           = "inventory.release-reservation"
	PatternConfirm           = "inventory.confirm-purchase"
	PatternLowStockAlerts    = "inventory.get-low-stock-alerts"
	PatternStats             = "inventory.get-stats"
	PatternUpdateInventory   = "inventory.update"

	PatternCreateTicketType            = "ticket-type.create"
	PatternFindAllTicketTypes          = "ticket-type.find-all"
	PatternFindTicketTypesByEvt        = "ticket-type.find-by-event"
	PatternFindTicketTypeByID          = "ticket-type.find-by-id"
	PatternUpdateTicketType            = "ticket-type.update"
	PatternDeleteTicketType            = "ticket-type.delete"
	PatternTicketTypeCheckAvailability = "ticket-type.check-availability"
)

// Reply codes.
const (
	CodeNotFound              = "NOT_FOUND"
	CodeInsufficientInventory = "INSUFFICIENT_INVENTORY"
	CodeOverRelease           = "OVER_RELEASE"
	CodeOverConfirm           = "OVER_CONFIRM"
	CodeInvalidQuantity       = "INVALID_QUANTITY"
	CodeWindowViolation       = "WINDOW_VIOLATION"
	CodeConflict              = "CONFLICT"
	CodeInProgress            = "IN_PROGRESS"
	CodeBadRequest            = "BAD_REQUEST"
	CodeInternal              = "INTERNAL"
)

// Request is a named command with its JSON payload.
type Request struct {
	Pattern string          `json:"pattern"`
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Reply answers a Request with the same ID.
type Reply struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Code    string          `json:"code,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message"`
}

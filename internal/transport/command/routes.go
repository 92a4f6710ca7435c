package command

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kirinyoku/tix-inventory/internal/domain"
)

func (d *Dispatcher) routes(deps Deps) map[string]handler {
	transition := func(
		move func(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error),
		message string,
	) handler {
		return func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[QuantityPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			inv, err := move(ctx, p.TicketTypeID, p.Quantity)
			if err != nil {
				return nil, "", err
			}

			return TransitionResult{Success: true, Message: message, Inventory: inv}, message, nil
		}
	}

	return map[string]handler{
		PatternCheckAvailability: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[QuantityPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			a, err := deps.Query.CheckAvailability(ctx, p.TicketTypeID, p.Quantity)
			return a, "availability checked", err
		},

		PatternTicketTypeCheckAvailability: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[QuantityPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			a, err := deps.Query.CheckAvailability(ctx, p.TicketTypeID, p.Quantity)
			if errors.Is(err, domain.ErrNotFound) {
				return TicketTypeAvailability{}, "availability checked", nil
			}
			if err != nil {
				return nil, "", err
			}

			return TicketTypeAvailability{Available: a.Available}, "availability checked", nil
		},

		PatternGetByTicketType: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[TicketTypeRef](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			inv, err := deps.Query.GetInventory(ctx, p.TicketTypeID)
			return inv, "inventory found", err
		},

		PatternGetByEvent: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[EventRef](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			list, err := deps.Query.ListInventoryByEvent(ctx, p.EventID)
			return list, "inventory listed", err
		},

		PatternReserve: transition(deps.Reservation.Reserve, "Tickets reserved successfully"),
		PatternRelease: transition(deps.Reservation.Release, "Reservation released successfully"),
		PatternConfirm: transition(deps.Reservation.Confirm, "Purchase confirmed successfully"),

		PatternLowStockAlerts: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[LowStockPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			alerts, err := deps.Query.LowStockAlerts(ctx, p.Threshold)
			return alerts, "low stock alerts listed", err
		},

		PatternStats: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[StatsPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			stats, err := deps.Query.Stats(ctx, p.EventID)
			return stats, "stats computed", err
		},

		PatternUpdateInventory: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[UpdateInventoryPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			inv, err := deps.Admin.OverrideInventory(ctx, p.TicketTypeID, p.Patch())
			return inv, "inventory updated", err
		},

		PatternCreateTicketType: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[CreateTicketTypePayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			t, err := deps.Admin.CreateTicketType(ctx, p.Spec())
			return t, "ticket type created", err
		},

		PatternFindAllTicketTypes: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[FindAllTicketTypesPayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			list, err := deps.Query.ListTicketTypes(ctx, domain.TicketTypeFilter{
				EventID:  p.EventID,
				IsActive: p.IsActive,
				Name:     p.Name,
			})
			return list, "ticket types listed", err
		},

		PatternFindTicketTypesByEvt: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[EventRef](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			list, err := deps.Query.ListTicketTypesByEvent(ctx, p.EventID)
			return list, "ticket types listed", err
		},

		PatternFindTicketTypeByID: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[IDRef](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			t, err := deps.Query.GetTicketType(ctx, p.ID)
			return t, "ticket type found", err
		},

		PatternUpdateTicketType: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[UpdateTicketTypePayload](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			t, err := deps.Admin.UpdateTicketType(ctx, p.ID, p.Patch())
			return t, "ticket type updated", err
		},

		PatternDeleteTicketType: func(ctx context.Context, data json.RawMessage) (any, string, error) {
			p, err := decode[IDRef](d.validate, data)
			if err != nil {
				return nil, "", err
			}

			if err := deps.Admin.DeleteTicketType(ctx, p.ID); err != nil {
				return nil, "", err
			}

			return IDRef{ID: p.ID}, "ticket type deleted", nil
		},
	}
}

package httpgin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tix-inventory/internal/transport/command"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dispatcher runs one named command. The HTTP facade is a thin translation
// onto the same commands the Kafka server answers.
type Dispatcher interface {
	Dispatch(ctx context.Context, req command.Request) command.Reply
}

const (
	cacheLive    = "no-cache"
	cacheCatalog = "public, max-age=30"
)

type handlers struct {
	d      Dispatcher
	logger *slog.Logger
}

func NewRouter(
	d Dispatcher,
	limiter Limiter,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	h := &handlers{d: d, logger: logger}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/inventory/alerts", h.lowStockAlerts)
	r.GET("/inventory/stats", h.stats)
	r.GET("/inventory/:ticketTypeId", h.getInventory)
	r.GET("/inventory/:ticketTypeId/availability", h.checkAvailability)
	r.GET("/events/:eventId/inventory", h.listEventInventory)
	r.GET("/events/:eventId/ticket-types", h.listEventTicketTypes)
	r.GET("/ticket-types", h.listTicketTypes)
	r.GET("/ticket-types/:id", h.getTicketType)
	r.GET("/ticket-types/:id/availability", h.ticketTypeAvailability)

	transitions := r.Group("/inventory/:ticketTypeId", RateLimitMiddleware(limiter, logger))
	{
		transitions.POST("/reserve", h.transition(command.PatternReserve))
		transitions.POST("/release", h.transition(command.PatternRelease))
		transitions.POST("/confirm", h.transition(command.PatternConfirm))
	}

	// Admin-API
	// TODO: guard /admin with the gateway's service token once it is issued
	admin := r.Group("/admin")
	{
		admin.POST("/ticket-types", h.createTicketType)
		admin.PATCH("/ticket-types/:id", h.updateTicketType)
		admin.DELETE("/ticket-types/:id", h.deleteTicketType)
		admin.PATCH("/inventory/:ticketTypeId", h.overrideInventory)
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get inventory of a ticket type
// @Param    ticketTypeId  path  string  true  "Ticket type ID"
// @Success  200  {object}  domain.Inventory
// @Failure  404  {object}  ErrorResponse
// @Router   /inventory/{ticketTypeId} [get]
func (h *handlers) getInventory(c *gin.Context) {
	h.query(c, command.PatternGetByTicketType, command.TicketTypeRef{
		TicketTypeID: c.Param("ticketTypeId"),
	}, cacheLive)
}

// @Summary  Check availability
// @Param    ticketTypeId  path   string  true  "Ticket type ID"
// @Param    quantity      query  int     true  "requested quantity"
// @Success  200  {object}  domain.Availability
// @Failure  404  {object}  ErrorResponse
// @Failure  422  {object}  ErrorResponse
// @Router   /inventory/{ticketTypeId}/availability [get]
func (h *handlers) checkAvailability(c *gin.Context) {
	quantity, ok := parseInt64Query(c, "quantity", 1)
	if !ok {
		return
	}

	h.query(c, command.PatternCheckAvailability, command.QuantityPayload{
		TicketTypeID: c.Param("ticketTypeId"),
		Quantity:     quantity,
	}, cacheLive)
}

// @Summary  Check whether a ticket type can be bought
// @Param    id        path   string  true  "Ticket type ID"
// @Param    quantity  query  int     true  "requested quantity"
// @Success  200  {object}  command.TicketTypeAvailability
// @Failure  422  {object}  ErrorResponse
// @Router   /ticket-types/{id}/availability [get]
func (h *handlers) ticketTypeAvailability(c *gin.Context) {
	quantity, ok := parseInt64Query(c, "quantity", 1)
	if !ok {
		return
	}

	h.query(c, command.PatternTicketTypeCheckAvailability, command.QuantityPayload{
		TicketTypeID: c.Param("id"),
		Quantity:     quantity,
	}, cacheLive)
}

// @Summary  List inventory of an event
// @Param    eventId  path  string  true  "Event ID"
// @Success  200  {array}  domain.Inventory
// @Router   /events/{eventId}/inventory [get]
func (h *handlers) listEventInventory(c *gin.Context) {
	h.query(c, command.PatternGetByEvent, command.EventRef{
		EventID: c.Param("eventId"),
	}, cacheLive)
}

// @Summary  Low stock alerts
// @Param    threshold  query  int  false  "alert threshold (default 10)"
// @Success  200  {array}  domain.LowStockAlert
// @Router   /inventory/alerts [get]
func (h *handlers) lowStockAlerts(c *gin.Context) {
	threshold, ok := parseInt64Query(c, "threshold", 0)
	if !ok {
		return
	}

	h.query(c, command.PatternLowStockAlerts, command.LowStockPayload{Threshold: threshold}, cacheLive)
}

// @Summary  Inventory stats
// @Param    eventId  query  string  false  "restrict to one event"
// @Success  200  {object}  domain.Stats
// @Router   /inventory/stats [get]
func (h *handlers) stats(c *gin.Context) {
	h.query(c, command.PatternStats, command.StatsPayload{EventID: c.Query("eventId")}, cacheLive)
}

// @Summary  Reserve, release or confirm tickets (idempotent)
// @Param    ticketTypeId     path    string             true   "Ticket type ID"
// @Param    Idempotency-Key  header  string             false  "operation id"
// @Param    req              body    QuantityRequest    true   "payload"
// @Success  200  {object}  command.TransitionResult
// @Failure  409  {object}  ErrorResponse "insufficient inventory / operation in progress"
// @Failure  422  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /inventory/{ticketTypeId}/reserve [post]
// @Router   /inventory/{ticketTypeId}/release [post]
// @Router   /inventory/{ticketTypeId}/confirm [post]
func (h *handlers) transition(pattern string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		opID := strings.TrimSpace(c.GetHeader("Idempotency-Key"))

		reply, ok := h.dispatch(c, pattern, command.QuantityPayload{
			TicketTypeID: c.Param("ticketTypeId"),
			Quantity:     req.Quantity,
			OperationID:  opID,
		})
		if !ok {
			return
		}

		if opID != "" {
			c.Header("Idempotency-Key", opID)
		}
		c.Data(http.StatusOK, jsonContentType, reply.Data)
	}
}

// @Summary  List ticket types
// @Param    eventId   query  string  false  "Event ID"
// @Param    name      query  string  false  "name contains"
// @Param    isActive  query  bool    false  "active flag"
// @Success  200  {array}  domain.TicketType
// @Router   /ticket-types [get]
func (h *handlers) listTicketTypes(c *gin.Context) {
	p := command.FindAllTicketTypesPayload{
		EventID: c.Query("eventId"),
		Name:    c.Query("name"),
	}

	if s := c.Query("isActive"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			badRequest(c, "invalid isActive")
			return
		}
		p.IsActive = &v
	}

	h.query(c, command.PatternFindAllTicketTypes, p, cacheCatalog)
}

// @Summary  Get ticket type
// @Param    id  path  string  true  "Ticket type ID"
// @Success  200  {object}  domain.TicketType
// @Failure  404  {object}  ErrorResponse
// @Router   /ticket-types/{id} [get]
func (h *handlers) getTicketType(c *gin.Context) {
	h.query(c, command.PatternFindTicketTypeByID, command.IDRef{ID: c.Param("id")}, cacheCatalog)
}

// @Summary  List active ticket types of an event
// @Param    eventId  path  string  true  "Event ID"
// @Success  200  {array}  domain.TicketType
// @Router   /events/{eventId}/ticket-types [get]
func (h *handlers) listEventTicketTypes(c *gin.Context) {
	h.query(c, command.PatternFindTicketTypesByEvt, command.EventRef{
		EventID: c.Param("eventId"),
	}, cacheCatalog)
}

// @Summary  Create ticket type
// @Param    req  body  command.CreateTicketTypePayload  true  "payload"
// @Success  201  {object}  domain.TicketType
// @Failure  400  {object}  ErrorResponse
// @Router   /admin/ticket-types [post]
func (h *handlers) createTicketType(c *gin.Context) {
	var req command.CreateTicketTypePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reply, ok := h.dispatch(c, command.PatternCreateTicketType, req)
	if !ok {
		return
	}

	c.Data(http.StatusCreated, jsonContentType, reply.Data)
}

// @Summary  Update ticket type
// @Param    id   path  string                           true  "Ticket type ID"
// @Param    req  body  command.UpdateTicketTypePayload  true  "payload"
// @Success  200  {object}  domain.TicketType
// @Failure  404  {object}  ErrorResponse
// @Failure  422  {object}  ErrorResponse
// @Router   /admin/ticket-types/{id} [patch]
func (h *handlers) updateTicketType(c *gin.Context) {
	var req command.UpdateTicketTypePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	req.ID = c.Param("id")

	reply, ok := h.dispatch(c, command.PatternUpdateTicketType, req)
	if !ok {
		return
	}

	c.Data(http.StatusOK, jsonContentType, reply.Data)
}

// @Summary  Delete ticket type
// @Param    id  path  string  true  "Ticket type ID"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "tickets already sold"
// @Router   /admin/ticket-types/{id} [delete]
func (h *handlers) deleteTicketType(c *gin.Context) {
	if _, ok := h.dispatch(c, command.PatternDeleteTicketType, command.IDRef{ID: c.Param("id")}); !ok {
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary  Override inventory counters
// @Param    ticketTypeId  path  string                    true  "Ticket type ID"
// @Param    req           body  OverrideInventoryRequest  true  "payload"
// @Success  200  {object}  domain.Inventory
// @Failure  422  {object}  ErrorResponse
// @Router   /admin/inventory/{ticketTypeId} [patch]
func (h *handlers) overrideInventory(c *gin.Context) {
	var req OverrideInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reply, ok := h.dispatch(c, command.PatternUpdateInventory, command.UpdateInventoryPayload{
		TicketTypeID:   c.Param("ticketTypeId"),
		AvailableCount: req.AvailableCount,
		ReservedCount:  req.ReservedCount,
		SoldCount:      req.SoldCount,
	})
	if !ok {
		return
	}

	c.Data(http.StatusOK, jsonContentType, reply.Data)
}

// --- Helpers ---

const jsonContentType = "application/json; charset=utf-8"

// query dispatches a read command and writes its data with an ETag.
func (h *handlers) query(c *gin.Context, pattern string, payload any, cacheControl string) {
	reply, ok := h.dispatch(c, pattern, payload)
	if !ok {
		return
	}

	writeJSONWithCache(c, http.StatusOK, reply.Data, cacheControl, true)
}

// dispatch runs a command and writes the error response when it fails.
func (h *handlers) dispatch(c *gin.Context, pattern string, payload any) (command.Reply, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode command", slog.String("pattern", pattern), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    command.CodeInternal,
			Error:   "Internal Server Error",
			Message: "internal error",
		})
		return command.Reply{}, false
	}

	reply := h.d.Dispatch(c.Request.Context(), command.Request{
		Pattern: pattern,
		ID:      c.GetString("request_id"),
		Data:    data,
	})

	if !reply.Success {
		respondReply(c, reply)
		return reply, false
	}

	return reply, true
}

func respondReply(c *gin.Context, reply command.Reply) {
	if reply.Code == command.CodeInProgress {
		c.Header("Retry-After", "1")
	}

	c.JSON(statusFor(reply.Code), ErrorResponse{
		Code:    reply.Code,
		Error:   reply.Error,
		Message: reply.Message,
	})
}

func statusFor(code string) int {
	switch code {
	case command.CodeNotFound:
		return http.StatusNotFound
	case command.CodeInsufficientInventory,
		command.CodeOverRelease,
		command.CodeOverConfirm,
		command.CodeConflict,
		command.CodeInProgress:
		return http.StatusConflict
	case command.CodeInvalidQuantity:
		return http.StatusUnprocessableEntity
	case command.CodeWindowViolation, command.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseInt64Query(c *gin.Context, name string, def int64) (int64, bool) {
	s := c.Query(name)
	if s == "" {
		return def, true
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}

	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    command.CodeBadRequest,
		Error:   "Bad Request",
		Message: msg,
	})
}

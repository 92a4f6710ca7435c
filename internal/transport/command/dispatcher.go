package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Reservation interface {
	Reserve(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error)
	Release(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error)
	Confirm(ctx context.Context, ticketTypeID string, quantity int64) (domain.Inventory, error)
}

type Query interface {
	CheckAvailability(ctx context.Context, ticketTypeID string, quantity int64) (domain.Availability, error)
	GetInventory(ctx context.Context, ticketTypeID string) (domain.Inventory, error)
	ListInventoryByEvent(ctx context.Context, eventID string) ([]domain.Inventory, error)
	LowStockAlerts(ctx context.Context, threshold int64) ([]domain.LowStockAlert, error)
	Stats(ctx context.Context, eventID string) (domain.Stats, error)
	GetTicketType(ctx context.Context, id string) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, f domain.TicketTypeFilter) ([]domain.TicketType, error)
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
}

type Admin interface {
	CreateTicketType(ctx context.Context, spec domain.TicketTypeSpec) (domain.TicketType, error)
	UpdateTicketType(ctx context.Context, id string, patch domain.TicketTypePatch) (domain.TicketType, error)
	DeleteTicketType(ctx context.Context, id string) error
	OverrideInventory(ctx context.Context, ticketTypeID string, patch domain.CountsPatch) (domain.Inventory, error)
}

// IdempotencyStore remembers replies by operation key.
type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, payload []byte) error
	GetResult(ctx context.Context, key string) ([]byte, bool, error)
	Release(ctx context.Context, key string) error
}

type Deps struct {
	Reservation Reservation
	Query       Query
	Admin       Admin
	// Idempotency may be nil, in which case operation ids are ignored.
	Idempotency IdempotencyStore
	Log         *slog.Logger
}

type Config struct {
	// LockTTL bounds how long an in-flight operation id blocks duplicates.
	LockTTL time.Duration
}

// handler decodes its payload and runs one command. message is the human
// readable summary put on a successful reply.
type handler func(ctx context.Context, data json.RawMessage) (result any, message string, err error)

// Dispatcher routes named commands to the services and turns their outcome
// into replies. It is the only place where domain errors become reply codes.
type Dispatcher struct {
	handlers map[string]handler
	idem     IdempotencyStore
	validate *validator.Validate
	tracer   trace.Tracer
	log      *slog.Logger
	cfg      Config
}

func NewDispatcher(deps Deps, cfg Config) *Dispatcher {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	d := &Dispatcher{
		idem:     deps.Idempotency,
		validate: validate,
		tracer:   otel.Tracer("github.com/kirinyoku/tix-inventory/internal/transport/command"),
		log:      deps.Log,
		cfg:      cfg,
	}
	d.handlers = d.routes(deps)

	return d
}

// Patterns lists every command the dispatcher accepts.
func (d *Dispatcher) Patterns() []string {
	out := make([]string, 0, len(d.handlers))
	for p := range d.handlers {
		out = append(out, p)
	}

	return out
}

// Dispatch runs one command. It never fails: every outcome is a Reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Reply {
	ctx, span := d.tracer.Start(ctx, req.Pattern,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("command.pattern", req.Pattern),
			attribute.String("command.id", req.ID),
		),
	)
	defer span.End()

	reply := d.dispatch(ctx, req)
	reply.ID = req.ID

	if reply.Code != "" {
		span.SetAttributes(attribute.String("command.code", reply.Code))
	}

	if reply.Code == CodeInternal {
		span.SetStatus(otelcodes.Error, reply.Message)
	}

	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Reply {
	h, ok := d.handlers[req.Pattern]
	if !ok {
		return Reply{
			Code:    CodeBadRequest,
			Error:   "Bad Request",
			Message: fmt.Sprintf("unknown pattern %q", req.Pattern),
		}
	}

	op, ok := operationOf(req)
	if !ok || d.idem == nil {
		return d.run(ctx, req, h)
	}

	if stored, ok := d.replay(ctx, op); ok {
		return stored
	}

	locked, err := d.idem.AcquireLock(ctx, op.key, d.cfg.LockTTL)
	if err != nil {
		return d.internal(req, fmt.Errorf("acquire operation lock: %w", err))
	}

	if !locked {
		if stored, ok := d.replay(ctx, op); ok {
			return stored
		}

		return Reply{
			Code:    CodeInProgress,
			Error:   "Conflict",
			Message: fmt.Sprintf("operation %s is already in progress", op.id),
		}
	}

	reply := d.run(ctx, req, h)

	// the outcome must be recorded even when the caller has gone away
	saveCtx := context.WithoutCancel(ctx)

	if !reply.Success {
		if err := d.idem.Release(saveCtx, op.key); err != nil {
			d.log.Warn("release operation lock", slog.String("key", op.key), slog.Any("error", err))
		}

		return reply
	}

	b, err := json.Marshal(storedReply{Fingerprint: op.fingerprint, Reply: reply})
	if err == nil {
		err = d.idem.SaveResult(saveCtx, op.key, b)
	}
	if err != nil {
		d.log.Warn("store operation result", slog.String("key", op.key), slog.Any("error", err))
	}

	return reply
}

// storedReply is what an operation id remembers: the reply and the payload it
// was produced for.
type storedReply struct {
	Fingerprint string `json:"fingerprint"`
	Reply       Reply  `json:"reply"`
}

// replay returns the stored reply of op. An operation id reused with another
// payload is answered with CONFLICT instead.
func (d *Dispatcher) replay(ctx context.Context, op operation) (Reply, bool) {
	b, ok, err := d.idem.GetResult(ctx, op.key)
	if err != nil {
		d.log.Warn("read operation result", slog.String("key", op.key), slog.Any("error", err))
		return Reply{}, false
	}

	if !ok {
		return Reply{}, false
	}

	var stored storedReply
	if err := json.Unmarshal(b, &stored); err != nil {
		return Reply{}, false
	}

	if stored.Fingerprint != op.fingerprint {
		return Reply{
			Code:    CodeConflict,
			Error:   "Conflict",
			Message: fmt.Sprintf("operation %s was already used with a different ticket type or quantity", op.id),
		}, true
	}

	return stored.Reply, true
}

func (d *Dispatcher) run(ctx context.Context, req Request, h handler) Reply {
	result, message, err := h(ctx, req.Data)
	if err != nil {
		return d.failure(req, err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return d.internal(req, fmt.Errorf("encode result: %w", err))
	}

	d.log.Debug("command handled", slog.String("pattern", req.Pattern), slog.String("id", req.ID))

	return Reply{Success: true, Data: data, Message: message}
}

// errBadRequest marks payload decoding and validation failures.
var errBadRequest = errors.New("bad request")

var codes = []struct {
	err    error
	code   string
	status string
}{
	{domain.ErrNotFound, CodeNotFound, "Not Found"},
	{domain.ErrInsufficientInventory, CodeInsufficientInventory, "Conflict"},
	{domain.ErrOverRelease, CodeOverRelease, "Conflict"},
	{domain.ErrOverConfirm, CodeOverConfirm, "Conflict"},
	{domain.ErrInvalidQuantity, CodeInvalidQuantity, "Unprocessable Entity"},
	{domain.ErrWindowViolation, CodeWindowViolation, "Bad Request"},
	{domain.ErrConflict, CodeConflict, "Conflict"},
	{errBadRequest, CodeBadRequest, "Bad Request"},
}

func (d *Dispatcher) failure(req Request, err error) Reply {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			d.log.Debug("command rejected",
				slog.String("pattern", req.Pattern),
				slog.String("code", c.code),
				slog.Any("error", err),
			)

			return Reply{Code: c.code, Error: c.status, Message: publicMessage(err, c.err)}
		}
	}

	return d.internal(req, err)
}

func (d *Dispatcher) internal(req Request, err error) Reply {
	d.log.Error("command failed",
		slog.String("pattern", req.Pattern),
		slog.String("id", req.ID),
		slog.Any("error", err),
	)

	return Reply{Code: CodeInternal, Error: "Internal Server Error", Message: "internal error"}
}

// publicMessage drops the operation chain in front of the sentinel so callers
// see only the domain explanation.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}

	return sentinel.Error()
}

// operation is a deduplicated transition.
type operation struct {
	id          string
	key         string
	fingerprint string
}

func operationOf(req Request) (operation, bool) {
	switch req.Pattern {
	case PatternReserve, PatternRelease, PatternConfirm:
	default:
		return operation{}, false
	}

	var p QuantityPayload
	if err := json.Unmarshal(req.Data, &p); err != nil || p.OperationID == "" {
		return operation{}, false
	}

	return operation{
		id:          p.OperationID,
		key:         req.Pattern + ":" + p.OperationID,
		fingerprint: fmt.Sprintf("%s/%d", p.TicketTypeID, p.Quantity),
	}, true
}

// decode unmarshals data into a T and validates it. An empty payload decodes
// to the zero value.
func decode[T any](v *validator.Validate, data json.RawMessage) (T, error) {
	var out T

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return out, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	if err := v.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return out, fmt.Errorf("%w: field %s failed on %s", errBadRequest, fe.Field(), fe.Tag())
		}

		return out, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return out, nil
}

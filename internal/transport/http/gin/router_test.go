package httpgin_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/domain"
	redisrepo "github.com/kirinyoku/tix-inventory/internal/repository/redis"
	"github.com/kirinyoku/tix-inventory/internal/service"
	"github.com/kirinyoku/tix-inventory/internal/testutil"
	"github.com/kirinyoku/tix-inventory/internal/transport/command"
	httpgin "github.com/kirinyoku/tix-inventory/internal/transport/http/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allow bool
}

func (l stubLimiter) Allow(context.Context, string) (redisrepo.Decision, error) {
	if l.allow {
		return redisrepo.Decision{Allowed: true, Current: 1}, nil
	}
	return redisrepo.Decision{Current: 11, RetryAfter: 2500 * time.Millisecond}, nil
}

func newRouter(t *testing.T, limiter httpgin.Limiter) (*gin.Engine, *testutil.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := testutil.NewMemStore()
	store.Seed(testutil.TicketType("tt-1", "ev-1", domain.Counts{Total: 100, Available: 100}))

	svcs := service.NewServices(service.Deps{
		UoW:    store,
		Reader: store,
		Clock:  clock.NewFixed(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)),
	}, service.Config{})

	d := command.NewDispatcher(command.Deps{
		Reservation: svcs.Reservation,
		Query:       svcs.Query,
		Admin:       svcs.Admin,
		Log:         logger,
	}, command.Config{})

	return httpgin.NewRouter(d, limiter, logger), store
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ReserveFlow(t *testing.T) {
	r, _ := newRouter(t, stubLimiter{allow: true})

	w := do(r, http.MethodPost, "/inventory/tt-1/reserve", `{"quantity":30}`, "Idempotency-Key", "op-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "op-1", w.Header().Get("Idempotency-Key"))

	var res command.TransitionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Tickets reserved successfully", res.Message)
	assert.Equal(t, int64(70), res.Inventory.Available)

	w = do(r, http.MethodPost, "/inventory/tt-1/confirm", `{"quantity":20}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(r, http.MethodPost, "/inventory/tt-1/release", `{"quantity":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/inventory/tt-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	var inv domain.Inventory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, domain.Counts{Total: 100, Available: 80, Sold: 20}, inv.Counts)

	w = do(r, http.MethodGet, "/inventory/alerts?threshold=85", "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []domain.LowStockAlert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertLow, alerts[0].AlertLevel)

	w = do(r, http.MethodGet, "/inventory/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(20), stats.TotalSold)
}

func TestRouter_ErrorStatuses(t *testing.T) {
	r, _ := newRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"insufficient", http.MethodPost, "/inventory/tt-1/reserve", `{"quantity":150}`, http.StatusConflict, command.CodeInsufficientInventory},
		{"over release", http.MethodPost, "/inventory/tt-1/release", `{"quantity":1}`, http.StatusConflict, command.CodeOverRelease},
		{"over confirm", http.MethodPost, "/inventory/tt-1/confirm", `{"quantity":1}`, http.StatusConflict, command.CodeOverConfirm},
		{"zero quantity", http.MethodPost, "/inventory/tt-1/reserve", `{"quantity":0}`, http.StatusUnprocessableEntity, command.CodeInvalidQuantity},
		{"unknown ticket type", http.MethodGet, "/inventory/nope", "", http.StatusNotFound, command.CodeNotFound},
		{"malformed body", http.MethodPost, "/inventory/tt-1/reserve", `{"quantity":`, http.StatusBadRequest, command.CodeBadRequest},
		{"bad quantity query", http.MethodGet, "/inventory/tt-1/availability?quantity=x", "", http.StatusBadRequest, command.CodeBadRequest},
		{"shrink below committed", http.MethodPatch, "/admin/inventory/tt-1", `{"soldCount":200}`, http.StatusUnprocessableEntity, command.CodeInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			var er httpgin.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er))
			assert.Equal(t, tt.code, er.Code)
			assert.NotEmpty(t, er.Message)
		})
	}
}

func TestRouter_Availability(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := do(r, http.MethodGet, "/inventory/tt-1/availability?quantity=40", "")
	require.Equal(t, http.StatusOK, w.Code)

	var a domain.Availability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.True(t, a.Available)
	assert.Equal(t, int64(100), a.RemainingCount)
}

func TestRouter_TicketTypeAvailability(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := do(r, http.MethodGet, "/ticket-types/tt-1/availability?quantity=40", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"available":true}`, w.Body.String())

	w = do(r, http.MethodGet, "/ticket-types/nope/availability", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"available":false}`, w.Body.String())
}

func TestRouter_ETagRevalidation(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := do(r, http.MethodGet, "/ticket-types/tt-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "public, max-age=30", w.Header().Get("Cache-Control"))

	w = do(r, http.MethodGet, "/ticket-types/tt-1", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRouter_TicketTypeLifecycle(t *testing.T) {
	r, store := newRouter(t, nil)

	w := do(r, http.MethodPost, "/admin/ticket-types",
		`{"eventId":"ev-2","name":"VIP","priceCents":9900,"totalQuantity":50}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.TicketType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, int64(50), created.AvailableQuantity)

	w = do(r, http.MethodPatch, "/admin/ticket-types/"+created.ID, `{"totalQuantity":80}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	inv, err := store.GetInventory(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), inv.Available)

	w = do(r, http.MethodGet, "/events/ev-2/ticket-types", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.TicketType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = do(r, http.MethodPost, "/admin/ticket-types",
		`{"eventId":"ev-2","name":"Late","totalQuantity":5,"saleStartDate":"2026-07-02T00:00:00Z","saleEndDate":"2026-07-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/admin/ticket-types/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/ticket-types/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RateLimited(t *testing.T) {
	r, _ := newRouter(t, stubLimiter{allow: false})

	w := do(r, http.MethodPost, "/inventory/tt-1/reserve", `{"quantity":1}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))

	w = do(r, http.MethodGet, "/inventory/tt-1", "")
	assert.Equal(t, http.StatusOK, w.Code, "reads are not throttled")
}

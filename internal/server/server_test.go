package server

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

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/dietdesk/internal/config"
	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/database"
	"github.com/dukerupert/dietdesk/internal/middleware"
	ws "github.com/dukerupert/dietdesk/internal/websocket"
)

func setupServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, nil)
	rec := get(t, srv.Router(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestSeedInstallsSamples(t *testing.T) {
	srv := setupServer(t, nil)
	rec := get(t, srv.Router(), "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var s controller.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, 2, s.TotalOrders)
	assert.Equal(t, 2, s.FoodItems)
	assert.Equal(t, 2, s.DietPlans)
}

func TestNoSeedStartsEmpty(t *testing.T) {
	srv := setupServer(t, func(c *config.Config) { c.Seed = false })
	rec := get(t, srv.Router(), "/api/food-items")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestExportRateLimited(t *testing.T) {
	srv := setupServer(t, func(c *config.Config) {
		c.Export.RateLimit = 2
		c.Export.RateWindow = time.Hour
	})
	router := srv.Router()

	for range 2 {
		rec := get(t, router, "/api/orders/export.csv")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := get(t, router, "/orders/print")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Plain listing is not limited.
	rec = get(t, router, "/api/orders")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := get(t, router, "/metrics").Body.String()
	assert.Contains(t, body, "dietdesk_export_rate_limited_total 1")
}

func TestMetricsCountRequestsAndMutations(t *testing.T) {
	srv := setupServer(t, nil)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/1/approve", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := get(t, router, "/metrics").Body.String()
	assert.Contains(t, body, `dietdesk_http_requests_total{code="200",route="POST /api/orders/{id}/approve"} 1`)
	assert.Contains(t, body, `dietdesk_record_mutations_total{action="approve",entity="diet_order"} 1`)
	assert.Contains(t, body, "dietdesk_diet_orders 2")
	assert.Contains(t, body, "dietdesk_storage_degraded 0")
}

func TestBackupsDisabledByDefault(t *testing.T) {
	srv := setupServer(t, nil)
	router := srv.Router()

	rec := get(t, router, "/api/backups")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"disabled"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/backups", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebSocketReceivesNotice(t *testing.T) {
	srv := setupServer(t, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return srv.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(ts.URL+"/api/food-items", "application/json",
		strings.NewReader(`{"name":"Oats","unit":"grams","calories":389,"fat":7,"carbs":66,"protein":17,"rate":"20"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg ws.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "food_item_created", msg.Type)
	assert.Equal(t, int64(3), msg.ID)
	assert.Equal(t, "Food item added successfully!", msg.Notice)
}

package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dietdesk/internal/backup"
	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/config"
	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/handler"
	"github.com/dukerupert/dietdesk/internal/metrics"
	"github.com/dukerupert/dietdesk/internal/middleware"
	"github.com/dukerupert/dietdesk/internal/model"
	"github.com/dukerupert/dietdesk/internal/store"
	ws "github.com/dukerupert/dietdesk/internal/websocket"
)

// Storage keys of the three collections.
const (
	FoodItemsKey  = "foodItems"
	DietPlansKey  = "dietPlans"
	DietOrdersKey = "dietOrders"
)

type Server struct {
	db      *sql.DB
	hub     *ws.Hub
	metrics *metrics.Metrics

	foods  *controller.FoodItems
	plans  *controller.DietPlans
	orders *controller.DietOrders

	foodItemH  *handler.FoodItemHandler
	dietPlanH  *handler.DietPlanHandler
	dietOrderH *handler.DietOrderHandler
	dashboardH *handler.DashboardHandler
	backupH    *handler.BackupHandler

	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Server {
	m := metrics.New()
	hub := ws.NewHub(logger.With("component", "websocket"))
	hub.OnDrop(m.DroppedMessage)
	notifier := m.CountingNotifier(hub)

	backend := store.NewCollectionStore(db)
	storeLogger := logger.With("component", "collection")
	hook := collection.WithFailureHook(m.PersistFailure)

	foodDefaults, planDefaults, orderDefaults := []model.FoodItem{}, []model.DietPlan{}, []model.DietOrder{}
	if cfg.Seed {
		foodDefaults = model.SampleFoodItems()
		planDefaults = model.SampleDietPlans()
		orderDefaults = model.SampleDietOrders()
	}
	foodStore := collection.Open(backend, FoodItemsKey, foodDefaults, storeLogger, hook)
	planStore := collection.Open(backend, DietPlansKey, planDefaults, storeLogger, hook)
	orderStore := collection.Open(backend, DietOrdersKey, orderDefaults, storeLogger, hook)

	foods := controller.NewFoodItems(foodStore, notifier, logger)
	plans := controller.NewDietPlans(planStore, notifier, logger)
	orders := controller.NewDietOrders(orderStore, notifier, logger)

	// A disabled backup section leaves the manager unconfigured.
	var backupCfg backup.Config
	if cfg.Backup.Enabled {
		backupCfg = backup.Config{
			S3: backup.S3Config{
				Endpoint:  cfg.Backup.S3.Endpoint,
				Bucket:    cfg.Backup.S3.Bucket,
				Region:    cfg.Backup.S3.Region,
				AccessKey: cfg.Backup.S3.AccessKey,
				SecretKey: cfg.Backup.S3.SecretKey,
			},
			Passphrase:    cfg.Backup.Passphrase,
			Interval:      cfg.Backup.Interval,
			RetentionDays: cfg.Backup.RetentionDays,
		}
	}
	backupMgr := backup.NewManager(backupCfg, backup.Collections{
		FoodItems:  foodStore,
		DietPlans:  planStore,
		DietOrders: orderStore,
	}, store.NewBackupStore(db), func(s backup.Status) {
		switch s.State {
		case backup.StateIdle:
			m.BackupFinished(string(model.BackupStatusCompleted))
		case backup.StateError:
			m.BackupFinished(string(model.BackupStatusFailed))
		}
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, logger)

	m.WatchGauge("food_items", "Number of stored food items.", func() float64 { return float64(foods.Count()) })
	m.WatchGauge("diet_plans", "Number of stored diet plans.", func() float64 { return float64(plans.Count()) })
	m.WatchGauge("diet_orders", "Number of stored diet orders.", func() float64 { return float64(orders.Count()) })
	m.WatchGauge("websocket_clients", "Connected websocket clients.", func() float64 { return float64(hub.ClientCount()) })
	m.WatchGauge("storage_degraded", "1 when any collection has fallen back to memory-only operation.", func() float64 {
		if foodStore.Degraded() || planStore.Degraded() || orderStore.Degraded() {
			return 1
		}
		return 0
	})

	return &Server{
		db:            db,
		hub:           hub,
		metrics:       m,
		foods:         foods,
		plans:         plans,
		orders:        orders,
		foodItemH:     handler.NewFoodItemHandler(foods, logger.With("component", "food_item_handler")),
		dietPlanH:     handler.NewDietPlanHandler(plans, logger.With("component", "diet_plan_handler")),
		dietOrderH:    handler.NewDietOrderHandler(orders, logger.With("component", "diet_order_handler")),
		dashboardH:    handler.NewDashboardHandler(foods, plans, orders),
		backupH:       handler.NewBackupHandler(restoreBroadcaster{Manager: backupMgr, hub: hub}, logger.With("component", "backup_handler")),
		rateLimiter:   middleware.NewRateLimiter(cfg.Export.RateLimit, cfg.Export.RateWindow),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// restoreBroadcaster tells connected consoles to reload after a restore
// replaced the collections underneath them.
type restoreBroadcaster struct {
	*backup.Manager
	hub *ws.Hub
}

func (r restoreBroadcaster) Restore(ctx context.Context, id int64) error {
	if err := r.Manager.Restore(ctx, id); err != nil {
		return err
	}
	r.hub.Broadcast(ws.NewMessage("backup", "restored", id, "Data restored from backup!"))
	return nil
}

func (s *Server) FoodItems() *controller.FoodItems {
	return s.foods
}

func (s *Server) DietPlans() *controller.DietPlans {
	return s.plans
}

func (s *Server) DietOrders() *controller.DietOrders {
	return s.orders
}

// RateLimiter returns the export rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Summary)

	// Food items
	mux.HandleFunc("GET /api/food-items", s.foodItemH.List)
	mux.HandleFunc("POST /api/food-items", s.foodItemH.Create)
	mux.HandleFunc("GET /api/food-items/form", s.foodItemH.NewForm)
	mux.HandleFunc("GET /api/food-items/export.csv", s.rateLimitedHandler(s.foodItemH.ExportCSV))
	mux.HandleFunc("GET /api/food-items/{id}", s.foodItemH.Get)
	mux.HandleFunc("PUT /api/food-items/{id}", s.foodItemH.Update)
	mux.HandleFunc("DELETE /api/food-items/{id}", s.foodItemH.Delete)
	mux.HandleFunc("GET /api/food-items/{id}/form", s.foodItemH.EditForm)
	mux.HandleFunc("GET /food-items/print", s.rateLimitedHandler(s.foodItemH.Print))

	// Diet plans
	mux.HandleFunc("GET /api/diet-plans", s.dietPlanH.List)
	mux.HandleFunc("POST /api/diet-plans", s.dietPlanH.Create)
	mux.HandleFunc("GET /api/diet-plans/form", s.dietPlanH.NewForm)
	mux.HandleFunc("GET /api/diet-plans/export.csv", s.rateLimitedHandler(s.dietPlanH.ExportCSV))
	mux.HandleFunc("GET /api/diet-plans/{id}", s.dietPlanH.Get)
	mux.HandleFunc("PUT /api/diet-plans/{id}", s.dietPlanH.Update)
	mux.HandleFunc("DELETE /api/diet-plans/{id}", s.dietPlanH.Delete)
	mux.HandleFunc("GET /api/diet-plans/{id}/form", s.dietPlanH.EditForm)
	mux.HandleFunc("GET /diet-plans/print", s.rateLimitedHandler(s.dietPlanH.Print))

	// Diet orders and workflow
	mux.HandleFunc("GET /api/orders", s.dietOrderH.List)
	mux.HandleFunc("POST /api/orders", s.dietOrderH.Create)
	mux.HandleFunc("GET /api/orders/form", s.dietOrderH.NewForm)
	mux.HandleFunc("GET /api/orders/export.csv", s.rateLimitedHandler(s.dietOrderH.ExportCSV))
	mux.HandleFunc("GET /api/orders/{id}", s.dietOrderH.Get)
	mux.HandleFunc("PUT /api/orders/{id}", s.dietOrderH.Update)
	mux.HandleFunc("DELETE /api/orders/{id}", s.dietOrderH.Delete)
	mux.HandleFunc("GET /api/orders/{id}/form", s.dietOrderH.EditForm)
	mux.HandleFunc("GET /api/orders/{id}/actions", s.dietOrderH.Actions)
	mux.HandleFunc("POST /api/orders/{id}/customize", s.dietOrderH.Customize)
	mux.HandleFunc("POST /api/orders/{id}/approve", s.dietOrderH.Approve)
	mux.HandleFunc("POST /api/orders/{id}/send-to-cafeteria", s.dietOrderH.SendToCafeteria)
	mux.HandleFunc("POST /api/orders/{id}/complete", s.dietOrderH.Complete)
	mux.HandleFunc("GET /orders/print", s.rateLimitedHandler(s.dietOrderH.Print))

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.Run)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	var h http.Handler = s.metrics.Instrument(mux)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, s.metrics.RateLimited)
	return rl(h).ServeHTTP
}

package router

import (
	"net/http"

	"github.com/genypos/api/internal/config"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/events"
	"github.com/genypos/api/internal/handler"
	mw "github.com/genypos/api/internal/middleware"
	"github.com/genypos/api/internal/service"
	"github.com/genypos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// Order writes publish to pub; the hub serves WebSocket subscribers.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, pub events.Publisher, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, pub, logger)
	quoter := service.NewQuoter(queries)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(queries, pool, func(db database.DBTX) handler.MenuWriteStore {
		return database.New(db)
	})
	categoryHandler := handler.NewCategoryHandler(queries)
	campaignHandler := handler.NewCampaignHandler(queries)
	cartHandler := handler.NewCartHandler(quoter)
	orderHandler := handler.NewOrderHandler(orderService, queries)
	trackHandler := handler.NewTrackHandler(queries)
	reservationHandler := handler.NewReservationHandler(queries)
	tableHandler := handler.NewTableHandler(queries, orderService)

	// Public storefront
	authHandler.RegisterRoutes(r)
	cartHandler.RegisterRoutes(r)
	r.Route("/menu/items", menuHandler.RegisterRoutes)
	r.Route("/menu/categories", categoryHandler.RegisterRoutes)
	r.Route("/campaigns", campaignHandler.RegisterRoutes)
	r.Route("/track", trackHandler.RegisterRoutes)
	r.Route("/reservations", reservationHandler.RegisterPublicRoutes)

	// WebSocket routes (staff authenticate via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeOrders(hub, cfg.JWTSecret, w, r)
	})
	r.Get("/ws/track/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeTrack(hub, w, r)
	})

	// Orders: checkout is public, everything else needs a token.
	r.Route("/orders", func(r chi.Router) {
		orderHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			orderHandler.RegisterRoutes(r)
		})
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/staff-orders", orderHandler.RegisterStaffOrderRoutes)
		r.Route("/tables", tableHandler.RegisterRoutes)

		// Back office
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleMG))

			r.Route("/admin/menu/items", menuHandler.RegisterAdminRoutes)
			r.Route("/admin/categories", categoryHandler.RegisterAdminRoutes)
			r.Route("/admin/campaigns", campaignHandler.RegisterAdminRoutes)
			r.Route("/admin/reservations", reservationHandler.RegisterAdminRoutes)
			r.Route("/staff", handler.NewStaffHandler(queries).RegisterRoutes)
			r.Route("/activity", handler.NewActivityHandler(queries).RegisterRoutes)
			r.Route("/analytics", handler.NewAnalyticsHandler(queries, cfg.Location()).RegisterRoutes)
		})

		// MG dashboard only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleMG))
			r.Route("/settings", handler.NewSettingsHandler(queries).RegisterRoutes)
		})
	})

	logger.Info("router initialized")
	return r
}

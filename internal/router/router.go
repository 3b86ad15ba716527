package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/config"
	"github.com/terraemar-pos/api/internal/coupon"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/events"
	"github.com/terraemar-pos/api/internal/handler"
	mw "github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/service"
)

// New creates a Chi router with all application routes wired up.
// checker may be nil, in which case Idempotency-Key headers are ignored.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, checker mw.IdempotencyChecker, pub events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.IdempotencyHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Services
	newStore := func(db database.DBTX) service.Store {
		return database.New(db)
	}
	validator := coupon.NewValidator(queries)
	orderService := service.NewOrderService(pool, newStore, validator, pub)
	tabService := service.NewTabService(pool, newStore, orderService, validator, pub)
	badgeService := service.NewBadgeService(queries)
	reportService := service.NewReportService(queries)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Storefront (public)
	storeHandler := handler.NewStoreHandler(queries, validator, orderService)
	r.Route("/store", func(r chi.Router) {
		storeHandler.RegisterRoutes(r)
		r.With(mw.Idempotent(checker, "online-order")).Post("/orders", storeHandler.CreateOrder)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		tableHandler := handler.NewTableHandler(tabService, badgeService)
		r.Route("/tables", tableHandler.RegisterRoutes)

		tabHandler := handler.NewTabHandler(tabService, orderService)
		r.Route("/tabs", tabHandler.RegisterRoutes)

		takeawayHandler := handler.NewTakeawayHandler(orderService)
		r.Route("/takeaway", takeawayHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(orderService)
		r.Route("/orders", orderHandler.RegisterRoutes)
		r.Route("/online", orderHandler.RegisterOnlineRoutes)
		r.With(mw.RequireRole(enum.UserRoleKitchen, enum.UserRoleAdmin)).
			Route("/kitchen", orderHandler.RegisterKitchenRoutes)

		badgeHandler := handler.NewBadgeHandler(badgeService)
		badgeHandler.RegisterRoutes(r)

		couponHandler := handler.NewCouponHandler(queries)
		r.Route("/coupons", couponHandler.RegisterRoutes)

		settingsHandler := handler.NewSettingsHandler(orderService)
		r.Route("/settings", settingsHandler.RegisterRoutes)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			reportsHandler := handler.NewReportsHandler(reportService)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})
	})

	log.WithField("origins", cfg.AllowedOrigins).Info("Router initialized")
	return r
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"credit-control/internal/api/handler"
	mw "credit-control/internal/api/middleware"
	"credit-control/internal/config"
	"credit-control/internal/domain/customer"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRouter(customerService customer.CustomerService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)

	router.Route("/api/v1", func(r chi.Router) {
		setupAuthRoutes(r, cfg, logger)
		setupCustomerRoutes(r, cfg, customerService, logger)
		setupDownstreamRoutes(r, logger)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"UP","service":"customer-service"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, logger)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupCustomerRoutes(r chi.Router, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	r.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Get("/search", h.SearchCustomers)
		r.Get("/stats", h.GetCustomerStats)
		r.Get("/code/{customerCode}", h.GetCustomerByCode)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Patch("/deactivate", h.DeactivateCustomer)
			r.Patch("/activate", h.ActivateCustomer)
		})
	})
}

func setupDownstreamRoutes(r chi.Router, logger *slog.Logger) {
	h := handler.NewDownstreamHandler(logger)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/alerts", h.GetAlerts)
		r.Post("/send", h.SendNotification)
		r.Get("/history/{customerID}", h.GetNotificationHistory)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/history/{customerID}", h.GetPaymentHistory)
		r.Post("/process", h.ProcessPayment)
		r.Get("/summary", h.GetPaymentSummary)
	})

	r.Route("/risk", func(r chi.Router) {
		r.Get("/assessment/{customerID}", h.GetRiskAssessment)
		r.Get("/monitoring/dashboard", h.GetRiskDashboard)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.GetReportDashboard)
		r.Get("/analytics/trends", h.GetReportTrends)
		r.Get("/generate/{reportType}", h.GenerateReport)
	})

	r.Route("/credit", func(r chi.Router) {
		r.Get("/profile/{customerID}", h.GetCreditProfile)
		r.Get("/assessment/{customerID}", h.AssessCreditRisk)
		r.Get("/summary", h.GetCreditSummary)
	})
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/masikip/notewallet/internal/transport/httpapi/handler"
	"github.com/masikip/notewallet/internal/transport/httpapi/middleware"
	"github.com/masikip/notewallet/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	AllowedOrigins []string
	AuthHandler    *handler.AuthHandler
	SessionHandler *handler.SessionHandler
	PaymentHandler *handler.PaymentHandler
	HealthHandler  *handler.HealthHandler
	JWTMiddleware  func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit()) // Rate limiting: 100 req/s with burst of 20

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public - no authentication required)
		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Protected routes (require JWT authentication)
		if cfg.JWTMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.JWTMiddleware)

				// Wallet session routes
				if cfg.SessionHandler != nil {
					r.Post("/session/connect", cfg.SessionHandler.Connect)
					r.Get("/session", cfg.SessionHandler.Get)
					r.Delete("/session", cfg.SessionHandler.Disconnect)
					r.Get("/transactions", cfg.SessionHandler.GetTransactions)
					r.Get("/balance", cfg.SessionHandler.GetBalance)
				}

				// Payment routes
				if cfg.PaymentHandler != nil {
					r.Post("/payments", cfg.PaymentHandler.Create)
				}
			})
		}
	})

	return r
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/masikip/notewallet/internal/infra/gateway/cip30"
	"github.com/masikip/notewallet/internal/infra/gateway/koios"
	infraRedis "github.com/masikip/notewallet/internal/infra/redis"
	"github.com/masikip/notewallet/internal/platform/auth"
	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/payment"
	"github.com/masikip/notewallet/internal/platform/session"
	"github.com/masikip/notewallet/internal/transport/httpapi"
	"github.com/masikip/notewallet/internal/transport/httpapi/handler"
	"github.com/masikip/notewallet/internal/transport/httpapi/middleware"
	"github.com/masikip/notewallet/pkg/config"
	"github.com/masikip/notewallet/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting notewallet API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Initialize Redis client for the transaction log and session restore
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established")

	// Initialize stores
	txLog := infraRedis.NewTxLog(redisClient, log)
	sessionStore := infraRedis.NewSessionStore(redisClient, log)

	// Initialize reconciliation configuration
	historyCfg := history.DefaultConfig()
	historyCfg.PendingGrace = cfg.PendingGrace

	// Initialize the Koios indexer gateway
	koiosClient := koios.NewClient(cfg.KoiosMainnetURLs, cfg.KoiosTestnetURLs, cfg.CorsRelayURL, log)
	indexer := koios.NewIndexerAdapter(koiosClient, historyCfg, log)
	log.Info("Koios gateway initialized",
		"mainnet_bases", len(cfg.KoiosMainnetURLs),
		"testnet_bases", len(cfg.KoiosTestnetURLs))

	// Initialize the wallet bridge
	bridge := cip30.NewBridge(cfg.WalletBridgeURL, log)
	log.Info("Wallet bridge client initialized", "url", cfg.WalletBridgeURL)

	// Initialize services
	authSvc := auth.NewService(cfg.AccessPassphraseHash, log)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	reconciler := history.NewReconciler(historyCfg, log)

	paymentCfg := payment.DefaultConfig()
	paymentCfg.DefaultRecipient = cfg.PaymentRecipient
	paymentSvc := payment.NewService(paymentCfg, historyCfg, txLog, log)

	sessionCfg := session.DefaultConfig()
	sessionCfg.RefreshInterval = cfg.RefreshInterval
	controller := session.NewController(sessionCfg, bridge, indexer, txLog, sessionStore, reconciler, paymentSvc, log)

	// Reconnect the wallet persisted by a previous run, if any
	controller.Restore(ctx)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authSvc, jwtSvc)
	sessionHandler := handler.NewSessionHandler(controller)
	paymentHandler := handler.NewPaymentHandler(controller)
	healthHandler := handler.NewHealthHandler(pingAdapter{redisClient})

	// Create JWT middleware
	jwtMiddleware := middleware.JWTMiddleware(jwtSvc)

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:5174"} // Vite ports
	if cfg.IsProduction() {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	routerCfg := httpapi.Config{
		Logger:         log,
		AllowedOrigins: allowedOrigins,
		AuthHandler:    authHandler,
		SessionHandler: sessionHandler,
		PaymentHandler: paymentHandler,
		HealthHandler:  healthHandler,
		JWTMiddleware:  jwtMiddleware,
	}
	r := httpapi.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the background session refresh loop
	go controller.Run(ctx)
	log.Info("Session refresh loop started", "interval", cfg.RefreshInterval)

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	controller.Stop()
	log.Info("Session refresh loop stopped")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}

// pingAdapter narrows the redis client to the health handler's interface
type pingAdapter struct {
	client *redis.Client
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

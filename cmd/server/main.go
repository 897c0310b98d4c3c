package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rsprolipsi/compplan/internal/auth"
	"github.com/rsprolipsi/compplan/internal/config"
	"github.com/rsprolipsi/compplan/internal/httpapi"
	"github.com/rsprolipsi/compplan/internal/metrics"
	"github.com/rsprolipsi/compplan/internal/middleware"
	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/service"
	"github.com/rsprolipsi/compplan/internal/storage/sqlite"
	"github.com/rsprolipsi/compplan/pkg/api"
	"github.com/rsprolipsi/compplan/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Configure(logging.ParseFormat(cfg.LogFormat), logging.ParseLevel(cfg.LogLevel))

	if err := cfg.ValidateServer(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	if cfg.AdminEmail != "" {
		_, created, err := authenticator.EnsureUser(ctx, cfg.AdminEmail, "Administrator", cfg.AdminPassword, models.RoleAdmin)
		if err != nil {
			logger.Error("Failed to seed admin account", "email", cfg.AdminEmail, "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("Admin account created", "email", cfg.AdminEmail)
		}
	}

	m := metrics.New()
	configService := service.NewConfigService(store, m, logger)

	mux := http.NewServeMux()

	// Register Connect services
	configPath, configHandler := api.NewConfigServiceHandler(configService,
		connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			middleware.RequireAuth(jwtManager),
			middleware.LoggingInterceptor(),
		),
	)
	mux.Handle(configPath, configHandler)

	authPath, authHandler := api.NewAuthServiceHandler(
		service.NewAuthService(authenticator, store, jwtManager, logger),
		connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			middleware.OptionalAuth(jwtManager),
			middleware.LoggingInterceptor(),
		),
	)
	mux.Handle(authPath, authHandler)

	// REST routes used by the browser admin
	rest := httpapi.NewHandler(configService, logger)
	mux.Handle("/v1/", middleware.HTTPAuth(jwtManager)(rest.Router()))

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(middleware.RequestLogger(corsHandler.Handler(mux)), &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown did not complete", "error", err)
		}
	}()

	logger.Info("Connect server starting", "address", srv.Addr, "cors_origins", cfg.CORSOrigins)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

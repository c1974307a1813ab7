// MathPeer - peer math-tutoring platform server
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mathpeer/mathpeer/internal/api"
	"github.com/mathpeer/mathpeer/internal/catalog"
	"github.com/mathpeer/mathpeer/internal/config"
	"github.com/mathpeer/mathpeer/internal/dispatch"
	"github.com/mathpeer/mathpeer/internal/middleware"
	"github.com/mathpeer/mathpeer/internal/model"
	"github.com/mathpeer/mathpeer/internal/notify"
	"github.com/mathpeer/mathpeer/internal/session"
	"github.com/mathpeer/mathpeer/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	cat := catalog.Default()
	hub := notify.NewHub()

	modelClient, err := model.NewClient(cfg.ModelServiceURL, cfg.ModelAPIKey, model.WithTimeout(cfg.ModelTimeout))
	if err != nil {
		slog.Error("Failed to create model service client", "error", err)
		os.Exit(1)
	}

	executor := dispatch.NewExecutor(repo, cat, hub)
	dispatcher, err := dispatch.NewService(repo, cat, modelClient, executor, cfg.HistoryWindow)
	if err != nil {
		slog.Error("Failed to create dispatcher", "error", err)
		os.Exit(1)
	}

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, cat, dispatcher, cfg.IsDevelopment())
	chatHandler := api.NewChatHandler(baseHandler)
	recordsHandler := api.NewRecordsHandler(baseHandler)
	authHandler := api.NewAuthHandler(baseHandler)
	wsHandler := notify.NewWebSocketHandler(hub, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(corsOrigins(cfg)))
	r.Use(session.Middleware(repo, cfg.IsDevelopment()))

	chatHandler.RegisterRoutes(r)
	recordsHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r)

	// Record-change notification stream.
	r.Get("/ws/updates", wsHandler.ServeHTTP)

	// Create server. WriteTimeout stays 0 so the update stream is not cut.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}

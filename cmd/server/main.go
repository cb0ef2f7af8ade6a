// voc-selftest quiz server
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

	"github.com/codewriterrussian/voc-selftest/internal/api"
	"github.com/codewriterrussian/voc-selftest/internal/backend"
	"github.com/codewriterrussian/voc-selftest/internal/config"
	"github.com/codewriterrussian/voc-selftest/internal/identity"
	"github.com/codewriterrussian/voc-selftest/internal/middleware"
	"github.com/codewriterrussian/voc-selftest/internal/preferences"
	"github.com/codewriterrussian/voc-selftest/internal/questions"
	"github.com/codewriterrussian/voc-selftest/internal/quiz"
	"github.com/codewriterrussian/voc-selftest/internal/speech"
	"github.com/codewriterrussian/voc-selftest/internal/store"
	"github.com/codewriterrussian/voc-selftest/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "backend", cfg.Store.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	docs, closeBackend, err := backend.Open(ctx, cfg.BackendConfig())
	if err != nil {
		slog.Error("Failed to open question backend", "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	qs := questions.New(docs)
	qs.Load(ctx)

	// Speech side channel.
	var speaker speech.Speaker = speech.Nop{}
	var hub *speech.Hub
	switch cfg.Speech.Mode {
	case speech.ModeBrowser:
		hub = speech.NewHub(cfg.FrontendURL, cfg.IsDevelopment())
		speaker = hub
	case speech.ModeCommand:
		speaker = speech.NewCommandSpeaker(cfg.Speech.Engine, cfg.Speech.Player, 0)
	}
	slog.Info("Speech configured", "mode", cfg.Speech.Mode)

	mgr := quiz.NewManager(qs, repo, quiz.WithSpeaker(speaker))
	prefs := preferences.NewService(repo)

	// Initialize handlers.
	healthHandler := api.NewHealthHandler(repo, qs)
	quizHandler := api.NewQuizHandler(mgr, cfg.Speech.Mode)
	styleHandler := api.NewStyleHandler(prefs)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(allowedOrigins(cfg)))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)

	quizHandler.RegisterRoutes(r)
	styleHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	if hub != nil {
		r.Get("/ws/speech", hub.ServeHTTP)
	}

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WriteTimeout stays 0 so the speech websocket is not cut off.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	quiz.StartSweeper(ctx, repo, cfg.SessionTTL, quiz.DefaultSweepInterval)

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

func allowedOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}

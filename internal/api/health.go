package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/questions"
	"github.com/codewriterrussian/voc-selftest/internal/store"
	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// StatusReporter reports the state of the question store.
type StatusReporter interface {
	Status() questions.Status
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	repo      store.Repository
	questions StatusReporter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(repo store.Repository, questions StatusReporter) *HealthHandler {
	return &HealthHandler{repo: repo, questions: questions}
}

// Health reports database connectivity and question store state.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	qs := h.questions.Status()
	status["questions"] = qs
	if qs.LastError != "" {
		checks["questions"] = "degraded"
	} else {
		checks["questions"] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}

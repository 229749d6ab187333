package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is any backend that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	cache  Pinger
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(cache, db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cache:  cache,
		db:     db,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Warn("Cache health check failed", "error", err)
		components["cache"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["cache"] = "healthy"
	}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		components["database"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["database"] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "ringobot",
		Components: components,
	})
}

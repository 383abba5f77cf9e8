package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/studyhub/internal/repository"
)

// pingTimeout bounds the health check so a wedged database answers 500
// instead of hanging the probe.
const pingTimeout = 2 * time.Second

// HealthHandler reports whether the backing store is reachable.
type HealthHandler struct {
	db     repository.Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db repository.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleDB pings the database.
//
// HTTP: GET /health/db
// RESPONSE: 200 {"success": true, "message": "Database connected successfully"}
func (h *HealthHandler) HandleDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("database health check failed", slog.String("error", err.Error()))
		writeError(w, err, "Database connection failed")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Database connected successfully",
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSONMessage(w, http.StatusOK, "authapi is running")
}

// Health
// @Tags Health
// @Summary Service and database health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	db := map[string]any{"status": "ok"}
	status, code := "ok", http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		db = map[string]any{"status": "down", "error": "database unreachable"}
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"status": status, "db": db})
}

package handlers

import (
	"context"
	"net/http"
	"package-tracking-service/internal/api/dto"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness once the package store answers a ping.
type HealthHandler struct {
	Store Pinger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := map[string]string{"status": "ok"}
	writeJSON(w, r, http.StatusOK, res)
}

func Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: "API is running"})
}

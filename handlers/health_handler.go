package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"luckyDrawAPI/internal/store"
)

type HealthHandler struct {
	store   store.Store
	service string
}

func NewHealthHandler(st store.Store, service string) *HealthHandler {
	return &HealthHandler{store: st, service: service}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if pinger, ok := h.store.(store.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			log.Printf("Health: store ping failed: %v", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "store connection failed",
			})
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": h.service})
}

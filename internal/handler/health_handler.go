package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *logrus.Logger
}

// NewHealthHandler accepts a nil db for deployments that only talk REST.
func NewHealthHandler(db Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		// Ping database untuk memeriksa koneksi
		if err := h.db.Ping(ctx); err != nil {
			h.logger.WithError(err).Error("health check failed: database connection error")
			respondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
	}

	respondWithJson(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

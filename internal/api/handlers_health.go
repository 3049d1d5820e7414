// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/proscenium/internal/models"
)

// Health handles GET /api/v1/health: service health plus store connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeOK := true
	if _, err := h.store.List(r.Context()); err != nil {
		storeOK = false
	}

	status := "healthy"
	code := http.StatusOK
	if !storeOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:         status,
			Version:        h.version,
			StoreConnected: storeOK,
			Uptime:         time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

// HealthLive handles GET /api/v1/health/live: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"alive"}`))
}

// HealthReady handles GET /api/v1/health/ready: ready once the store
// answers reads.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.List(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "cache store not ready", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

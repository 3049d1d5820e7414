// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/models"
	"github.com/tomtom215/proscenium/internal/refresh"
	"github.com/tomtom215/proscenium/internal/store"
)

// Store is the cache store surface the read API consumes.
type Store interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Meta(ctx context.Context, key string) (*models.CacheMeta, error)
	List(ctx context.Context) ([]models.CacheEntry, error)
}

// SchedulerRunner performs one refresh scheduling pass.
type SchedulerRunner interface {
	RunOnce(ctx context.Context) (*refresh.Result, error)
}

// Notifier pushes a completed invocation's summary to connected clients.
type Notifier interface {
	NotifyRefreshCompleted(result *refresh.Result)
}

// Handler holds all HTTP handlers and their dependencies.
type Handler struct {
	store        Store
	scheduler    SchedulerRunner
	registry     *refresh.Registry
	notifier     Notifier // may be nil
	refreshToken string
	version      string
	startTime    time.Time
	now          func() time.Time
}

// NewHandler creates the API handler set.
func NewHandler(st Store, scheduler SchedulerRunner, registry *refresh.Registry, notifier Notifier, refreshToken, version string) *Handler {
	return &Handler{
		store:        st,
		scheduler:    scheduler,
		registry:     registry,
		notifier:     notifier,
		refreshToken: refreshToken,
		version:      version,
		startTime:    time.Now(),
		now:          time.Now,
	}
}

// TriggerRefresh handles POST /api/v1/refresh/run: the external periodic
// trigger. The bearer credential is checked before any scheduling logic
// runs; only then does the scheduler evaluate and refresh.
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	if !h.authorizeTrigger(r) {
		logging.Warn().Str("remote", r.RemoteAddr).Msg("Refresh trigger rejected: bad credential")
		writeRefreshResponse(w, http.StatusUnauthorized, &models.RefreshResponse{
			Success:     false,
			UpdateID:    uuid.New().String(),
			Error:       "unauthorized",
			NextInQueue: refresh.NoneKey,
			Duration:    h.now().Sub(start).Round(time.Millisecond).String(),
			Timestamp:   h.now(),
		})
		return
	}

	result, err := h.scheduler.RunOnce(r.Context())
	if err != nil {
		// Evaluator read failure: the one error kind that fails the whole
		// invocation. The scheduler still hands back a Result carrying the
		// invocation's updateId.
		updateID := uuid.New().String()
		if result != nil && result.UpdateID != "" {
			updateID = result.UpdateID
		}
		logging.Error().Err(err).Str("update_id", updateID).Msg("Refresh invocation failed")
		writeRefreshResponse(w, http.StatusInternalServerError, &models.RefreshResponse{
			Success:     false,
			UpdateID:    updateID,
			Error:       err.Error(),
			NextInQueue: refresh.NoneKey,
			Duration:    h.now().Sub(start).Round(time.Millisecond).String(),
			Timestamp:   h.now(),
		})
		return
	}

	if h.notifier != nil && result.Processed != "" {
		h.notifier.NotifyRefreshCompleted(result)
	}

	writeRefreshResponse(w, http.StatusOK, &models.RefreshResponse{
		Success:     true,
		UpdateID:    result.UpdateID,
		Processed:   result.Processed,
		Updates:     result.Updates,
		Errors:      result.Errors,
		NextInQueue: result.NextKey,
		Duration:    result.Elapsed.Round(time.Millisecond).String(),
		Timestamp:   h.now(),
	})
}

// authorizeTrigger compares the bearer credential in constant time. An
// unset server-side token rejects everything; running without a credential
// is never treated as "open access".
func (h *Handler) authorizeTrigger(r *http.Request) bool {
	if h.refreshToken == "" {
		return false
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}

	// Hashing both sides gives equal lengths, so ConstantTimeCompare does
	// not leak the configured token's length.
	want := sha256.Sum256([]byte(h.refreshToken))
	got := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// ListCaches handles GET /api/v1/caches: the staleness view of every cache
// key, including never-populated ones.
func (h *Handler) ListCaches(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	statuses := make([]models.CacheStatus, 0, len(h.registry.Keys()))

	for _, key := range h.registry.Keys() {
		class, _ := h.registry.ClassForKey(key)

		meta, err := h.store.Meta(r.Context(), key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			statuses = append(statuses, models.CacheStatus{
				Key:       key,
				CacheType: class.Name,
				Stale:     true,
			})
			continue
		case err != nil:
			respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to read cache metadata", err)
			return
		}

		age := now.Sub(time.UnixMilli(meta.LastUpdated))
		statuses = append(statuses, models.CacheStatus{
			Key:         key,
			CacheType:   meta.CacheType,
			ItemCount:   meta.ItemCount,
			LastUpdated: meta.LastUpdated,
			ExpiresAt:   meta.ExpiresAt,
			AgeSeconds:  int64(age.Seconds()),
			Stale:       age > class.TTL,
			Populated:   true,
		})
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     statuses,
		Metadata: models.Metadata{Timestamp: now},
	})
}

// GetCache handles GET /api/v1/caches/{key}: the full cache document.
func (h *Handler) GetCache(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if _, ok := h.registry.ClassForKey(key); !ok {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "unknown cache key", nil)
		return
	}

	entry, err := h.store.Get(r.Context(), key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "cache not yet populated", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to read cache entry", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     entry,
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

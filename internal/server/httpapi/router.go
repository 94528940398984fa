// Package httpapi serves the plain-HTTP side of the backend: liveness,
// Prometheus metrics and the landing page for email verification links.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type emailConfirmer interface {
	ConfirmEmail(ctx context.Context, token string) (*models.User, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	email   emailConfirmer
	db      pinger
	metrics http.Handler
	logger  logging.Logger
}

// NewRouter wires the routes. metrics may be nil, in which case /metrics is
// not mounted.
func NewRouter(l logging.Logger, ec emailConfirmer, db pinger, metrics http.Handler) http.Handler {
	h := &Handler{email: ec, db: db, metrics: metrics, logger: l.With("module", "http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/verify-email", h.verifyEmail)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code, desc string, status int) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": desc})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.URL.Query().Get("token")
	if token == "" {
		writeErr(w, "invalid_token", "token required", http.StatusBadRequest)
		return
	}

	user, err := h.email.ConfirmEmail(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			writeErr(w, "invalid_token", "token invalid, expired or used", http.StatusBadRequest)
			return
		}
		h.logger.Error(ctx, "email confirmation failed", "request_id", middleware.GetReqID(ctx), "error", err)
		writeErr(w, "server_error", "could not verify email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified", "email": user.Email})
}

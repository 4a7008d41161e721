package sniper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// triageService is the controller surface the handler needs.
type triageService interface {
	Approve(ctx context.Context, id string) (Status, error)
	FlagForVideoAudit(ctx context.Context, id string) (Status, error)
	Reject(ctx context.Context, id string) (Status, error)
}

// Handler exposes the sniper dashboard API.
type Handler struct {
	feed    *Feed
	service triageService
	logger  *logging.Logger
}

func NewHandler(feed *Feed, service triageService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{feed: feed, service: service, logger: logger}
}

// GET /partners/sniper/prospects
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"lastUpdated": time.Now().UTC(),
		"prospects":   h.feed.Snapshot(),
		"stats":       h.feed.Stats(),
	})
}

// POST /partners/sniper/prospects/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.service.Approve)
}

// POST /partners/sniper/prospects/{id}/video-audit
func (h *Handler) FlagForVideoAudit(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.service.FlagForVideoAudit)
}

// POST /partners/sniper/prospects/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.service.Reject)
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (Status, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing prospect id", http.StatusBadRequest)
		return
	}

	status, err := fn(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "prospect not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, "prospect already triaged", http.StatusConflict)
		case errors.Is(err, ErrOutreachFailed):
			// The status write was compensated; the operator can retry.
			http.Error(w, "outreach queue unavailable, try again", http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// The store accepted the write; now commit the local view.
	h.feed.SetStatus(id, status)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"id":     id,
		"status": string(status),
	})
}

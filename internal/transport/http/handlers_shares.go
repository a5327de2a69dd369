package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gympass/internal/share"
	"gympass/internal/transport/httputil"
	dErrors "gympass/pkg/domain-errors"
)

// ShareService is the slice of the share link service the HTTP layer uses.
type ShareService interface {
	CreateShare(ctx context.Context, credentialID string, ttl time.Duration) (*share.CreatedShare, error)
	Resolve(ctx context.Context, shareID string) (*share.Resolution, error)
	Revoke(ctx context.Context, shareID string) (bool, error)
	ListByCredential(ctx context.Context, credentialID string) ([]share.Share, error)
	Stats(ctx context.Context) (*share.Stats, error)
}

type createShareRequest struct {
	TTLHours int `json:"ttl_hours"`
}

func (h *Handler) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req createShareRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.TTLHours < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "ttl_hours must not be negative"))
		return
	}

	created, err := h.shares.CreateShare(r.Context(), chi.URLParam(r, "id"), time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	resolution, err := h.shares.Resolve(r.Context(), chi.URLParam(r, "shareID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resolution)
}

func (h *Handler) handleRevokeShare(w http.ResponseWriter, r *http.Request) {
	removed, err := h.shares.Revoke(r.Context(), chi.URLParam(r, "shareID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handler) handleListShares(w http.ResponseWriter, r *http.Request) {
	shares, err := h.shares.ListByCredential(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"shares": shares})
}

func (h *Handler) handleShareStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.shares.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

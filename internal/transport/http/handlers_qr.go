package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gympass/internal/credential/models"
	"gympass/internal/qrtoken"
	"gympass/internal/transport/httputil"
)

// TokenService is the slice of the QR token service the HTTP layer uses.
type TokenService interface {
	Mint(ctx context.Context, credentialID string) (*qrtoken.Token, error)
	MintPermanent(ctx context.Context, credentialID string) (*qrtoken.Token, error)
	Resolve(ctx context.Context, token string) (*models.Record, error)
	Revoke(ctx context.Context, token string) error
}

type mintResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int       `json:"expiresIn"`
}

func (h *Handler) handleMintToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.Mint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, mintResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		ExpiresIn: int(time.Until(token.ExpiresAt).Seconds()),
	})
}

func (h *Handler) handleMintPermanentToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.MintPermanent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, mintResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		ExpiresIn: int(time.Until(token.ExpiresAt).Seconds()),
	})
}

func (h *Handler) handleResolveToken(w http.ResponseWriter, r *http.Request) {
	record, err := h.tokens.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Revoke(r.Context(), chi.URLParam(r, "token")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

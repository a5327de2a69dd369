package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gympass/internal/credential/models"
	"gympass/internal/credential/service"
	"gympass/internal/credential/token"
	"gympass/internal/issuer"
	"gympass/internal/transport/httputil"
	dErrors "gympass/pkg/domain-errors"
)

// CredentialService is the slice of the credential engine the HTTP layer uses.
type CredentialService interface {
	Issue(ctx context.Context, req service.IssueRequest) (*models.Record, error)
	Verify(ctx context.Context, compact string) (*token.Result, error)
	Revoke(ctx context.Context, credentialID, reason string) error
	Get(ctx context.Context, credentialID string) (*models.Record, error)
	List(ctx context.Context, filter models.ListFilter, page, pageSize int) (*models.Page, error)
	Delete(ctx context.Context, credentialID string) error
	IssuerDID() string
	IssuerDocument() (*issuer.Document, error)
}

type issueRequest struct {
	HolderDID    string `json:"holder_did"`
	UserID       string `json:"user_id"`
	BenefitID    string `json:"benefit_id"`
	MembershipID string `json:"membership_id"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.credentials.Issue(r.Context(), service.IssueRequest{
		HolderDID:    req.HolderDID,
		UserID:       req.UserID,
		BenefitID:    req.BenefitID,
		MembershipID: req.MembershipID,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid      bool               `json:"valid"`
	Verdict    string             `json:"verdict"`
	Message    string             `json:"message"`
	Credential *models.Credential `json:"credential,omitempty"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token is required"))
		return
	}

	result, err := h.credentials.Verify(r.Context(), req.Token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verifyResponse{
		Valid:      result.Valid(),
		Verdict:    string(result.Verdict),
		Message:    result.Message,
		Credential: result.Credential,
	})
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.credentials.Revoke(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.credentials.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.ListFilter{
		Search:    query.Get("search"),
		HolderDID: query.Get("holder_did"),
	}
	if raw := query.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown status"))
			return
		}
		filter.Status = &status
	}

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	result, err := h.credentials.List(r.Context(), filter, page, pageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDIDDocument(w http.ResponseWriter, _ *http.Request) {
	document, err := h.credentials.IssuerDocument()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not build DID document"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, document)
}

// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gympass/internal/platform/health"
	"gympass/internal/platform/metrics"
	"gympass/internal/platform/middleware"
	"gympass/internal/transport/httputil"
	dErrors "gympass/pkg/domain-errors"
	"gympass/pkg/secrets"
)

// Handler holds the domain services the HTTP layer delegates to.
type Handler struct {
	credentials  CredentialService
	tokens       TokenService
	shares       ShareService
	adminKeyHash string
	logger       *slog.Logger
}

// NewHandler creates the HTTP handler. adminKeyHash is the bcrypt hash of the
// admin API key; when empty, admin endpoints reject every request.
func NewHandler(credentials CredentialService, tokens TokenService, shares ShareService, adminKeyHash string, logger *slog.Logger) *Handler {
	return &Handler{
		credentials:  credentials,
		tokens:       tokens,
		shares:       shares,
		adminKeyHash: adminKeyHash,
		logger:       logger,
	}
}

// NewRouter wires all endpoints with middleware. Verification, QR resolution,
// and share resolution are public; lifecycle mutations require the admin key.
func NewRouter(h *Handler, probes *health.Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	// Public surface: anything a member device or point-of-use scanner hits.
	r.Post("/credentials/verify", h.handleVerify)
	r.Get("/qr/{token}", h.handleResolveToken)
	r.Get("/shares/{shareID}", h.handleResolveShare)
	r.Get("/.well-known/did.json", h.handleDIDDocument)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if probes == nil {
		probes = health.New(h.credentials.IssuerDID())
	}
	probes.Register(r)

	// Member surface: minting presentation handles for an issued credential.
	r.Post("/credentials/{id}/qr", h.handleMintToken)
	r.Post("/credentials/{id}/shares", h.handleCreateShare)
	r.Get("/credentials/{id}/shares", h.handleListShares)

	// Admin surface.
	r.Group(func(admin chi.Router) {
		admin.Use(h.requireAdmin)

		admin.Post("/credentials", h.handleIssue)
		admin.Get("/credentials", h.handleList)
		admin.Get("/credentials/{id}", h.handleGet)
		admin.Delete("/credentials/{id}", h.handleDelete)
		admin.Post("/credentials/{id}/revoke", h.handleRevoke)
		admin.Post("/credentials/{id}/qr/permanent", h.handleMintPermanentToken)
		admin.Delete("/qr/{token}", h.handleRevokeToken)
		admin.Delete("/shares/{shareID}", h.handleRevokeShare)
		admin.Get("/shares/stats", h.handleShareStats)
	})

	return r
}

// requireAdmin gates lifecycle mutations behind the X-API-Key header.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if h.adminKeyHash == "" || key == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin API key required"))
			return
		}
		if err := secrets.Verify(key, h.adminKeyHash); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid admin API key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

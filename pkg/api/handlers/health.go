package handlers

import (
	"net/http"

	"github.com/crossrealm/xrealmd/pkg/authz"
)

// HealthHandler handles the health check endpoints.
type HealthHandler struct {
	policy authz.TGSPolicy
	admin  authz.AttributeAdmin
}

// NewHealthHandler creates a health handler. Either dependency may be
// nil, in which case readiness reports unavailable.
func NewHealthHandler(policy authz.TGSPolicy, admin authz.AttributeAdmin) *HealthHandler {
	return &HealthHandler{policy: policy, admin: admin}
}

// Liveness handles GET /health. It succeeds whenever the HTTP server is
// responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "xrealmd",
	})
}

// Readiness handles GET /health/ready. Ready means the decision policy
// and the attribute store are both wired.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.policy == nil {
		writeError(w, http.StatusServiceUnavailable, "authorization engine not initialized")
		return
	}
	if h.admin == nil {
		writeError(w, http.StatusServiceUnavailable, "attribute store not initialized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"policy": h.policy.Name(),
	})
}

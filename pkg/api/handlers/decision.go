package handlers

import (
	"net/http"

	"github.com/crossrealm/xrealmd/internal/logger"
	"github.com/crossrealm/xrealmd/pkg/authz"
)

// DecisionHandler exposes the authorization engine to the host KDC.
type DecisionHandler struct {
	policy authz.TGSPolicy
}

// NewDecisionHandler creates a decision handler.
func NewDecisionHandler(policy authz.TGSPolicy) *DecisionHandler {
	return &DecisionHandler{policy: policy}
}

// decisionRequest is the wire form of a TGS policy check. Principals are
// fully qualified ("name@REALM"); ticket.server is the cross-realm TGT
// principal and request.server the originally requested service.
type decisionRequest struct {
	Ticket struct {
		Client string `json:"client"`
		Server string `json:"server"`
	} `json:"ticket"`
	Request struct {
		Server string `json:"server"`
	} `json:"request"`
}

// decisionResponse mirrors authz.DecisionResult.
type decisionResponse struct {
	Allow  bool   `json:"allow"`
	Status string `json:"status,omitempty"`
}

// Decide handles POST /v1/decision.
//
// An attribute-store failure is reported as 503, never as a deny: the
// host must be able to distinguish an infrastructure problem from a
// policy verdict.
func (h *DecisionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid decision request: "+err.Error())
		return
	}
	if req.Ticket.Client == "" || req.Ticket.Server == "" || req.Request.Server == "" {
		writeError(w, http.StatusBadRequest, "ticket.client, ticket.server and request.server are required")
		return
	}

	ticket := authz.Ticket{
		Client: authz.ParsePrincipal(req.Ticket.Client),
		Server: authz.ParsePrincipal(req.Ticket.Server),
	}
	request := authz.Request{
		Server: authz.ParsePrincipal(req.Request.Server),
	}

	result, err := h.policy.CheckTGS(r.Context(), ticket, request)
	if err != nil {
		logger.Error("authorization decision failed",
			logger.KeyClientPrincipal, ticket.Client.String(),
			logger.KeyTGTPrincipal, ticket.Server.String(),
			logger.KeyError, err.Error(),
		)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, decisionResponse{
		Allow:  result.Allow,
		Status: result.Status,
	})
}

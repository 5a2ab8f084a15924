package handlers

import (
	"errors"
	"net/http"

	"github.com/crossrealm/xrealmd/pkg/authz"
)

// AttributesHandler administers authorization attributes on principal
// entries: the HTTP analog of kadmin setstr/delstr/getstrs.
//
// Principals ride in a query parameter rather than the URL path because
// Kerberos principal names routinely contain "/" (krbtgt/REALM@REALM).
type AttributesHandler struct {
	admin authz.AttributeAdmin
}

// NewAttributesHandler creates an attributes handler.
func NewAttributesHandler(admin authz.AttributeAdmin) *AttributesHandler {
	return &AttributesHandler{admin: admin}
}

type setAttributeRequest struct {
	Principal string `json:"principal"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type listAttributesResponse struct {
	Principal  string            `json:"principal"`
	Attributes map[string]string `json:"attributes"`
}

// List handles GET /v1/attributes?principal=NAME.
func (h *AttributesHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := r.URL.Query().Get("principal")
	if principal == "" {
		writeError(w, http.StatusBadRequest, "principal query parameter is required")
		return
	}

	attrs, err := h.admin.ListStrings(r.Context(), authz.ParsePrincipal(principal))
	if err != nil {
		if errors.Is(err, authz.ErrPrincipalNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listAttributesResponse{
		Principal:  principal,
		Attributes: attrs,
	})
}

// Set handles PUT /v1/attributes, creating the principal entry when
// necessary.
func (h *AttributesHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setAttributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid attribute request: "+err.Error())
		return
	}
	if req.Principal == "" || req.Key == "" {
		writeError(w, http.StatusBadRequest, "principal and key are required")
		return
	}

	err := h.admin.SetString(r.Context(), authz.ParsePrincipal(req.Principal), req.Key, req.Value)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete handles DELETE /v1/attributes?principal=NAME&key=KEY.
func (h *AttributesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := r.URL.Query().Get("principal")
	key := r.URL.Query().Get("key")
	if principal == "" || key == "" {
		writeError(w, http.StatusBadRequest, "principal and key query parameters are required")
		return
	}

	err := h.admin.DeleteString(r.Context(), authz.ParsePrincipal(principal), key)
	if err != nil {
		if errors.Is(err, authz.ErrPrincipalNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

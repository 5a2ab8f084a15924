// Package handlers implements the HTTP request handlers for the xrealmd
// API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crossrealm/xrealmd/internal/logger"
)

// errorResponse is the JSON body for all non-2xx replies.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode API response", logger.KeyError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON parses a request body, rejecting unknown fields so client
// typos surface as errors instead of silently ignored options.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

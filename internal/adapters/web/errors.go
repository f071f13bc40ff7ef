package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
	"agri-inventory/internal/interchange"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorField(w, r, message, code, "", status)
}

func writeErrorField(w http.ResponseWriter, r *http.Request, message, code, field string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		Field:     field,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// statusForKind maps core.KindOf codes to HTTP status codes.
var statusForKind = map[string]int{
	"VALIDATION":         http.StatusBadRequest,
	"NOT_FOUND":          http.StatusNotFound,
	"DUPLICATE":          http.StatusConflict,
	"CONSTRAINT":         http.StatusConflict,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
}

// writeServiceError translates an ApplicationService error into a response.
// Ledger failures keep their message; anything unexpected is logged and
// reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, interchange.ErrInvalidDocument):
		writeError(w, r, err.Error(), "INVALID_DOCUMENT", http.StatusBadRequest)
		return
	case errors.Is(err, app.ErrEmptyPreview):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	kind := core.KindOf(err)
	if status, ok := statusForKind[kind]; ok {
		writeErrorField(w, r, err.Error(), kind, core.FieldOf(err), status)
		return
	}
	h.log.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Error("request failed")
	writeError(w, r, "internal server error", "INTERNAL", http.StatusInternalServerError)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/logger"

	"go.uber.org/zap"
)

// envelope is the body shape shared by every JSON response.
type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
	Errors  []croppost.FieldError `json:"errors,omitempty"`
}

// writeJSON encodes before writing the header so an unencodable body still
// produces a well-formed 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	buf, err := json.Marshal(body)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		buf, _ = json.Marshal(envelope{Message: "Internal server error"})
	}
	buf = append(buf, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf); err != nil {
		logger.FromCtx(r.Context()).Warn("failed to write response", zap.Error(err))
	}
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: data})
}

func created(w http.ResponseWriter, r *http.Request, msg string, data any) {
	writeJSON(w, r, http.StatusCreated, envelope{Success: true, Message: msg, Data: data})
}

func message(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: msg})
}

func badRequest(w http.ResponseWriter, r *http.Request, field, msg string) {
	writeJSON(w, r, http.StatusBadRequest, envelope{
		Message: "Validation failed",
		Errors:  []croppost.FieldError{{Field: field, Message: msg}},
	})
}

package httpapi

import (
	"errors"
	"net/http"

	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/review"
	"agrimarket-be/internal/user"

	"go.uber.org/zap"
)

// writeError maps a service error onto a status code and response body.
// Unknown errors are storage failures; their detail is only shown in
// development.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr  *croppost.ValidationError
		rverr *review.ValidationError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, envelope{Message: "Validation failed", Errors: verr.Fields})
	case errors.As(err, &rverr):
		badRequest(w, r, rverr.Field, rverr.Message)
	case errors.Is(err, croppost.ErrInvalidStatus):
		badRequest(w, r, "status", "is not a valid status")

	case errors.Is(err, croppost.ErrUnauthenticated),
		errors.Is(err, review.ErrUnauthenticated):
		writeJSON(w, r, http.StatusUnauthorized, envelope{Message: "Authentication required"})
	case errors.Is(err, user.ErrInvalidCredentials):
		writeJSON(w, r, http.StatusUnauthorized, envelope{Message: "Invalid email or password"})

	case errors.Is(err, croppost.ErrForbidden),
		errors.Is(err, review.ErrForbidden):
		writeJSON(w, r, http.StatusForbidden, envelope{Message: err.Error()})

	case errors.Is(err, croppost.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, review.ErrCropNotFound):
		writeJSON(w, r, http.StatusNotFound, envelope{Message: err.Error()})

	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body := envelope{Message: "Internal server error"}
		if h.devMode {
			body.Error = err.Error()
		}
		writeJSON(w, r, http.StatusInternalServerError, body)
	}
}

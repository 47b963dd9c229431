package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/profiles"
	"github.com/videotube/backend/internal/repositories"
)

// apiResponse is the success envelope every endpoint returns.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

// apiError is the failure envelope. Only the message field crosses the
// boundary; internal error detail stays in the logs.
type apiError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeJSON(ctx, w, status, apiResponse{StatusCode: status, Data: data, Message: message})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	logger := logging.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "message", message)
	} else {
		logger.Warn("request returned client error", "status", status, "message", message)
	}
	writeJSON(ctx, w, status, apiError{StatusCode: status, Message: message})
}

// respondWithError maps the error taxonomy onto HTTP statuses: validation
// 400, unauthorized/invalid token 401, not found 404, conflict 409, and
// everything unexpected 500.
func respondWithError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var validation auth.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(ctx, w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, profiles.ErrMissingUsername):
		respondError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionRevoked):
		respondError(ctx, w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "resource not found")
	case errors.Is(err, repositories.ErrConflict):
		respondError(ctx, w, http.StatusConflict, "resource already exists")
	default:
		logging.FromContext(ctx).Error(fallback, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

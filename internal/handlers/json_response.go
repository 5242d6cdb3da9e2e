package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"authapi/internal/auth"
	"authapi/internal/logging"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func writeJSONErrorResponse(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{"error": code, "message": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

// writeError maps auth errors onto HTTP responses. Anything unrecognised is
// logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		verr     *auth.ValidationError
		conflict *auth.ConflictError
		invalid  *auth.InvalidTokenError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation_error",
			"message": verr.Message(),
			"fields":  verr.Fields,
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "conflict",
			"message": conflict.Message(),
			"field":   conflict.Field,
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid_token",
			"message": invalid.Message(),
			"reason":  invalid.Reason,
		})
	case errors.Is(err, auth.ErrAuthentication):
		writeJSONErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", auth.AuthenticationMessage)
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSONErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "Not authenticated")
	default:
		logging.LogError(r.Context(), logger, "request failed", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

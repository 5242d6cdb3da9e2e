package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"authapi/internal/logging"
	"authapi/internal/session"
)

type ctxKey string

const ctxSession ctxKey = "session"

// Sessions loads the request's session and stores it in the context.
func Sessions(manager *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := manager.Load(w, r)
			if err != nil {
				logging.LogError(r.Context(), logger, "load session", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":   "internal_error",
					"message": "Internal server error",
				})
				return
			}
			ctx := context.WithValue(r.Context(), ctxSession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(ctxSession).(*session.Session)
	return s, ok
}

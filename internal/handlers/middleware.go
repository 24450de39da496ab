package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/reelstack/apiserver/internal/session"
)

// RequireSession enforces a live session cookie and injects the session's
// user id into the request context. Requests with a missing, unknown, or
// expired token get a 401.
func RequireSession(sessions *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to resolve session")
				return
			}

			ctx := context.WithValue(r.Context(), contextUserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

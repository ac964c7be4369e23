package middleware

import (
	"context"
	"net/http"

	"github.com/shalabh-srivastava/legalsuite/internal/auth"
	"github.com/shalabh-srivastava/legalsuite/internal/httpjson"
)

// SessionLookup resolves a session id to a user id; "" means no session.
type SessionLookup interface {
	Get(ctx context.Context, sessionID string) (string, error)
}

// LoadSession injects the session's user id into the request context when a
// valid session cookie is present. Requests without one pass through.
func LoadSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// RequireAuth validates the session cookie and injects the user id into the
// request context.
func RequireAuth(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				httpjson.Error(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				httpjson.Error(w, http.StatusUnauthorized, "session expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

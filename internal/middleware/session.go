package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// SessionHeader carries the caller's cart/wishlist session id
	SessionHeader = "X-Session-ID"

	sessionIDKey contextKey = "session_id"
)

// SessionMiddleware ensures every request carries a session id. When the
// header is absent a fresh UUID is issued and echoed back, so a first-time
// caller gets its id from the response and sends it on subsequent requests.
func SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			w.Header().Set(SessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the session id from request context
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	return sessionID, ok
}

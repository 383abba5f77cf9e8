package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the session value by accident.
type contextKey string

const sessionUserKey contextKey = "sessionUser"

// Session is a middleware that decodes the "session" cookie when present.
//
// It never blocks a request: a missing, expired or forged cookie just means
// the request is anonymous. Handlers call UserFromContext to find out.
// Every request re-verifies the signature, so authorization decisions are
// made on the server, not on the client-visible "logged_in" flag.
func Session(codec *SessionCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				if user, err := codec.Decode(cookie.Value); err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that did not carry a valid session.
// It must run after Session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Not logged in",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying the session user.
func WithUser(ctx context.Context, u SessionUser) context.Context {
	return context.WithValue(ctx, sessionUserKey, u)
}

// UserFromContext retrieves the verified session user from the request context.
// Returns (SessionUser{}, false) for anonymous requests.
func UserFromContext(ctx context.Context) (SessionUser, bool) {
	u, ok := ctx.Value(sessionUserKey).(SessionUser)
	return u, ok && u.ID != ""
}

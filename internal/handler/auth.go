package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/studyhub/internal/auth"
	"github.com/sakif/studyhub/internal/service"
)

// AuthHandler serves registration, login, logout and the current-session
// lookup.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create a student account
//   - HandleLogin    → verify credentials, set the session cookies
//   - HandleLogout   → clear the session cookies
//   - HandleMe       → return the student behind the session cookie
//
// DEPENDENCY CHAIN:
//   - auth     *service.AuthService → credential rules + token issuing
//   - sessions *auth.SessionCodec   → cookie attributes
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionCodec
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionCodec, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		sessions: sessions,
		logger:   logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new student account.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"name": "Ada", "email": "ada@example.com", "password": "..."}
// RESPONSE: 201 {"success": true, "message": "Registration successful! You can now login."}
//
// Registration does NOT log the student in; the front end sends them to the
// login form next.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const fallback = "Server error during registration"

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback)
		return
	}

	if err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if isUnexpected(err) {
			h.logger.Error("register failed", slog.String("error", err.Error()))
		}
		writeError(w, err, fallback)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": service.MsgRegistered,
	})
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"email": "ada@example.com", "password": "..."}
// RESPONSE: 200 {"success": true, "message": "Login successful", "user": {id, name, email}}
//
// Two cookies come back with the response: "session" (signed token) and
// "logged_in" ("true"). See auth.SessionCodec.SetCookies for the attributes.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const fallback = "Server error during login"

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if isUnexpected(err) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		writeError(w, err, fallback)
		return
	}

	h.sessions.SetCookies(w, result.Token)
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": service.MsgLoggedIn,
		"user":    result.User,
	})
}

// HandleLogout clears both session cookies.
//
// HTTP: POST /auth/logout
//
// WHY POST AND NOT GET?
// Logout changes state. A GET could be triggered by a prefetch or an <img>
// tag on another site.
//
// Sessions are stateless, so "logout" only removes the cookies. The token
// itself stays valid until it expires, but the browser no longer sends it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookies(w)
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Logout successful",
	})
}

// HandleMe returns the student behind the session cookie.
//
// HTTP: GET /auth/me
// Auth: Required (auth.RequireSession has already rejected anonymous requests)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, failure{Message: "Not logged in"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"user":    user,
	})
}

// Package auth provides password hashing, session tokens and the session
// middleware.
//
// SESSION FLOW OVERVIEW:
//  1. POST /auth/login verifies email + password against the users table
//  2. The handler asks SessionCodec to Issue a token for {id, name, email}
//  3. Two cookies go back to the browser: "session" (the token) and
//     "logged_in" (a plain "true" flag the front end can check cheaply)
//  4. On every later request the Session middleware decodes and VERIFIES
//     the token, and puts the SessionUser in the request context
//
// WHY A SIGNED TOKEN AND NOT BASE64(JSON)?
// The session cookie must stay readable by client script (the front end shows
// the student's name from it), so it cannot be encrypted or HttpOnly. A JWT is
// still base64url-encoded JSON (readable) but carries an HMAC-SHA256
// signature. Anyone can read the claims; only the server can produce them.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie holds the signed session token.
	SessionCookie = "session"
	// LoggedInCookie is a client-visible flag; it grants nothing by itself.
	LoggedInCookie = "logged_in"
	// SessionTTL is both the token lifetime and the cookie max-age.
	SessionTTL = 24 * time.Hour

	issuer = "studyhub"
)

// SessionUser is the identity carried by a session: never the password.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// sessionClaims is the JWT payload. The user ID travels in the standard
// "sub" claim; name and email are private claims.
type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionCodec issues and verifies session tokens and writes the session
// cookies.
type SessionCodec struct {
	secret []byte
	secure bool
}

// NewSessionCodec creates a SessionCodec.
//
// secure controls the cookie Secure attribute: true everywhere except local
// development, where the server is plain HTTP.
func NewSessionCodec(secret string, secure bool) (*SessionCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionCodec{secret: []byte(secret), secure: secure}, nil
}

// Issue creates a signed session token for the given user, valid for SessionTTL.
func (c *SessionCodec) Issue(u SessionUser) (string, error) {
	return c.issueWithDuration(u, SessionTTL)
}

// issueWithDuration is Issue with a custom lifetime; tests use a negative
// duration to produce expired tokens.
func (c *SessionCodec) issueWithDuration(u SessionUser, d time.Duration) (string, error) {
	if u.ID == "" {
		return "", errors.New("auth: session user has no id")
	}

	now := time.Now()
	claims := sessionClaims{
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}
	return signed, nil
}

// Decode verifies a session token and returns the identity inside it.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - signature matches our secret (the claims were not edited)
//   - the token has not expired
//   - issuer is "studyhub"
//   - algorithm is HS256 (rejects "alg: none" and algorithm confusion)
func (c *SessionCodec) Decode(tokenStr string) (SessionUser, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionUser{}, errors.New("auth: session expired")
		}
		return SessionUser{}, fmt.Errorf("auth: invalid session: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return SessionUser{}, errors.New("auth: invalid session claims")
	}
	if claims.Subject == "" {
		return SessionUser{}, errors.New("auth: session has no subject")
	}

	return SessionUser{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

// SetCookies writes the "session" and "logged_in" cookies for a fresh login.
//
// Neither cookie is HttpOnly: the front end reads the student's name from the
// session payload. SameSite=Lax keeps them off cross-site POSTs.
func (c *SessionCodec) SetCookies(w http.ResponseWriter, token string) {
	maxAge := int(SessionTTL.Seconds())
	http.SetCookie(w, c.cookie(SessionCookie, token, maxAge))
	http.SetCookie(w, c.cookie(LoggedInCookie, "true", maxAge))
}

// ClearCookies expires both session cookies. MaxAge -1 makes net/http emit
// "Max-Age=0", which tells the browser to drop the cookie now.
func (c *SessionCodec) ClearCookies(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(SessionCookie, "", -1))
	http.SetCookie(w, c.cookie(LoggedInCookie, "", -1))
}

func (c *SessionCodec) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Credential business logic.
//
// AuthService is the Credential Store's rule book. It sits between the HTTP
// handlers (and the CLI) and the user repository:
//
//	AuthHandler / students CLI → AuthService → UserRepository (DB)
//	                                        ↘ PasswordService (bcrypt)
//	                                        ↘ SessionCodec (signed cookie)
//
// WHAT THIS FILE DOES NOT DO:
//   - It does NOT set cookies (that's the handler's job, an HTTP concern)
//   - It does NOT read HTTP requests

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/studyhub/internal/apperror"
	"github.com/sakif/studyhub/internal/auth"
	"github.com/sakif/studyhub/internal/model"
	"github.com/sakif/studyhub/internal/repository"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 4

// emailPattern is a deliberately loose "something@something.tld" check.
// Real validation happens when someone tries to email the address.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User-facing messages. Handlers pass these through unchanged.
const (
	MsgRegistered         = "Registration successful! You can now login."
	MsgLoggedIn           = "Login successful"
	msgAllFieldsRequired  = "All fields are required"
	msgEmailTaken         = "Email already registered"
	msgInvalidEmail       = "Invalid email format"
	msgPasswordTooShort   = "Password must be at least 4 characters"
	msgPasswordTooLong    = "Password must be 72 characters or fewer"
	msgMissingCredentials = "Email and password are required"
	msgInvalidCredentials = "Invalid email or password"
)

// AuthService handles registration and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	sessions  *auth.SessionCodec
	logger    *slog.Logger

	// dummyHash is compared against when the email is unknown, so a miss
	// costs the same bcrypt time as a wrong password.
	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	sessions *auth.SessionCodec,
	logger *slog.Logger,
) *AuthService {
	dummy, err := passwords.Hash("studyhub-timing-equaliser")
	if err != nil {
		logger.Warn("could not prepare dummy password hash", slog.String("error", err.Error()))
	}

	return &AuthService{
		users:     users,
		passwords: passwords,
		sessions:  sessions,
		logger:    logger,
		dummyHash: dummy,
	}
}

// LoginResult bundles the verified identity and its signed session token so
// the handler can set cookies and respond in one step.
type LoginResult struct {
	User  auth.SessionUser
	Token string
}

// Register validates and stores a new student account.
//
// VALIDATION ORDER (first failure wins):
//  1. name, email and password all present
//  2. email not already registered (compared lowercased)
//  3. email looks like local@domain.tld
//  4. password between MinPasswordLength chars and the bcrypt byte limit
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return apperror.ValidationFailed("", msgAllFieldsRequired)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return apperror.Duplicate("email", msgEmailTaken)
	case !errors.Is(err, apperror.ErrNotFound):
		return fmt.Errorf("service/auth: checking email: %w", err)
	}

	if !emailPattern.MatchString(email) {
		return apperror.ValidationFailed("email", msgInvalidEmail)
	}
	if len([]rune(password)) < MinPasswordLength {
		return apperror.ValidationFailed("password", msgPasswordTooShort)
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password", msgPasswordTooLong)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	// The store's UNIQUE index still applies here: a concurrent registration
	// that slipped past the check above comes back as apperror.ErrDuplicate.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("student registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)
	return nil
}

// Authenticate verifies an email/password pair and returns the identity
// without the password.
//
// NO USER ENUMERATION:
// "unknown email" and "wrong password" return the same error and message,
// and take the same bcrypt time, so a caller cannot probe which emails exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*auth.SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Unauthorized(msgMissingCredentials)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: finding user: %w", err)
		}
		_ = s.passwords.Verify(s.dummyHash, password)
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unusable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	return &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// Login authenticates and issues a session token for the result.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(*user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing session for %s: %w", user.ID, err)
	}

	s.logger.Info("student logged in", slog.String("userID", user.ID))
	return &LoginResult{User: *user, Token: token}, nil
}

// ListStudents returns every registered student. It backs the admin CLI
// only; no HTTP route exposes it.
func (s *AuthService) ListStudents(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing students: %w", err)
	}
	return users, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/studyhub/internal/apperror"
	"github.com/sakif/studyhub/internal/model"
	"github.com/sakif/studyhub/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists student accounts in the users table.
type UserStore struct {
	conn *sqlx.DB
}

// Create inserts a new user, assigning its ID and CreatedAt.
//
// The UNIQUE index on users.email is the real guard against duplicate
// accounts: two concurrent registrations can both pass the service's
// pre-check, but only one INSERT can succeed. The loser gets ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("email", "Email already registered")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// FindByEmail looks a user up by (lowercased) email.
// Returns apperror.ErrNotFound if no user has that email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := s.conn.GetContext(ctx, &u,
		`SELECT id, name, email, password_hash, created_at
		 FROM users WHERE email = ?`,
		email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: finding user %s: %w", email, err)
	}

	return &u, nil
}

// List returns every user, oldest registration first.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}

	err := s.conn.SelectContext(ctx, &users,
		`SELECT id, name, email, password_hash, created_at
		 FROM users
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}

	return users, nil
}

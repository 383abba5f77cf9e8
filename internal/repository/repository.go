// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in sub-packages:
//
//	sqlite/  the persistent store used by the server
//	memory/  an in-process fake used by service and handler tests
package repository

import (
	"context"

	"github.com/sakif/studyhub/internal/model"
)

// UserRepository is the Credential Store.
//
// FindByEmail expects an already-lowercased email and returns
// apperror.ErrNotFound when no user matches. Create returns
// apperror.ErrDuplicate when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// QuestionRepository is the Question Store.
//
// List returns every question, newest first. Update and Delete return
// apperror.ErrNotFound for unknown ids.
type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context) ([]model.Question, error)
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Package memory provides in-process implementations of the repository
// interfaces. They back the service and handler tests: same contracts as the
// SQLite stores, no disk, no driver.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/studyhub/internal/apperror"
	"github.com/sakif/studyhub/internal/model"
	"github.com/sakif/studyhub/internal/repository"
)

var (
	_ repository.UserRepository     = (*UserStore)(nil)
	_ repository.QuestionRepository = (*QuestionStore)(nil)
)

// UserStore is a map-backed UserRepository keyed by email.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]model.User

	// Err, when set, is returned by every call to simulate a storage fault.
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[user.Email]; ok {
		return apperror.Duplicate("email", "Email already registered")
	}

	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	s.users[user.Email] = *user
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	u, ok := s.users[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return &u, nil
}

func (s *UserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// QuestionStore is a map-backed QuestionRepository.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[string]model.Question

	// Err, when set, is returned by every call to simulate a storage fault.
	Err error
	// Now overrides the clock used for AskedAt.
	Now func() time.Time
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		questions: make(map[string]model.Question),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *QuestionStore) Create(_ context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	q.ID = xid.New().String()
	q.AskedAt = s.Now()
	s.questions[q.ID] = *q
	return nil
}

func (s *QuestionStore) GetByID(_ context.Context, id string) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	q, ok := s.questions[id]
	if !ok {
		return nil, apperror.NotFound("question", id)
	}
	return &q, nil
}

// List returns a copy of every question, newest first (ties broken by id,
// matching the SQLite store).
func (s *QuestionStore) List(_ context.Context) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]model.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AskedAt.Equal(out[j].AskedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].AskedAt.After(out[j].AskedAt)
	})
	return out, nil
}

func (s *QuestionStore) Update(_ context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	stored, ok := s.questions[q.ID]
	if !ok {
		return apperror.NotFound("question", q.ID)
	}
	stored.Question = q.Question
	stored.IsAnswered = q.IsAnswered
	stored.Answer = q.Answer
	s.questions[q.ID] = stored
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.questions[id]; !ok {
		return apperror.NotFound("question", id)
	}
	delete(s.questions, id)
	return nil
}

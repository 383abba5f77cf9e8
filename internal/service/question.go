// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, applies defaults, enforces rules
//	Repository (Data layer)  → reads/writes the database
//
// Services take and return plain Go values and apperror errors. They never
// see an *http.Request or a status code, so the CLI can call them too.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/studyhub/internal/apperror"
	"github.com/sakif/studyhub/internal/model"
	"github.com/sakif/studyhub/internal/repository"
)

// QuestionService handles business logic for the question board.
type QuestionService struct {
	repo   repository.QuestionRepository
	logger *slog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(repo repository.QuestionRepository, logger *slog.Logger) *QuestionService {
	return &QuestionService{
		repo:   repo,
		logger: logger,
	}
}

// Submit validates and stores a new question.
//
// DEFAULTS:
// A blank studentName becomes "Anonymous" and a blank studentEmail becomes
// "anonymous@example.com". Emails are stored lowercased. New questions are
// always unanswered; the repository assigns ID and AskedAt.
func (s *QuestionService) Submit(ctx context.Context, question, studentName, studentEmail string) (*model.Question, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperror.ValidationFailed("question", "Question is required")
	}

	name := strings.TrimSpace(studentName)
	if name == "" {
		name = model.AnonymousName
	}
	email := strings.ToLower(strings.TrimSpace(studentEmail))
	if email == "" {
		email = model.AnonymousEmail
	}

	q := &model.Question{
		Question:     question,
		StudentName:  name,
		StudentEmail: email,
		IsAnswered:   false,
	}

	if err := s.repo.Create(ctx, q); err != nil {
		s.logger.Error("failed to create question", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating question: %w", err)
	}

	s.logger.Info("question submitted",
		slog.String("id", q.ID),
		slog.String("studentEmail", q.StudentEmail),
	)
	return q, nil
}

// List returns every question, newest first.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	questions, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list questions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}

// Update applies a partial update to an existing question and returns the
// stored result.
//
// ANSWER CONSISTENCY:
//   - answer given, isAnswered omitted → isAnswered follows the answer
//     (non-empty answer means answered)
//   - isAnswered=false given, answer omitted → the old answer is cleared
//   - both given → applied exactly as sent
func (s *QuestionService) Update(ctx context.Context, id string, u model.QuestionUpdate) (*model.Question, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Question ID is required")
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Question != nil {
		text := strings.TrimSpace(*u.Question)
		if text == "" {
			return nil, apperror.ValidationFailed("question", "Question is required")
		}
		q.Question = text
	}

	if u.Answer != nil {
		q.Answer = strings.TrimSpace(*u.Answer)
	}
	switch {
	case u.IsAnswered != nil:
		q.IsAnswered = *u.IsAnswered
		if !q.IsAnswered && u.Answer == nil {
			q.Answer = ""
		}
	case u.Answer != nil:
		q.IsAnswered = q.Answer != ""
	}

	if err := s.repo.Update(ctx, q); err != nil {
		s.logger.Error("failed to update question",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating question: %w", err)
	}

	s.logger.Info("question updated",
		slog.String("id", q.ID),
		slog.Bool("isAnswered", q.IsAnswered),
	)
	return q, nil
}

// Delete removes a question by its ID.
// Returns apperror.ErrNotFound if the question doesn't exist.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "Question ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("question deleted", slog.String("id", id))
	return nil
}

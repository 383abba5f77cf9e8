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

var _ repository.QuestionRepository = (*QuestionStore)(nil)

// QuestionStore persists submitted questions in the questions table.
type QuestionStore struct {
	conn *sqlx.DB
}

const questionColumns = `id, question, student_name, student_email, is_answered, answer, asked_at`

// Create inserts a new question, assigning its ID and AskedAt.
//
// ID GENERATION WITH xid:
// xids are 20 URL-safe chars that start with a timestamp, so they sort in
// creation order. List uses that as the tie-breaker when two questions share
// an asked_at value.
func (s *QuestionStore) Create(ctx context.Context, q *model.Question) error {
	q.ID = xid.New().String()
	q.AskedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO questions (`+questionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID,
		q.Question,
		q.StudentName,
		q.StudentEmail,
		q.IsAnswered,
		q.Answer,
		q.AskedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating question: %w", err)
	}

	return nil
}

// GetByID retrieves a single question.
// Returns apperror.ErrNotFound if it doesn't exist.
func (s *QuestionStore) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question

	err := s.conn.GetContext(ctx, &q,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}

	return &q, nil
}

// List returns every question, newest first.
//
// The question board shows everything, so there is no pagination: the result
// is a complete snapshot taken by a single SELECT.
func (s *QuestionStore) List(ctx context.Context) ([]model.Question, error) {
	questions := []model.Question{}

	err := s.conn.SelectContext(ctx, &questions,
		`SELECT `+questionColumns+`
		 FROM questions
		 ORDER BY asked_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}

	return questions, nil
}

// Update writes the mutable fields of an existing question.
// id, student_name, student_email and asked_at are never changed.
func (s *QuestionStore) Update(ctx context.Context, q *model.Question) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE questions
		 SET question = ?, is_answered = ?, answer = ?
		 WHERE id = ?`,
		q.Question,
		q.IsAnswered,
		q.Answer,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating question %s: %w", q.ID, err)
	}

	return expectOneRow(result, "question", q.ID)
}

// Delete removes a question permanently.
func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM questions WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %s: %w", id, err)
	}

	return expectOneRow(result, "question", id)
}

// expectOneRow turns "0 rows affected" into a NotFound error, saving a
// SELECT before every UPDATE/DELETE.
func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/studyhub/internal/apperror"
	"github.com/sakif/studyhub/internal/model"
)

func newQuestion(text string) *model.Question {
	return &model.Question{
		Question:     text,
		StudentName:  model.AnonymousName,
		StudentEmail: model.AnonymousEmail,
	}
}

func createTestQuestion(t *testing.T, s *QuestionStore, text string) *model.Question {
	t.Helper()
	q := newQuestion(text)
	require.NoError(t, s.Create(context.Background(), q))
	return q
}

func TestQuestionCreate(t *testing.T) {
	s := newTestDB(t).Questions()

	q := createTestQuestion(t, s, "What is osmosis?")

	assert.NotEmpty(t, q.ID)
	assert.False(t, q.AskedAt.IsZero())

	got, err := s.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "What is osmosis?", got.Question)
	assert.Equal(t, model.AnonymousName, got.StudentName)
	assert.Equal(t, model.AnonymousEmail, got.StudentEmail)
	assert.False(t, got.IsAnswered)
	assert.Empty(t, got.Answer)
	assert.True(t, q.AskedAt.Equal(got.AskedAt), "AskedAt = %v, want %v", got.AskedAt, q.AskedAt)
}

func TestQuestionGetByID_NotFound(t *testing.T) {
	s := newTestDB(t).Questions()

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestQuestionList_NewestFirst(t *testing.T) {
	s := newTestDB(t).Questions()
	ctx := context.Background()

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty, "List() should return an empty slice, not nil")

	first := createTestQuestion(t, s, "first")
	second := createTestQuestion(t, s, "second")
	third := createTestQuestion(t, s, "third")

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, third.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, first.ID, got[2].ID)
}

func TestQuestionUpdate(t *testing.T) {
	s := newTestDB(t).Questions()
	ctx := context.Background()
	q := createTestQuestion(t, s, "Why is the sky blue?")

	q.Answer = "Rayleigh scattering"
	q.IsAnswered = true
	require.NoError(t, s.Update(ctx, q))

	got, err := s.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAnswered)
	assert.Equal(t, "Rayleigh scattering", got.Answer)
	assert.True(t, q.AskedAt.Equal(got.AskedAt), "Update() must not touch asked_at")
}

func TestQuestionUpdate_NotFound(t *testing.T) {
	s := newTestDB(t).Questions()

	err := s.Update(context.Background(), &model.Question{ID: "missing", Question: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestQuestionDelete(t *testing.T) {
	s := newTestDB(t).Questions()
	ctx := context.Background()
	keep := createTestQuestion(t, s, "keep")
	gone := createTestQuestion(t, s, "gone")

	require.NoError(t, s.Delete(ctx, gone.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	// Deleting again reports NotFound
	assert.ErrorIs(t, s.Delete(ctx, gone.ID), apperror.ErrNotFound)
}

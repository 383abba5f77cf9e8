package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/studyhub/internal/auth"
	"github.com/sakif/studyhub/internal/model"
	"github.com/sakif/studyhub/internal/service"
)

// QuestionHandler serves the question board: list, submit, answer, delete.
//
// All four routes share one path (/questions) and dispatch on the method;
// the question id travels in the body (or the query string for DELETE),
// not in the URL path.
type QuestionHandler struct {
	questions *service.QuestionService
	logger    *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		logger:    logger,
	}
}

type submitQuestionRequest struct {
	Question     string `json:"question"`
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// updateQuestionRequest uses pointers so "field omitted" and "field set to
// its zero value" are different things: {"isAnswered": false} must reopen a
// question, {} must leave it alone.
type updateQuestionRequest struct {
	ID         string  `json:"id"`
	Question   *string `json:"question"`
	Answer     *string `json:"answer"`
	IsAnswered *bool   `json:"isAnswered"`
}

type deleteQuestionRequest struct {
	ID string `json:"id"`
}

// HandleList returns every question, newest first.
//
// HTTP: GET /questions
// RESPONSE: 200 {"success": true, "questions": [...]}
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.List(r.Context())
	if err != nil {
		h.logger.Error("list questions failed", slog.String("error", err.Error()))
		writeError(w, err, "Failed to fetch questions")
		return
	}

	// Encode an empty board as [] rather than null.
	if questions == nil {
		questions = []model.Question{}
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"questions": questions,
	})
}

// HandleCreate submits a new question.
//
// HTTP: POST /questions
// REQUEST BODY: {"question": "...", "studentName": "...", "studentEmail": "..."}
// RESPONSE: 201 {"success": true, "message": "...", "question": {...}}
//
// When the body leaves the student fields out and the request carries a valid
// session, the logged-in student's name and email are used. Otherwise the
// service falls back to "Anonymous".
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to submit question"

	var req submitQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback)
		return
	}

	if user, ok := auth.UserFromContext(r.Context()); ok {
		if req.StudentName == "" {
			req.StudentName = user.Name
		}
		if req.StudentEmail == "" {
			req.StudentEmail = user.Email
		}
	}

	q, err := h.questions.Submit(r.Context(), req.Question, req.StudentName, req.StudentEmail)
	if err != nil {
		if isUnexpected(err) {
			h.logger.Error("submit question failed", slog.String("error", err.Error()))
		}
		writeError(w, err, fallback)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success":  true,
		"message":  "Question submitted successfully",
		"question": q,
	})
}

// HandleUpdate applies a partial update (usually an answer) to a question.
//
// HTTP: PATCH /questions
// REQUEST BODY: {"id": "...", "answer": "...", "isAnswered": true}
// RESPONSE: 200 {"success": true, "question": {...}}
func (h *QuestionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to update question"

	var req updateQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback)
		return
	}

	q, err := h.questions.Update(r.Context(), req.ID, model.QuestionUpdate{
		Question:   req.Question,
		Answer:     req.Answer,
		IsAnswered: req.IsAnswered,
	})
	if err != nil {
		if isUnexpected(err) {
			h.logger.Error("update question failed",
				slog.String("id", req.ID),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err, fallback)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":  true,
		"question": q,
	})
}

// HandleDelete removes a question.
//
// HTTP: DELETE /questions?id=abc   or   DELETE /questions {"id": "abc"}
//
// The query string wins when both are present. A body is optional, so a
// plain DELETE with only ?id= works from any HTTP client.
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to delete question"

	id := r.URL.Query().Get("id")
	if id == "" {
		var req deleteQuestionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err, fallback)
			return
		}
		id = req.ID
	}

	if err := h.questions.Delete(r.Context(), id); err != nil {
		if isUnexpected(err) {
			h.logger.Error("delete question failed",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err, fallback)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Question deleted successfully",
	})
}

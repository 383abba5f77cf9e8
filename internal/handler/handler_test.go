package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/studyhub/internal/auth"
	"github.com/sakif/studyhub/internal/handler"
	"github.com/sakif/studyhub/internal/repository/memory"
	"github.com/sakif/studyhub/internal/service"
)

// =========================================================================
// FIXTURE
// =========================================================================

type fixture struct {
	users     *memory.UserStore
	questions *memory.QuestionStore
	sessions  *auth.SessionCodec
	auth      *handler.AuthHandler
	question  *handler.QuestionHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	sessions, err := auth.NewSessionCodec("test-secret-at-least-16-chars!!", false)
	require.NoError(t, err)

	users := memory.NewUserStore()
	questions := memory.NewQuestionStore()

	authService := service.NewAuthService(users, auth.NewPasswordServiceForTest(4), sessions, logger)
	questionService := service.NewQuestionService(questions, logger)

	return &fixture{
		users:     users,
		questions: questions,
		sessions:  sessions,
		auth:      handler.NewAuthHandler(authService, sessions, logger),
		question:  handler.NewQuestionHandler(questionService, logger),
	}
}

// call runs h against a request with the given JSON body and decodes the
// response envelope.
func call(t *testing.T, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return serve(t, h, newRequest(method, target, body))
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "body: %s", rr.Body.String())
	return rr, resp
}

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func (f *fixture) register(t *testing.T, name, email, password string) {
	t.Helper()
	body := `{"name":"` + name + `","email":"` + email + `","password":"` + password + `"}`
	rr, _ := call(t, f.auth.HandleRegister, http.MethodPost, "/auth/register", body)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func cookieMap(rr *httptest.ResponseRecorder) map[string]*http.Cookie {
	m := map[string]*http.Cookie{}
	for _, c := range rr.Result().Cookies() {
		m[c.Name] = c
	}
	return m
}

// =========================================================================
// AUTH HANDLER
// =========================================================================

func TestHandleRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "success",
			body:       `{"name":"Ada","email":"ada@example.com","password":"secret"}`,
			wantStatus: http.StatusCreated,
			wantMsg:    "Registration successful! You can now login.",
		},
		{
			name:       "missing fields",
			body:       `{"name":"Ada","email":"ada@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "All fields are required",
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "All fields are required",
		},
		{
			name:       "bad email",
			body:       `{"name":"Ada","email":"bad-email","password":"secret"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid email format",
		},
		{
			name:       "short password",
			body:       `{"name":"Ada","email":"ada@example.com","password":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Password must be at least 4 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rr, resp := call(t, f.auth.HandleRegister, http.MethodPost, "/auth/register", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusCreated, resp["success"])
			assert.Equal(t, tt.wantMsg, resp["message"])
		})
	}
}

func TestHandleRegister_MalformedJSON(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.auth.HandleRegister, http.MethodPost, "/auth/register", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["message"], "Invalid JSON body")
}

func TestHandleRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "secret")

	rr, resp := call(t, f.auth.HandleRegister, http.MethodPost, "/auth/register",
		`{"name":"Imposter","email":"ADA@example.com","password":"other"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email already registered", resp["message"])
}

func TestHandleRegister_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.users.Err = errors.New("disk I/O error: /var/lib/studyhub.db")

	rr, resp := call(t, f.auth.HandleRegister, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Server error during registration", resp["message"])
	assert.NotContains(t, rr.Body.String(), "disk")
}

func TestHandleLogin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Xavier", "X@Y.com", "hunter2")

	rr, resp := call(t, f.auth.HandleLogin, http.MethodPost, "/auth/login",
		`{"email":"x@y.com","password":"hunter2"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Login successful", resp["message"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok, "user object missing: %v", resp)
	assert.Equal(t, "Xavier", user["name"])
	assert.Equal(t, "x@y.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	cookies := cookieMap(rr)
	require.Contains(t, cookies, auth.SessionCookie)
	require.Contains(t, cookies, auth.LoggedInCookie)
	assert.Equal(t, "true", cookies[auth.LoggedInCookie].Value)
	assert.Equal(t, 86400, cookies[auth.SessionCookie].MaxAge)

	decoded, err := f.sessions.Decode(cookies[auth.SessionCookie].Value)
	require.NoError(t, err)
	assert.Equal(t, user["id"], decoded.ID)
}

func TestHandleLogin_Failures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "correct")

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"wrong password", `{"email":"ada@example.com","password":"wrong"}`, "Invalid email or password"},
		{"unknown email", `{"email":"nobody@example.com","password":"correct"}`, "Invalid email or password"},
		{"missing password", `{"email":"ada@example.com"}`, "Email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := call(t, f.auth.HandleLogin, http.MethodPost, "/auth/login", tt.body)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.wantMsg, resp["message"])
			assert.Empty(t, rr.Result().Cookies(), "failed login must not set cookies")
		})
	}
}

func TestHandleLogout(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.auth.HandleLogout, http.MethodPost, "/auth/logout", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Logout successful", resp["message"])

	headers := rr.Result().Header.Values("Set-Cookie")
	require.Len(t, headers, 2)
	for _, h := range headers {
		assert.Contains(t, h, "Max-Age=0")
	}
}

func TestHandleMe(t *testing.T) {
	f := newFixture(t)
	h := auth.Session(f.sessions)(auth.RequireSession(http.HandlerFunc(f.auth.HandleMe)))

	t.Run("anonymous", func(t *testing.T) {
		rr, resp := serve(t, h, newRequest(http.MethodGet, "/auth/me", ""))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, false, resp["success"])
	})

	t.Run("with session", func(t *testing.T) {
		token, err := f.sessions.Issue(auth.SessionUser{ID: "u1", Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		req := newRequest(http.MethodGet, "/auth/me", "")
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
		rr, resp := serve(t, h, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		user := resp["user"].(map[string]any)
		assert.Equal(t, "u1", user["id"])
		assert.Equal(t, "Ada", user["name"])
	})
}

// =========================================================================
// QUESTION HANDLER
// =========================================================================

func (f *fixture) submit(t *testing.T, body string) map[string]any {
	t.Helper()
	rr, resp := call(t, f.question.HandleCreate, http.MethodPost, "/questions", body)
	require.Equal(t, http.StatusCreated, rr.Code, "body: %v", resp)
	return resp["question"].(map[string]any)
}

func TestHandleList_Empty(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.question.HandleList, http.MethodGet, "/questions", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, []any{}, resp["questions"])
}

func TestHandleList_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.questions.Err = errors.New("no such table: questions")

	rr, resp := call(t, f.question.HandleList, http.MethodGet, "/questions", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch questions", resp["message"])
}

func TestHandleCreate(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.question.HandleCreate, http.MethodPost, "/questions", `{"question":"  What is osmosis?  "}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Question submitted successfully", resp["message"])
	q := resp["question"].(map[string]any)
	assert.Equal(t, "What is osmosis?", q["question"])
	assert.Equal(t, "Anonymous", q["studentName"])
	assert.Equal(t, "anonymous@example.com", q["studentEmail"])
	assert.Equal(t, false, q["isAnswered"])
	assert.NotContains(t, q, "answer")
	assert.NotEmpty(t, q["askedAt"])
}

func TestHandleCreate_BlankQuestion(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.question.HandleCreate, http.MethodPost, "/questions", `{"question":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Question is required", resp["message"])
}

func TestHandleCreate_UsesSessionIdentity(t *testing.T) {
	f := newFixture(t)

	req := newRequest(http.MethodPost, "/questions", `{"question":"Why is the sky blue?"}`)
	req = req.WithContext(auth.WithUser(req.Context(), auth.SessionUser{ID: "u1", Name: "Ada", Email: "ada@example.com"}))
	rr, resp := serve(t, http.HandlerFunc(f.question.HandleCreate), req)

	require.Equal(t, http.StatusCreated, rr.Code)
	q := resp["question"].(map[string]any)
	assert.Equal(t, "Ada", q["studentName"])
	assert.Equal(t, "ada@example.com", q["studentEmail"])
}

func TestHandleUpdate(t *testing.T) {
	f := newFixture(t)
	q := f.submit(t, `{"question":"What is 6x7?"}`)
	id := q["id"].(string)

	rr, resp := call(t, f.question.HandleUpdate, http.MethodPatch, "/questions",
		`{"id":"`+id+`","answer":"42","isAnswered":true}`)

	require.Equal(t, http.StatusOK, rr.Code)
	updated := resp["question"].(map[string]any)
	assert.Equal(t, "42", updated["answer"])
	assert.Equal(t, true, updated["isAnswered"])
	assert.Equal(t, q["askedAt"], updated["askedAt"])
}

func TestHandleUpdate_Errors(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.question.HandleUpdate, http.MethodPatch, "/questions", `{"answer":"42"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Question ID is required", resp["message"])

	rr, _ = call(t, f.question.HandleUpdate, http.MethodPatch, "/questions", `{"id":"missing","answer":"42"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDelete(t *testing.T) {
	tests := []struct {
		name  string
		build func(id string) *http.Request
	}{
		{
			name:  "id in query",
			build: func(id string) *http.Request { return newRequest(http.MethodDelete, "/questions?id="+id, "") },
		},
		{
			name:  "id in body",
			build: func(id string) *http.Request { return newRequest(http.MethodDelete, "/questions", `{"id":"`+id+`"}`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.submit(t, `{"question":"temporary"}`)["id"].(string)

			rr, resp := serve(t, http.HandlerFunc(f.question.HandleDelete), tt.build(id))
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, true, resp["success"])

			_, list := call(t, f.question.HandleList, http.MethodGet, "/questions", "")
			assert.Empty(t, list["questions"])

			// Second delete of the same id
			rr, _ = serve(t, http.HandlerFunc(f.question.HandleDelete), tt.build(id))
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestHandleDelete_MissingID(t *testing.T) {
	f := newFixture(t)

	rr, resp := call(t, f.question.HandleDelete, http.MethodDelete, "/questions", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Question ID is required", resp["message"])
}

// =========================================================================
// HEALTH HANDLER
// =========================================================================

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHandleDB(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	rr, resp := call(t, handler.NewHealthHandler(stubPinger{}, logger).HandleDB, http.MethodGet, "/health/db", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, resp["success"])

	rr, resp = call(t, handler.NewHealthHandler(stubPinger{err: errors.New("database is locked")}, logger).HandleDB,
		http.MethodGet, "/health/db", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Database connection failed", resp["message"])
	assert.False(t, strings.Contains(rr.Body.String(), "locked"))
}

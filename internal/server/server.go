// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and
// routes. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// The serve command opens the database and passes it in:
//
//	sqlite.DB → UserStore     → AuthService     → AuthHandler
//	          → QuestionStore → QuestionService → QuestionHandler
//	          → (Pinger)                        → HealthHandler
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/studyhub/internal/auth"
	"github.com/sakif/studyhub/internal/handler"
	"github.com/sakif/studyhub/internal/middleware"
	sqliteRepo "github.com/sakif/studyhub/internal/repository/sqlite"
	"github.com/sakif/studyhub/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port          int
	SessionSecret string
	// SecureCookies sets the Secure attribute on session cookies. Off only
	// for local development over plain HTTP.
	SecureCookies bool
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server does NOT own the database: the caller opened it and the caller
// closes it, after Start returns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and wires every route.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it can't be confused with
// the driver package.
func New(cfg Config, logger *slog.Logger, db *sqliteRepo.DB) (*Server, error) {
	sessions, err := auth.NewSessionCodec(cfg.SessionSecret, cfg.SecureCookies)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(sessions)
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /auth/register  → create account
// POST   /auth/login     → verify credentials, set session cookies
// POST   /auth/logout    → clear session cookies
// GET    /auth/me        → current student (401 without a session)
// GET    /questions      → list, newest first
// POST   /questions      → submit
// PATCH  /questions      → answer / edit
// DELETE /questions      → delete (?id= or {"id"})
// GET    /health/db      → database ping
//
// The same routes are mounted again under /api, so clients written against
// /api/auth/login and /api/questions keep working.
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns an id the access log can print
// 2. RealIP: client IP from X-Forwarded-For
// 3. Recoverer: a panic becomes a 500 instead of killing the process
// 4. Logger: one access-log line per request
// 5. Session: decodes the session cookie into the request context
func (s *Server) setupRoutes(sessions *auth.SessionCodec) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.Session(sessions))

	authService := service.NewAuthService(s.db.Users(), auth.NewPasswordService(), sessions, s.logger)
	questionService := service.NewQuestionService(s.db.Questions(), s.logger)

	authHandler := handler.NewAuthHandler(authService, sessions, s.logger)
	questionHandler := handler.NewQuestionHandler(questionService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	routes := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(auth.RequireSession).Get("/me", authHandler.HandleMe)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionHandler.HandleList)
			r.Post("/", questionHandler.HandleCreate)
			r.Patch("/", questionHandler.HandleUpdate)
			r.Delete("/", questionHandler.HandleDelete)
		})

		r.Get("/health/db", healthHandler.HandleDB)
	}

	routes(s.router)
	s.router.Route("/api", routes)
}

// Start runs the HTTP server until ctx is cancelled or SIGINT/SIGTERM
// arrives, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait up to 30s for in-flight requests to finish
// 3. Return, so the caller can close the database
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("secureCookies", s.config.SecureCookies),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

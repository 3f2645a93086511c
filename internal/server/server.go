// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads env config → passed to Server
// Server.New() creates: storage → auth services → lifecycle services → handlers
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tasnim/quizhub/internal/auth"
	"github.com/tasnim/quizhub/internal/handler"
	"github.com/tasnim/quizhub/internal/mailer"
	"github.com/tasnim/quizhub/internal/middleware"
	"github.com/tasnim/quizhub/internal/repository"
	"github.com/tasnim/quizhub/internal/repository/memory"
	sqliteRepo "github.com/tasnim/quizhub/internal/repository/sqlite"
	"github.com/tasnim/quizhub/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port      int
	StaticDir string

	// DBPath selects the storage backend: set it to persist accounts and
	// quizzes in SQLite, leave it empty to run fully in memory (useful for
	// local hacking and demos — everything vanishes on restart).
	DBPath string

	// JWTSecret signs session tokens; CredentialPepper feeds the password
	// digest. Both are secrets and both come from the environment, never
	// from a file checked into the repo.
	JWTSecret        string
	CredentialPepper string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// When SQLite is the backend the Server owns the connection (db). On shutdown
// we must close it to flush any pending writes and release the file lock;
// this is handled in Start() during graceful shutdown. With the in-memory
// backend db stays nil and there is nothing to close.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // nil when running on the in-memory backend
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Pick the storage backend (SQLite file or in-memory maps)
//  2. Create the auth primitives (password digests, JWT signing)
//  3. Create the service layer with the repositories
//  4. Create the handlers with the services, wire them to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	// === STORAGE BACKEND ===
	var (
		accounts repository.AccountRepository
		quizzes  repository.QuizRepository
	)
	if cfg.DBPath != "" {
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db
		accounts = db.Accounts()
		quizzes = db.Quizzes()
	} else {
		logger.Warn("DB_PATH not set — using in-memory storage, data is lost on restart")
		accounts = memory.NewAccountStore()
		quizzes = memory.NewQuizStore()
	}

	// === AUTH PRIMITIVES ===
	// Both constructors reject weak values, so a misconfigured deployment
	// fails at startup instead of running with a guessable secret.
	creds, err := auth.NewPasswordService(cfg.CredentialPepper)
	if err != nil {
		s.closeDB()
		return nil, fmt.Errorf("credential pepper: %w", err)
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		s.closeDB()
		return nil, fmt.Errorf("jwt secret: %w", err)
	}

	// === SERVICES & HANDLERS ===
	mail := mailer.NewLogMailer(logger)
	accountService := service.NewAccountService(accounts, creds, tokens, mail, logger)
	quizService := service.NewQuizService(quizzes, logger)

	s.setupRoutes(
		handler.NewAccountHandler(accountService, logger),
		handler.NewQuizHandler(quizService, logger),
		tokens,
	)

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register                → create a pending account
//	POST   /api/auth/login                   → verify credentials, set JWT cookie
//	POST   /api/auth/logout                  → clear the JWT cookie
//	POST   /api/auth/confirm                 → redeem email confirmation token
//	POST   /api/auth/password-reset          → request a reset email
//	POST   /api/auth/password-reset/confirm  → redeem reset token
//	GET    /api/me                           → current profile       [auth]
//	PATCH  /api/me                           → partial profile edit  [auth]
//	GET    /api/quizzes[?mine=true]          → list quizzes (public; mine needs auth)
//	GET    /api/quizzes/{id}                 → get one quiz (public)
//	POST   /api/quizzes                      → create quiz           [auth]
//	PUT    /api/quizzes/{id}                 → edit quiz             [auth]
//	DELETE /api/quizzes/{id}                 → delete quiz           [auth]
//	GET    /static/*                         → static assets
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes(accountH *handler.AccountHandler, quizH *handler.QuizHandler, tokens *auth.TokenService) {
	// === Global Middleware ===
	// These run on EVERY request, in order
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	// === Static Files ===
	// http.StripPrefix removes "/static/" from the URL path before lookup,
	// so GET /static/css/app.css serves {StaticDir}/css/app.css.
	if s.config.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	// === API Routes ===
	// Notice: handlers never touch storage directly, services never touch
	// HTTP. The auth split is per-route: reads are public, writes and
	// anything about "me" require a valid session.
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", accountH.HandleRegister)
			r.Post("/login", accountH.HandleLogin)
			r.Post("/logout", accountH.HandleLogout)
			r.Post("/confirm", accountH.HandleConfirmEmail)
			r.Post("/password-reset", accountH.HandlePasswordReset)
			r.Post("/password-reset/confirm", accountH.HandlePasswordResetConfirm)
		})

		// Public reads run behind OptionalAuth: anonymous callers pass
		// through, but a valid session cookie still resolves to an identity
		// so ?mine=true can filter the listing to the caller's quizzes.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/quizzes", quizH.HandleList)
			r.Get("/quizzes/{id}", quizH.HandleGet)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", accountH.HandleMe)
			r.Patch("/me", accountH.HandleUpdateMe)
			r.Post("/quizzes", quizH.HandleCreate)
			r.Put("/quizzes/{id}", quizH.HandleUpdate)
			r.Delete("/quizzes/{id}", quizH.HandleDelete)
		})
	})
}

// closeDB closes the SQLite connection if one is open. Safe to call with the
// in-memory backend.
func (s *Server) closeDB() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.closeDB()` ensures this happens even if something panics.
func (s *Server) Start() error {
	defer s.closeDB()

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/auth"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/service"
)

// QuizHandler manages CRUD operations for quizzes.
//
// WHY A SEPARATE HANDLER?
// Separating quiz logic from account logic follows the Single Responsibility
// Principle. Each handler struct "owns" one area of functionality, which makes
// the code easier to test, understand, and modify independently.
type QuizHandler struct {
	quizzes *service.QuizService
	logger  *slog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizzes *service.QuizService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, logger: logger}
}

// HandleList returns a page of quizzes, newest first.
//
// HTTP: GET /api/quizzes?limit=20&offset=0[&mine=true]
// Auth: Optional — browsing quizzes is public, but the route runs behind
// OptionalAuth so a logged-in caller's identity is available when present.
//
// THE mine FILTER:
// ?mine=true narrows the listing to the caller's own quizzes. That's the one
// read that NEEDS an identity: an anonymous "my quizzes" request has no
// possible answer, so it gets 401 rather than an empty page that would mask a
// missing or expired cookie.
//
// Pagination bounds are enforced in the service (bad values are clamped, not
// rejected), so the handler just parses and passes through.
func (h *QuizHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	// strconv.Atoi on an absent param returns an error; we treat any parse
	// failure as "use the default" rather than 400ing on ?limit=abc.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var (
		quizzes []model.Quiz
		err     error
	)
	if mine, _ := strconv.ParseBool(r.URL.Query().Get("mine")); mine {
		accountID, ok := auth.AccountIDFromContext(r.Context())
		if !ok {
			writeError(w, apperror.InvalidToken(""))
			return
		}
		quizzes, err = h.quizzes.ListByOwner(r.Context(), accountID, limit, offset)
	} else {
		quizzes, err = h.quizzes.List(r.Context(), limit, offset)
	}
	if err != nil {
		h.logger.Error("failed to list quizzes", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizzes)
}

// HandleGet returns a single quiz by ID.
//
// HTTP: GET /api/quizzes/{id}
// Auth: None
//
// URL PARAMETERS:
// Chi provides chi.URLParam(r, "id") to extract URL parameters.
// For a request to GET /api/quizzes/abc123, PathValue("id") returns "abc123".
func (h *QuizHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "quiz ID is required"))
		return
	}

	quiz, err := h.quizzes.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// HandleCreate saves a new quiz owned by the logged-in account.
//
// HTTP: POST /api/quizzes
// Auth: Required
// REQUEST BODY: {"title": "...", "description": "...", "questions": [...]}
func (h *QuizHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.InvalidToken(""))
		return
	}

	var in service.QuizInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	quiz, err := h.quizzes.Create(r.Context(), claims.Subject, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

// HandleUpdate replaces a quiz's content.
//
// HTTP: PUT /api/quizzes/{id}
// Auth: Required — only the owner or an administrator may edit.
//
// The ownership check happens in the service, which needs to fetch the quiz
// anyway; the handler just forwards who is asking (ID and tier from the JWT).
func (h *QuizHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.InvalidToken(""))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "quiz ID is required"))
		return
	}

	var in service.QuizInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	quiz, err := h.quizzes.Update(r.Context(), claims.Subject, claims.Tier, id, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// HandleDelete removes a quiz.
//
// HTTP: DELETE /api/quizzes/{id}
// Auth: Required — only the owner or an administrator may delete.
func (h *QuizHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.InvalidToken(""))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "quiz ID is required"))
		return
	}

	if err := h.quizzes.Delete(r.Context(), claims.Subject, claims.Tier, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent) // 204 No Content — successful deletion, no body
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/repository"
)

// Validation constants for quizzes.
const (
	MaxQuizTitleLength       = 120
	MaxQuizDescriptionLength = 2000
	MaxQuestionsBytes        = 100000 // ~100KB of question JSON
	DefaultListLimit         = 20
	MaxListLimit             = 100
)

// QuizService handles business logic for quizzes.
//
// OWNERSHIP RULES:
// Anyone can read. Creating requires an authenticated account. Updating and
// deleting require being the quiz's owner — or an administrator, who can
// moderate anyone's quiz.
type QuizService struct {
	repo   repository.QuizRepository
	logger *slog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(repo repository.QuizRepository, logger *slog.Logger) *QuizService {
	return &QuizService{
		repo:   repo,
		logger: logger,
	}
}

// QuizInput is the payload for quiz create/update.
type QuizInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   json.RawMessage `json:"questions"`
}

// validateQuizInput enforces content rules. The question payload is opaque to
// the server but must at least BE JSON — storing garbage the client can never
// render again helps nobody.
func validateQuizInput(in QuizInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apperror.ValidationFailed("title", "quiz title is required")
	}
	if len(title) > MaxQuizTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("quiz title must be %d characters or less", MaxQuizTitleLength))
	}
	if len(in.Description) > MaxQuizDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxQuizDescriptionLength))
	}
	if len(in.Questions) > MaxQuestionsBytes {
		return apperror.ValidationFailed("questions",
			fmt.Sprintf("questions must be %d bytes or less", MaxQuestionsBytes))
	}
	if len(in.Questions) > 0 && !json.Valid(in.Questions) {
		return apperror.ValidationFailed("questions", "questions must be valid JSON")
	}
	return nil
}

// Create validates and saves a new quiz owned by ownerID.
func (s *QuizService) Create(ctx context.Context, ownerID string, in QuizInput) (*model.Quiz, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner account ID is required")
	}
	if err := validateQuizInput(in); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Questions:   in.Questions,
	}

	if err := s.repo.Create(ctx, quiz); err != nil {
		s.logger.Error("failed to create quiz",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating quiz: %w", err)
	}

	s.logger.Info("quiz created",
		slog.String("id", quiz.ID),
		slog.String("ownerID", ownerID),
	)

	return quiz, nil
}

// GetByID retrieves a quiz by its ID.
// Returns apperror.ErrNotFound if the quiz doesn't exist.
func (s *QuizService) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "quiz ID is required")
	}

	return s.repo.GetByID(ctx, id)
}

// List retrieves quizzes with pagination.
// The limit is clamped to 1-100 (default 20) so callers can't request the world.
func (s *QuizService) List(ctx context.Context, limit, offset int) ([]model.Quiz, error) {
	return s.list(ctx, "", limit, offset)
}

// ListByOwner retrieves one account's quizzes with the same pagination rules.
// Backs the "my quizzes" view — no authorization check is needed because the
// result only ever contains quizzes the owner could read publicly anyway.
func (s *QuizService) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Quiz, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner ID is required")
	}
	return s.list(ctx, ownerID, limit, offset)
}

func (s *QuizService) list(ctx context.Context, ownerID string, limit, offset int) ([]model.Quiz, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	quizzes, err := s.repo.List(ctx, repository.ListOptions{
		Limit:   limit,
		Offset:  offset,
		OwnerID: ownerID,
	})
	if err != nil {
		s.logger.Error("failed to list quizzes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}

	return quizzes, nil
}

// Update modifies an existing quiz on behalf of the given actor.
//
// STRATEGY: "Fetch then update"
//  1. Fetch the existing quiz (confirms it exists, reveals the owner)
//  2. Check the actor may touch it
//  3. Apply changes and save
func (s *QuizService) Update(ctx context.Context, actorID string, actorTier model.Tier, id string, in QuizInput) (*model.Quiz, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "quiz ID is required")
	}
	if err := validateQuizInput(in); err != nil {
		return nil, err
	}

	quiz, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeQuizChange(quiz, actorID, actorTier); err != nil {
		return nil, err
	}

	quiz.Title = strings.TrimSpace(in.Title)
	quiz.Description = strings.TrimSpace(in.Description)
	quiz.Questions = in.Questions

	if err := s.repo.Update(ctx, quiz); err != nil {
		s.logger.Error("failed to update quiz",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating quiz: %w", err)
	}

	s.logger.Info("quiz updated",
		slog.String("id", quiz.ID),
		slog.String("actorID", actorID),
	)

	return quiz, nil
}

// Delete removes a quiz on behalf of the given actor.
func (s *QuizService) Delete(ctx context.Context, actorID string, actorTier model.Tier, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "quiz ID is required")
	}

	quiz, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authorizeQuizChange(quiz, actorID, actorTier); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("quiz deleted",
		slog.String("id", id),
		slog.String("actorID", actorID),
	)
	return nil
}

// authorizeQuizChange allows the owner and administrators, rejects everyone else.
func authorizeQuizChange(quiz *model.Quiz, actorID string, actorTier model.Tier) error {
	if quiz.OwnerID == actorID || actorTier == model.TierAdministrator {
		return nil
	}
	return apperror.Forbidden("only the quiz owner or an administrator may modify this quiz")
}

package service

import (
	"context"
	"time"

	"welearn/internal/cache"
	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/logger"
	"welearn/internal/validation"

	"go.uber.org/zap"
)

// QuizService defines the interface for quiz operations.
type QuizService interface {
	ListQuizzes(ctx context.Context) ([]dto.QuizResponse, error)
	GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error)
	CreateQuiz(ctx context.Context, req dto.QuizRequest) (*dto.QuizResponse, error)
	UpdateQuiz(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, id string) error
}

type quizService struct {
	repo    domain.QuizRepository
	cache   domain.Cache
	rules   *validation.RuleSet
	listTTL time.Duration
}

// NewQuizService creates a quiz service. cache may be nil.
func NewQuizService(repo domain.QuizRepository, cache domain.Cache, listTTL time.Duration) QuizService {
	return &quizService{
		repo:    repo,
		cache:   cache,
		rules:   validation.NewRuleSet(validation.FormQuiz),
		listTTL: listTTL,
	}
}

func toQuizResponse(q *domain.Quiz) dto.QuizResponse {
	return dto.QuizResponse{
		ID:          q.ID,
		Title:       q.Title,
		Instruction: q.Instruction,
		Question:    q.Question,
		Answer:      q.Answer,
		Category:    q.Category,
		Difficulty:  q.Difficulty,
		Type:        q.Type,
	}
}

func (s *quizService) ListQuizzes(ctx context.Context) ([]dto.QuizResponse, error) {
	key := cache.QuizListKey()
	var cached []dto.QuizResponse
	if getCachedJSON(ctx, s.cache, key, &cached) {
		return cached, nil
	}

	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	out := make([]dto.QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizResponse(q))
	}

	putCachedJSON(ctx, s.cache, key, out, s.listTTL)
	return out, nil
}

func (s *quizService) GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error) {
	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	resp := toQuizResponse(quiz)
	return &resp, nil
}

func (s *quizService) CreateQuiz(ctx context.Context, req dto.QuizRequest) (*dto.QuizResponse, error) {
	if errs := s.rules.ValidateForm(req.Fields(""), validation.ContextCreate); len(errs) > 0 {
		return nil, errs
	}

	quiz := domain.NewQuiz(req.Title, req.Instruction, req.Question, req.Answer, req.Category, req.Difficulty, req.Type)
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("Failed to create quiz", err)
	}
	logger.Get().Info("Quiz created", zap.String("quizID", quiz.ID), zap.String("category", quiz.Category))

	s.invalidate(ctx)
	resp := toQuizResponse(quiz)
	return &resp, nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error) {
	if errs := s.rules.ValidateForm(req.Fields(id), validation.ContextUpdate); len(errs) > 0 {
		return nil, errs
	}

	existing, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if existing == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}

	existing.Title = req.Title
	existing.Instruction = req.Instruction
	existing.Question = req.Question
	existing.Answer = req.Answer
	existing.Category = req.Category
	existing.Difficulty = req.Difficulty
	existing.Type = req.Type
	if err := s.repo.UpdateQuiz(ctx, existing); err != nil {
		if domain.IsCode(err, domain.CodeQuizNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to update quiz", err)
	}

	s.invalidate(ctx)
	resp := toQuizResponse(existing)
	return &resp, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.repo.DeleteQuiz(ctx, id); err != nil {
		if domain.IsCode(err, domain.CodeQuizNotFound) {
			return err
		}
		return domain.NewInternalError("Failed to delete quiz", err)
	}
	logger.Get().Info("Quiz deleted", zap.String("quizID", id))
	s.invalidate(ctx)
	return nil
}

// invalidate drops the cached quiz list and the leaderboards, which are
// grouped by quiz category.
func (s *quizService) invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, cache.QuizListKey(), cache.RankingsKey())
}

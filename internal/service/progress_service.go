package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"welearn/internal/cache"
	"welearn/internal/config"
	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/logger"
	"welearn/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressService records answers and serves progress and leaderboards.
type ProgressService interface {
	GetProgress(ctx context.Context, userID, quizID string) (*dto.ProgressResponse, error)
	Summary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error)
	RecordAnswer(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error)
	Rankings(ctx context.Context) (*dto.RankingsResponse, error)
}

type progressService struct {
	progressRepo domain.ProgressRepository
	quizRepo     domain.QuizRepository
	userRepo     domain.UserRepository
	txManager    domain.TransactionManager
	cache        domain.Cache
	validator    *validation.Validator
	rankingsTTL  time.Duration
	rankingSize  int
	reward       int
	now          func() time.Time
}

// NewProgressService creates a progress service. cache may be nil.
// game supplies the leaderboard size and the reward paid on a first
// completion.
func NewProgressService(
	progressRepo domain.ProgressRepository,
	quizRepo domain.QuizRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	cache domain.Cache,
	rankingsTTL time.Duration,
	game config.GameConfig,
) ProgressService {
	rankingSize := game.RankingSize
	if rankingSize <= 0 {
		rankingSize = 10
	}
	return &progressService{
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		cache:        cache,
		validator:    validation.NewValidator(),
		rankingsTTL:  rankingsTTL,
		rankingSize:  rankingSize,
		reward:       game.CorrectReward,
		now:          time.Now,
	}
}

func (s *progressService) GetProgress(ctx context.Context, userID, quizID string) (*dto.ProgressResponse, error) {
	p, err := s.progressRepo.GetProgress(ctx, userID, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get progress", err)
	}
	if p == nil {
		return nil, domain.NewNotFoundError("Progress not found")
	}
	return &dto.ProgressResponse{
		UserID:             p.UserID,
		QuizID:             p.QuizID,
		Completed:          p.Completed,
		ExercisesCompleted: p.ExercisesCompleted,
		TotalTimeSpent:     p.TotalTimeSpent,
		LastAttemptDate:    p.LastAttemptDate,
	}, nil
}

func (s *progressService) Summary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error) {
	records, err := s.progressRepo.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get progress summary", err)
	}
	resp := &dto.ProgressSummaryResponse{Quizzes: make([]dto.ProgressSummaryItem, 0, len(records))}
	for _, p := range records {
		resp.Quizzes = append(resp.Quizzes, dto.ProgressSummaryItem{
			QuizID:             p.QuizID,
			Completed:          p.Completed,
			ExercisesCompleted: p.ExercisesCompleted,
			TotalTimeSpent:     p.TotalTimeSpent,
			LastAttemptDate:    p.LastAttemptDate,
		})
	}
	return resp, nil
}

// RecordAnswer judges the answer against the stored quiz, ignoring the
// caller's own verdict, and folds it into the progress record. The
// completion reward is paid in the same transaction, at most once per
// (user, quiz).
func (s *progressService) RecordAnswer(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error) {
	if errs := s.validator.ValidateAnswerRequest(quizID, req.UserAnswer, req.TimeSpent); len(errs) > 0 {
		return nil, errs
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	sub := domain.AnswerSubmission{
		QuestionID: req.QuestionID,
		UserAnswer: req.UserAnswer,
		IsCorrect:  quiz.IsCorrect(req.UserAnswer),
		TimeSpent:  req.TimeSpent,
	}
	sub.Completed = sub.IsCorrect

	var (
		progress         *domain.QuizProgress
		alreadyCompleted bool
		credited         int
		balance          int
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		progress, alreadyCompleted, err = s.apply(txCtx, userID, quizID, sub)
		if err != nil || !progress.Completed {
			return err
		}
		credited, balance, err = s.payReward(txCtx, userID, quizID)
		return err
	})
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to record answer", err)
	}

	if progress.Completed && !alreadyCompleted {
		invalidate(ctx, s.cache, cache.RankingsKey())
		logger.Get().Info("Quiz completed",
			zap.String("userID", userID),
			zap.String("quizID", quizID),
			zap.Int("attempts", progress.ExercisesCompleted),
			zap.Int("timeSpent", progress.TotalTimeSpent))
	}
	if credited > 0 {
		logger.Get().Info("Completion reward paid",
			zap.String("userID", userID),
			zap.String("quizID", quizID),
			zap.Int("amount", credited),
			zap.Int("balance", balance))
	}

	return &dto.AnswerAck{
		Success:          true,
		IsCorrect:        sub.IsCorrect,
		Completed:        progress.Completed,
		AlreadyCompleted: alreadyCompleted,
		Credited:         credited,
		Coins:            balance,
	}, nil
}

// payReward credits the completion reward if the record has not been paid
// yet. It returns the amount paid and the new balance.
func (s *progressService) payReward(ctx context.Context, userID, quizID string) (int, int, error) {
	if s.reward <= 0 {
		return 0, 0, nil
	}
	claimed, err := s.progressRepo.MarkRewarded(ctx, userID, quizID)
	if err != nil || !claimed {
		return 0, 0, err
	}
	balance, err := s.userRepo.AdjustCoins(ctx, userID, s.reward)
	if err != nil {
		return 0, 0, err
	}
	return s.reward, balance, nil
}

// apply upserts the record. A concurrent first submission that wins the
// insert turns this one into an update.
func (s *progressService) apply(ctx context.Context, userID, quizID string, sub domain.AnswerSubmission) (*domain.QuizProgress, bool, error) {
	now := s.now()
	existing, err := s.progressRepo.GetProgress(ctx, userID, quizID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		p := &domain.QuizProgress{UserID: userID, QuizID: quizID, CreatedAt: now}
		already := p.Apply(sub, now)
		err := s.progressRepo.CreateProgress(ctx, p)
		if err == nil {
			return p, already, nil
		}
		if !domain.IsCode(err, domain.CodeConflict) {
			return nil, false, err
		}
		if existing, err = s.progressRepo.GetProgress(ctx, userID, quizID); err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, domain.NewConflictError("Progress changed concurrently, please retry")
		}
	}

	already := existing.Apply(sub, now)
	if err := s.progressRepo.UpdateProgress(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, already, nil
}

// Rankings returns one leaderboard per category: learners ordered by
// completed quizzes, then total time, then username.
func (s *progressService) Rankings(ctx context.Context) (*dto.RankingsResponse, error) {
	key := cache.RankingsKey()
	var cached dto.RankingsResponse
	if getCachedJSON(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	var (
		rows    []domain.RankingRow
		quizzes []*domain.Quiz
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.progressRepo.ListRankingRows(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		quizzes, err = s.quizRepo.ListQuizzes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load rankings", err)
	}

	resp := &dto.RankingsResponse{Rankings: []dto.CategoryRankingResponse{}}
	for _, r := range BuildRankings(categoriesOf(quizzes), rows, s.rankingSize) {
		cr := dto.CategoryRankingResponse{Category: r.Category, Entries: make([]dto.RankingEntryResponse, 0, len(r.Entries))}
		for _, e := range r.Entries {
			cr.Entries = append(cr.Entries, dto.RankingEntryResponse{
				Rank:           e.Rank,
				UserID:         e.UserID,
				Username:       e.Username,
				Completed:      e.Completed,
				TotalTimeSpent: e.TotalTimeSpent,
				Attempts:       e.Attempts,
			})
		}
		resp.Rankings = append(resp.Rankings, cr)
	}

	putCachedJSON(ctx, s.cache, key, resp, s.rankingsTTL)
	return resp, nil
}

// categoriesOf returns the known categories first, then any others in
// alphabetical order.
func categoriesOf(quizzes []*domain.Quiz) []string {
	seen := make(map[string]bool)
	for _, q := range quizzes {
		seen[q.Category] = true
	}
	var out []string
	for _, c := range domain.KnownCategories {
		if seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	var rest []string
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// BuildRankings groups rows by category and keeps the top size entries of
// each. Categories with no rows get an empty leaderboard. Rows for
// categories not listed are appended after them.
func BuildRankings(categories []string, rows []domain.RankingRow, size int) []domain.CategoryRanking {
	byCategory := make(map[string][]domain.RankingRow)
	for _, r := range rows {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	order := append([]string(nil), categories...)
	listed := make(map[string]bool, len(categories))
	for _, c := range categories {
		listed[c] = true
	}
	var extra []string
	for c := range byCategory {
		if !listed[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	out := make([]domain.CategoryRanking, 0, len(order))
	for _, c := range order {
		group := byCategory[c]
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.Completed != b.Completed {
				return a.Completed > b.Completed
			}
			if a.TotalTimeSpent != b.TotalTimeSpent {
				return a.TotalTimeSpent < b.TotalTimeSpent
			}
			return a.Username < b.Username
		})
		if size > 0 && len(group) > size {
			group = group[:size]
		}
		entries := make([]domain.RankingEntry, 0, len(group))
		for i, r := range group {
			entries = append(entries, domain.RankingEntry{Rank: i + 1, RankingRow: r})
		}
		out = append(out, domain.CategoryRanking{Category: c, Entries: entries})
	}
	return out
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"welearn/internal/domain"
	"welearn/internal/repository/models"
	"welearn/internal/util"
)

const progressColumns = `id, user_id, quiz_id, completed, exercises_completed, total_time_spent, last_attempt_date, created_at, updated_at`

type sqlxProgressRepository struct {
	db DBTX
}

func NewSQLXProgressRepository(db DBTX) domain.ProgressRepository {
	return &sqlxProgressRepository{db: db}
}

func toDomainProgress(m *models.QuizProgress) *domain.QuizProgress {
	return &domain.QuizProgress{
		ID:                 m.ID,
		UserID:             m.UserID,
		QuizID:             m.QuizID,
		Completed:          m.Completed == 1,
		ExercisesCompleted: m.ExercisesCompleted,
		TotalTimeSpent:     m.TotalTimeSpent,
		LastAttemptDate:    m.LastAttemptDate.Time,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// GetProgress returns (nil, nil) when the learner never attempted the quiz.
func (r *sqlxProgressRepository) GetProgress(ctx context.Context, userID, quizID string) (*domain.QuizProgress, error) {
	var row models.QuizProgress
	query := `SELECT ` + progressColumns + ` FROM quiz_progress WHERE user_id = :1 AND quiz_id = :2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, userID, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return toDomainProgress(&row), nil
}

func (r *sqlxProgressRepository) ListProgressByUser(ctx context.Context, userID string) ([]*domain.QuizProgress, error) {
	var rows []models.QuizProgress
	query := `SELECT ` + progressColumns + ` FROM quiz_progress WHERE user_id = :1 ORDER BY last_attempt_date DESC`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := make([]*domain.QuizProgress, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainProgress(&rows[i]))
	}
	return out, nil
}

func (r *sqlxProgressRepository) CreateProgress(ctx context.Context, p *domain.QuizProgress) error {
	if p.ID == "" {
		p.ID = util.NewULID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	query := `INSERT INTO quiz_progress (id, user_id, quiz_id, completed, exercises_completed, total_time_spent, last_attempt_date, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		p.ID, p.UserID, p.QuizID, boolToNumber(p.Completed), p.ExercisesCompleted,
		p.TotalTimeSpent, util.TimeToNullTime(p.LastAttemptDate), p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.NewConflictError("Progress already exists for this quiz")
	}
	if err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

// UpdateProgress writes the counters. The completed flag is OR-ed in SQL
// so a stale write can never clear it.
func (r *sqlxProgressRepository) UpdateProgress(ctx context.Context, p *domain.QuizProgress) error {
	query := `UPDATE quiz_progress SET
				completed = GREATEST(completed, :1),
				exercises_completed = :2,
				total_time_spent = :3,
				last_attempt_date = :4,
				updated_at = :5
			  WHERE user_id = :6 AND quiz_id = :7`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		boolToNumber(p.Completed), p.ExercisesCompleted, p.TotalTimeSpent,
		util.TimeToNullTime(p.LastAttemptDate), p.UpdatedAt, p.UserID, p.QuizID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return requireAffected(result, domain.NewNotFoundError("Progress not found"))
}

// MarkRewarded flips rewarded from 0 to 1 on a completed record. The row
// lock taken by the UPDATE serializes concurrent callers, so exactly one
// of them sees an affected row.
func (r *sqlxProgressRepository) MarkRewarded(ctx context.Context, userID, quizID string) (bool, error) {
	query := `UPDATE quiz_progress SET rewarded = 1, updated_at = :1
			  WHERE user_id = :2 AND quiz_id = :3 AND completed = 1 AND rewarded = 0`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, time.Now(), userID, quizID)
	if err != nil {
		return false, fmt.Errorf("failed to mark progress rewarded: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark progress rewarded: %w", err)
	}
	return n == 1, nil
}

// ListRankingRows aggregates progress per category and learner. Learners
// without a completed quiz in a category are left out of it.
func (r *sqlxProgressRepository) ListRankingRows(ctx context.Context) ([]domain.RankingRow, error) {
	query := `SELECT q.category AS category,
			u.id AS user_id,
			u.username AS username,
			SUM(p.completed) AS completed,
			SUM(p.total_time_spent) AS total_time_spent,
			SUM(p.exercises_completed) AS attempts
		FROM quiz_progress p
		JOIN quizzes q ON q.id = p.quiz_id AND q.deleted_at IS NULL
		JOIN users u ON u.id = p.user_id AND u.deleted_at IS NULL
		GROUP BY q.category, u.id, u.username
		HAVING SUM(p.completed) > 0`

	var rows []models.RankingRow
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list ranking rows: %w", err)
	}
	out := make([]domain.RankingRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.RankingRow{
			Category:       m.Category,
			UserID:         m.UserID,
			Username:       m.Username,
			Completed:      m.Completed,
			TotalTimeSpent: m.TotalTimeSpent,
			Attempts:       m.Attempts,
		})
	}
	return out, nil
}

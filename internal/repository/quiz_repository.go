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

const quizColumns = `id, title, instruction, question, answer, category, difficulty, quiz_type, created_at, updated_at, deleted_at`

// QuizDatabaseAdapter implements domain.QuizRepository on Oracle.
type QuizDatabaseAdapter struct {
	db DBTX
}

func NewQuizDatabaseAdapter(db DBTX) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		Title:       m.Title,
		Instruction: m.Instruction.String,
		Question:    m.Question,
		Answer:      m.Answer,
		Category:    m.Category,
		Difficulty:  m.Difficulty,
		Type:        m.QuizType,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toModelQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	return &models.Quiz{
		ID:          q.ID,
		Title:       q.Title,
		Instruction: util.StringToNullString(q.Instruction),
		Question:    q.Question,
		Answer:      q.Answer,
		Category:    q.Category,
		Difficulty:  q.Difficulty,
		QuizType:    q.Type,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

// ListQuizzes returns every live quiz ordered by category, then title.
func (a *QuizDatabaseAdapter) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	var rows []models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE deleted_at IS NULL ORDER BY category, title`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i]))
	}
	return quizzes, nil
}

func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var row models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = :1 AND deleted_at IS NULL`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}
	return toDomainQuiz(&row), nil
}

// CreateQuiz assigns an ID and timestamps when they are missing.
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	now := time.Now()
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now

	m := toModelQuiz(quiz)
	query := `INSERT INTO quizzes (
		id, title, instruction, question, answer, category, difficulty, quiz_type, created_at, updated_at
	) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		m.ID, m.Title, m.Instruction, m.Question, m.Answer,
		m.Category, m.Difficulty, m.QuizType, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// UpdateQuiz returns a not-found error when no live quiz has the ID.
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	quiz.UpdatedAt = time.Now()
	m := toModelQuiz(quiz)
	query := `UPDATE quizzes SET
		title = :1, instruction = :2, question = :3, answer = :4,
		category = :5, difficulty = :6, quiz_type = :7, updated_at = :8
	WHERE id = :9 AND deleted_at IS NULL`

	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		m.Title, m.Instruction, m.Question, m.Answer,
		m.Category, m.Difficulty, m.QuizType, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	return requireAffected(result, domain.NewQuizNotFoundError(quiz.ID))
}

// DeleteQuiz soft-deletes the quiz so progress rows keep their reference.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id string) error {
	query := `UPDATE quizzes SET deleted_at = :1 WHERE id = :2 AND deleted_at IS NULL`
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return requireAffected(result, domain.NewQuizNotFoundError(id))
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

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

const userColumns = `id, username, full_name, email, password_hash, date_of_birth, coins, created_at, updated_at, deleted_at`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db DBTX
}

func NewSQLXUserRepository(db DBTX) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		FullName:     m.FullName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DateOfBirth:  m.DateOfBirth,
		Coins:        m.Coins,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *sqlxUserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var rows []models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY username`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, toDomainUser(&rows[i]))
	}
	return users, nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *sqlxUserRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	var row models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = :1 AND deleted_at IS NULL`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return toDomainUser(&row), nil
}

// CreateUser inserts a new learner. A duplicate username maps to a
// domain conflict error.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (id, username, full_name, email, password_hash, date_of_birth, coins, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.Username, user.FullName, user.Email, user.PasswordHash,
		user.DateOfBirth, user.Coins, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.NewDuplicateUsernameError(user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser updates profile fields. Coins are only changed by AdjustCoins.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	query := `UPDATE users SET
				username = :1,
				full_name = :2,
				email = :3,
				password_hash = :4,
				date_of_birth = :5,
				updated_at = :6
			  WHERE id = :7 AND deleted_at IS NULL`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.Username, user.FullName, user.Email, user.PasswordHash,
		user.DateOfBirth, user.UpdatedAt, user.ID,
	)
	if isUniqueViolation(err) {
		return domain.NewDuplicateUsernameError(user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, domain.NewUserNotFoundError(user.ID))
}

func (r *sqlxUserRepository) DeleteUser(ctx context.Context, id string) error {
	query := `UPDATE users SET deleted_at = :1 WHERE id = :2 AND deleted_at IS NULL`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, domain.NewUserNotFoundError(id))
}

// AdjustCoins adds delta in one conditional UPDATE so concurrent
// adjustments never overwrite each other and the balance never goes
// negative.
func (r *sqlxUserRepository) AdjustCoins(ctx context.Context, id string, delta int) (int, error) {
	exec := GetExecutor(ctx, r.db)
	query := `UPDATE users SET coins = coins + :1, updated_at = :2
			  WHERE id = :3 AND deleted_at IS NULL AND coins + :4 >= 0`

	result, err := exec.ExecContext(ctx, query, delta, time.Now(), id, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust coins: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var coins int
	err = exec.GetContext(ctx, &coins, `SELECT coins FROM users WHERE id = :1 AND deleted_at IS NULL`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NewUserNotFoundError(id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read coin balance: %w", err)
	}
	if n == 0 {
		return coins, &domain.InsufficientBalanceError{Balance: coins}
	}
	return coins, nil
}

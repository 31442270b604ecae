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

type sqlxRewardRepository struct {
	db DBTX
}

func NewSQLXRewardRepository(db DBTX) domain.RewardRepository {
	return &sqlxRewardRepository{db: db}
}

func (r *sqlxRewardRepository) GetClaim(ctx context.Context, userID, claimDate string) (*domain.RewardClaim, error) {
	var row models.RewardClaim
	query := `SELECT id, user_id, claim_date, amount, created_at FROM reward_claims WHERE user_id = :1 AND claim_date = :2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, userID, claimDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reward claim: %w", err)
	}
	return &domain.RewardClaim{
		ID:        row.ID,
		UserID:    row.UserID,
		ClaimDate: row.ClaimDate,
		Amount:    row.Amount,
		CreatedAt: row.CreatedAt,
	}, nil
}

// CreateClaim relies on the (user_id, claim_date) unique key; a second
// claim for the same day is reported as already claimed.
func (r *sqlxRewardRepository) CreateClaim(ctx context.Context, claim *domain.RewardClaim) error {
	if claim.ID == "" {
		claim.ID = util.NewULID()
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}

	query := `INSERT INTO reward_claims (id, user_id, claim_date, amount, created_at) VALUES (:1, :2, :3, :4, :5)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		claim.ID, claim.UserID, claim.ClaimDate, claim.Amount, claim.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.NewAlreadyClaimedError(claim.ClaimDate)
	}
	if err != nil {
		return fmt.Errorf("failed to create reward claim: %w", err)
	}
	return nil
}

func (r *sqlxRewardRepository) ListClaimDates(ctx context.Context, userID, from, to string) ([]string, error) {
	dates := []string{}
	query := `SELECT claim_date FROM reward_claims WHERE user_id = :1 AND claim_date BETWEEN :2 AND :3 ORDER BY claim_date`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &dates, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list claim dates: %w", err)
	}
	return dates, nil
}

// GetLastClaimDate returns "" when the learner never claimed.
func (r *sqlxRewardRepository) GetLastClaimDate(ctx context.Context, userID string) (string, error) {
	var last sql.NullString
	query := `SELECT MAX(claim_date) FROM reward_claims WHERE user_id = :1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &last, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get last claim date: %w", err)
	}
	return last.String, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"welearn/internal/cache"
	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/logger"
	"welearn/internal/reward"
	"welearn/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const claimLockTTL = 24 * time.Hour

// RewardService grants daily login rewards.
type RewardService interface {
	Claim(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error)
	// History lists the claimed days of month (YYYY-MM, default current).
	History(ctx context.Context, userID, month string) (*dto.ClaimHistoryResponse, error)
}

type rewardService struct {
	rewardRepo domain.RewardRepository
	userRepo   domain.UserRepository
	txManager  domain.TransactionManager
	cache      domain.Cache
	validator  *validation.Validator
	loc        *time.Location
	now        func() time.Time
}

// NewRewardService creates a reward service. Calendar days are evaluated
// in loc. cache may be nil, leaving the database unique key as the only
// duplicate guard.
func NewRewardService(
	rewardRepo domain.RewardRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	cache domain.Cache,
	loc *time.Location,
) RewardService {
	if loc == nil {
		loc = time.UTC
	}
	return &rewardService{
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		cache:      cache,
		validator:  validation.NewValidator(),
		loc:        loc,
		now:        time.Now,
	}
}

func (s *rewardService) today() time.Time {
	return reward.Day(s.now().In(s.loc))
}

func (s *rewardService) Claim(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error) {
	if errs := s.validator.ValidateClaimRequest(req.ClaimDate, req.RewardAmount); len(errs) > 0 {
		return nil, errs
	}

	today := s.today()
	if req.ClaimDate != reward.DateKey(today) {
		return nil, domain.NewInvalidClaimError("Only today's reward can be claimed")
	}
	if want := reward.RewardForDate(today); req.RewardAmount != want {
		return nil, domain.NewInvalidClaimError(fmt.Sprintf("Reward for %s is %d coins", req.ClaimDate, want))
	}

	lockKey := cache.ClaimLockKey(userID, req.ClaimDate)
	locked, err := s.lock(ctx, lockKey, req.ClaimDate)
	if err != nil {
		return nil, err
	}

	var balance int
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		claim := &domain.RewardClaim{UserID: userID, ClaimDate: req.ClaimDate, Amount: req.RewardAmount}
		if err := s.rewardRepo.CreateClaim(txCtx, claim); err != nil {
			return err
		}
		var err error
		balance, err = s.userRepo.AdjustCoins(txCtx, userID, req.RewardAmount)
		return err
	})
	if err != nil {
		if locked && !domain.IsCode(err, domain.CodeAlreadyClaimed) {
			invalidate(ctx, s.cache, lockKey)
		}
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to claim reward", err)
	}

	logger.Get().Info("Daily reward claimed",
		zap.String("userID", userID),
		zap.String("claimDate", req.ClaimDate),
		zap.Int("amount", req.RewardAmount),
		zap.Int("balance", balance))
	return &dto.ClaimResponse{Success: true, NewCoins: balance, ClaimedDate: req.ClaimDate}, nil
}

// lock takes the per-day claim lock. A cache outage is logged and the
// claim proceeds; the unique key still rejects duplicates.
func (s *rewardService) lock(ctx context.Context, key, claimDate string) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	ok, err := s.cache.SetNX(ctx, key, "1", claimLockTTL)
	if err != nil {
		logger.Get().Warn("Claim lock unavailable", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if !ok {
		return false, domain.NewAlreadyClaimedError(claimDate)
	}
	return true, nil
}

func (s *rewardService) History(ctx context.Context, userID, month string) (*dto.ClaimHistoryResponse, error) {
	if month == "" {
		month = s.today().Format("2006-01")
	}
	if errs := s.validator.ValidateMonth(month); len(errs) > 0 {
		return nil, errs
	}
	first, _ := time.ParseInLocation("2006-01", month, s.loc)
	last := first.AddDate(0, 1, -1)

	var (
		dates     []string
		lastClaim string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dates, err = s.rewardRepo.ListClaimDates(gctx, userID, reward.DateKey(first), reward.DateKey(last))
		return err
	})
	g.Go(func() error {
		var err error
		lastClaim, err = s.rewardRepo.GetLastClaimDate(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load claim history", err)
	}

	if dates == nil {
		dates = []string{}
	}
	return &dto.ClaimHistoryResponse{ClaimedDates: dates, LastClaim: lastClaim}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/logger"
	"welearn/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines the interface for learner account operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	GetUser(ctx context.Context, id string) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req dto.AccountRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id string, req dto.AccountRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	// AdjustCoins applies an add or subtract operation on behalf of a
	// caller with the given role and returns the new balance.
	AdjustCoins(ctx context.Context, userID string, req dto.CoinsRequest, callerRole domain.Role) (int, error)
}

type userServiceImpl struct {
	userRepo  domain.UserRepository
	rules     *validation.RuleSet
	validator *validation.Validator
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		rules:     validation.NewRuleSet(validation.FormUser),
		validator: validation.NewValidator(),
	}
}

func toUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth.Format(domain.DateLayout),
		Coins:       u.Coins,
		CreatedAt:   u.CreatedAt,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func parseDateOfBirth(v string) (time.Time, error) {
	dob, err := time.Parse(domain.DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, domain.NewValidationError("dateOfBirth", "Please enter a valid date")
	}
	return dob, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list users", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(id)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req dto.AccountRequest) (*dto.UserResponse, error) {
	if errs := s.rules.ValidateForm(req.Fields("userId", ""), validation.ContextCreate); len(errs) > 0 {
		return nil, errs
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check username", err)
	}
	if existing != nil {
		return nil, domain.NewDuplicateUsernameError(username)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError("Failed to create user", err)
	}
	user := &domain.User{
		Username:     username,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		DateOfBirth:  dob,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if domain.IsCode(err, domain.CodeDuplicateUsername) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to create user", err)
	}
	logger.Get().Info("User created", zap.String("userID", user.ID), zap.String("username", user.Username))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, id string, req dto.AccountRequest) (*dto.UserResponse, error) {
	if errs := s.rules.ValidateForm(req.Fields("userId", id), validation.ContextUpdate); len(errs) > 0 {
		return nil, errs
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(id)
	}

	username := strings.TrimSpace(req.Username)
	if username != user.Username {
		other, err := s.userRepo.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, domain.NewInternalError("Failed to check username", err)
		}
		if other != nil && other.ID != id {
			return nil, domain.NewDuplicateUsernameError(username)
		}
	}

	user.Username = username
	user.FullName = strings.TrimSpace(req.FullName)
	user.Email = strings.TrimSpace(req.Email)
	user.DateOfBirth = dob
	if req.Password != "" {
		if user.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, domain.NewInternalError("Failed to update user", err)
		}
	}
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if domain.IsCode(err, domain.CodeDuplicateUsername) || domain.IsCode(err, domain.CodeUserNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to update user", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if domain.IsCode(err, domain.CodeUserNotFound) {
			return err
		}
		return domain.NewInternalError("Failed to delete user", err)
	}
	logger.Get().Info("User deleted", zap.String("userID", id))
	return nil
}

func (s *userServiceImpl) AdjustCoins(ctx context.Context, userID string, req dto.CoinsRequest, callerRole domain.Role) (int, error) {
	if errs := s.validator.ValidateCoinRequest(req.Coins, req.Operation); len(errs) > 0 {
		return 0, errs
	}
	op := domain.CoinOperation(req.Operation)

	// Learners are paid by RecordAnswer and ClaimReward; they may only spend.
	if op == domain.CoinAdd && callerRole != domain.RoleAdmin {
		return 0, domain.NewForbiddenError("Coins are credited when a quiz is completed")
	}

	balance, err := s.userRepo.AdjustCoins(ctx, userID, op.Delta(req.Coins))
	if err != nil {
		var insufficient *domain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			return 0, domain.NewInsufficientCoinsError(insufficient.Balance, req.Coins)
		}
		if domain.IsCode(err, domain.CodeUserNotFound) {
			return 0, err
		}
		return 0, domain.NewInternalError("Failed to update coins", err)
	}

	logger.Get().Info("Coins adjusted",
		zap.String("userID", userID),
		zap.String("operation", req.Operation),
		zap.Int("amount", req.Coins),
		zap.Int("balance", balance))
	return balance, nil
}

package handler_test

import (
	"context"
	"errors"
	"time"

	"welearn/internal/domain"
	"welearn/internal/dto"
)

// MockAuthService resolves fixed tokens to callers.
type MockAuthService struct {
	tokens map[string]dto.AuthClaims
}

func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	claims, ok := m.tokens[tokenString]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &claims, nil
}

func (m *MockAuthService) CreateJWT(ctx context.Context, subjectID string, role domain.Role, ttl time.Duration) (string, error) {
	panic("CreateJWT not implemented")
}

type MockQuizService struct {
	ListQuizzesFunc func(ctx context.Context) ([]dto.QuizResponse, error)
	GetQuizFunc     func(ctx context.Context, id string) (*dto.QuizResponse, error)
	CreateQuizFunc  func(ctx context.Context, req dto.QuizRequest) (*dto.QuizResponse, error)
	UpdateQuizFunc  func(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error)
	DeleteQuizFunc  func(ctx context.Context, id string) error
}

func (m *MockQuizService) ListQuizzes(ctx context.Context) ([]dto.QuizResponse, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx)
	}
	panic("ListQuizzesFunc not implemented")
}

func (m *MockQuizService) GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, id)
	}
	panic("GetQuizFunc not implemented")
}

func (m *MockQuizService) CreateQuiz(ctx context.Context, req dto.QuizRequest) (*dto.QuizResponse, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, req)
	}
	panic("CreateQuizFunc not implemented")
}

func (m *MockQuizService) UpdateQuiz(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error) {
	if m.UpdateQuizFunc != nil {
		return m.UpdateQuizFunc(ctx, id, req)
	}
	panic("UpdateQuizFunc not implemented")
}

func (m *MockQuizService) DeleteQuiz(ctx context.Context, id string) error {
	if m.DeleteQuizFunc != nil {
		return m.DeleteQuizFunc(ctx, id)
	}
	panic("DeleteQuizFunc not implemented")
}

type MockUserService struct {
	ListUsersFunc   func(ctx context.Context) ([]dto.UserResponse, error)
	GetUserFunc     func(ctx context.Context, id string) (*dto.UserResponse, error)
	CreateUserFunc  func(ctx context.Context, req dto.AccountRequest) (*dto.UserResponse, error)
	UpdateUserFunc  func(ctx context.Context, id string, req dto.AccountRequest) (*dto.UserResponse, error)
	DeleteUserFunc  func(ctx context.Context, id string) error
	AdjustCoinsFunc func(ctx context.Context, userID string, req dto.CoinsRequest, callerRole domain.Role) (int, error)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	panic("ListUsersFunc not implemented")
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	panic("GetUserFunc not implemented")
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.AccountRequest) (*dto.UserResponse, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, req)
	}
	panic("CreateUserFunc not implemented")
}

func (m *MockUserService) UpdateUser(ctx context.Context, id string, req dto.AccountRequest) (*dto.UserResponse, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, req)
	}
	panic("UpdateUserFunc not implemented")
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	panic("DeleteUserFunc not implemented")
}

func (m *MockUserService) AdjustCoins(ctx context.Context, userID string, req dto.CoinsRequest, callerRole domain.Role) (int, error) {
	if m.AdjustCoinsFunc != nil {
		return m.AdjustCoinsFunc(ctx, userID, req, callerRole)
	}
	panic("AdjustCoinsFunc not implemented")
}

type MockAdminService struct {
	ListAdminsFunc  func(ctx context.Context) ([]dto.AdminResponse, error)
	GetAdminFunc    func(ctx context.Context, id string) (*dto.AdminResponse, error)
	CreateAdminFunc func(ctx context.Context, req dto.AccountRequest) (*dto.AdminResponse, error)
	UpdateAdminFunc func(ctx context.Context, id string, req dto.AccountRequest) (*dto.AdminResponse, error)
	DeleteAdminFunc func(ctx context.Context, id string) error
}

func (m *MockAdminService) ListAdmins(ctx context.Context) ([]dto.AdminResponse, error) {
	if m.ListAdminsFunc != nil {
		return m.ListAdminsFunc(ctx)
	}
	panic("ListAdminsFunc not implemented")
}

func (m *MockAdminService) GetAdmin(ctx context.Context, id string) (*dto.AdminResponse, error) {
	if m.GetAdminFunc != nil {
		return m.GetAdminFunc(ctx, id)
	}
	panic("GetAdminFunc not implemented")
}

func (m *MockAdminService) CreateAdmin(ctx context.Context, req dto.AccountRequest) (*dto.AdminResponse, error) {
	if m.CreateAdminFunc != nil {
		return m.CreateAdminFunc(ctx, req)
	}
	panic("CreateAdminFunc not implemented")
}

func (m *MockAdminService) UpdateAdmin(ctx context.Context, id string, req dto.AccountRequest) (*dto.AdminResponse, error) {
	if m.UpdateAdminFunc != nil {
		return m.UpdateAdminFunc(ctx, id, req)
	}
	panic("UpdateAdminFunc not implemented")
}

func (m *MockAdminService) DeleteAdmin(ctx context.Context, id string) error {
	if m.DeleteAdminFunc != nil {
		return m.DeleteAdminFunc(ctx, id)
	}
	panic("DeleteAdminFunc not implemented")
}

type MockProgressService struct {
	GetProgressFunc  func(ctx context.Context, userID, quizID string) (*dto.ProgressResponse, error)
	SummaryFunc      func(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error)
	RecordAnswerFunc func(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error)
	RankingsFunc     func(ctx context.Context) (*dto.RankingsResponse, error)
}

func (m *MockProgressService) GetProgress(ctx context.Context, userID, quizID string) (*dto.ProgressResponse, error) {
	if m.GetProgressFunc != nil {
		return m.GetProgressFunc(ctx, userID, quizID)
	}
	panic("GetProgressFunc not implemented")
}

func (m *MockProgressService) Summary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, userID)
	}
	panic("SummaryFunc not implemented")
}

func (m *MockProgressService) RecordAnswer(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error) {
	if m.RecordAnswerFunc != nil {
		return m.RecordAnswerFunc(ctx, userID, quizID, req)
	}
	panic("RecordAnswerFunc not implemented")
}

func (m *MockProgressService) Rankings(ctx context.Context) (*dto.RankingsResponse, error) {
	if m.RankingsFunc != nil {
		return m.RankingsFunc(ctx)
	}
	panic("RankingsFunc not implemented")
}

type MockRewardService struct {
	ClaimFunc   func(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error)
	HistoryFunc func(ctx context.Context, userID, month string) (*dto.ClaimHistoryResponse, error)
}

func (m *MockRewardService) Claim(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, userID, req)
	}
	panic("ClaimFunc not implemented")
}

func (m *MockRewardService) History(ctx context.Context, userID, month string) (*dto.ClaimHistoryResponse, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, month)
	}
	panic("HistoryFunc not implemented")
}

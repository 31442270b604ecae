package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/handler"
	"welearn/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	quizID    = "01HZY3K6W8V3N1R9T5Q2M4B7XA"
	learnerID = "01HZY3K6W8V3N1R9T5Q2M4B7XB"
	otherID   = "01HZY3K6W8V3N1R9T5Q2M4B7XC"
	adminID   = "01HZY3K6W8V3N1R9T5Q2M4B7XD"

	learnerToken = "learner-token"
	adminToken   = "admin-token"
)

type testServices struct {
	quiz     *MockQuizService
	user     *MockUserService
	admin    *MockAdminService
	progress *MockProgressService
	reward   *MockRewardService
}

func setupApp() (*fiber.App, *testServices) {
	ts := &testServices{
		quiz:     &MockQuizService{},
		user:     &MockUserService{},
		admin:    &MockAdminService{},
		progress: &MockProgressService{},
		reward:   &MockRewardService{},
	}
	auth := &MockAuthService{tokens: map[string]dto.AuthClaims{
		learnerToken: {UserID: learnerID, Role: string(domain.RoleLearner), TokenType: "access"},
		adminToken:   {UserID: adminID, Role: string(domain.RoleAdmin), TokenType: "access"},
	}}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app.Group("/api"), handler.Services{
		Auth:     auth,
		Quiz:     ts.quiz,
		User:     ts.user,
		Admin:    ts.admin,
		Progress: ts.progress,
		Reward:   ts.reward,
	})
	return app, ts
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]interface{}, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var obj map[string]interface{}
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func TestRoutes_RequireToken(t *testing.T) {
	app, _ := setupApp()
	status, body, _ := do(t, app, "GET", "/api/quizzes", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_AUTH_HEADER", body["code"])
}

func TestQuizHandler_ListQuizzes(t *testing.T) {
	app, ts := setupApp()
	ts.quiz.ListQuizzesFunc = func(ctx context.Context) ([]dto.QuizResponse, error) {
		return []dto.QuizResponse{{ID: quizID, Title: "Bubble sort", Category: "Sorting Algorithms"}}, nil
	}

	status, _, raw := do(t, app, "GET", "/api/quizzes", learnerToken, "")
	require.Equal(t, fiber.StatusOK, status)
	var quizzes []dto.QuizResponse
	require.NoError(t, json.Unmarshal(raw, &quizzes))
	require.Len(t, quizzes, 1)
	assert.Equal(t, "Bubble sort", quizzes[0].Title)
}

func TestQuizHandler_GetQuiz(t *testing.T) {
	app, ts := setupApp()
	ts.quiz.GetQuizFunc = func(ctx context.Context, id string) (*dto.QuizResponse, error) {
		return nil, domain.NewQuizNotFoundError(id)
	}

	status, body, _ := do(t, app, "GET", "/api/quizzes/"+quizID, learnerToken, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, string(domain.CodeQuizNotFound), body["code"])

	status, body, _ = do(t, app, "GET", "/api/quizzes/not-a-ulid", learnerToken, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, string(domain.CodeValidation), body["code"])
}

func TestQuizHandler_CreateQuiz(t *testing.T) {
	payload := `{"title":"Swap","instruction":"Name it","question":"What swaps?","answer":"swap","category":"Sorting Algorithms","difficulty":"easy","type":"fill-in-the-blank"}`

	t.Run("learner is forbidden", func(t *testing.T) {
		app, _ := setupApp()
		status, body, _ := do(t, app, "POST", "/api/quizzes", learnerToken, payload)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, string(domain.CodeForbidden), body["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		app, _ := setupApp()
		status, body, _ := do(t, app, "POST", "/api/quizzes", adminToken, "{")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, string(domain.CodeInvalidInput), body["code"])
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		app, ts := setupApp()
		ts.quiz.CreateQuizFunc = func(ctx context.Context, req dto.QuizRequest) (*dto.QuizResponse, error) {
			return nil, domain.NewValidationError("title", "Title is required")
		}
		status, body, _ := do(t, app, "POST", "/api/quizzes", adminToken, `{}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		errs := body["errors"].([]interface{})
		assert.Equal(t, "title", errs[0].(map[string]interface{})["path"])
	})

	t.Run("created", func(t *testing.T) {
		app, ts := setupApp()
		ts.quiz.CreateQuizFunc = func(ctx context.Context, req dto.QuizRequest) (*dto.QuizResponse, error) {
			assert.Equal(t, "Swap", req.Title)
			assert.Equal(t, "swap", req.Answer)
			return &dto.QuizResponse{ID: quizID, Title: req.Title}, nil
		}
		status, body, _ := do(t, app, "POST", "/api/quizzes", adminToken, payload)
		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, quizID, body["id"])
	})
}

func TestQuizHandler_UpdateAndDelete(t *testing.T) {
	app, ts := setupApp()
	ts.quiz.UpdateQuizFunc = func(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error) {
		return &dto.QuizResponse{ID: id, Title: req.Title}, nil
	}
	ts.quiz.DeleteQuizFunc = func(ctx context.Context, id string) error {
		assert.Equal(t, quizID, id)
		return nil
	}

	status, body, _ := do(t, app, "PUT", "/api/quizzes/"+quizID, adminToken, `{"title":"Renamed"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Renamed", body["title"])

	status, body, _ = do(t, app, "DELETE", "/api/quizzes/"+quizID, adminToken, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, quizID, body["id"])
}

func TestUserHandler_GetMyProfile(t *testing.T) {
	app, ts := setupApp()
	ts.user.GetUserFunc = func(ctx context.Context, id string) (*dto.UserResponse, error) {
		assert.Equal(t, learnerID, id)
		return &dto.UserResponse{ID: id, Username: "juan", Coins: 120}, nil
	}

	status, body, _ := do(t, app, "GET", "/api/users/me", learnerToken, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(120), body["coins"])
}

func TestUserHandler_AdminRoutes(t *testing.T) {
	app, ts := setupApp()
	ts.user.ListUsersFunc = func(ctx context.Context) ([]dto.UserResponse, error) {
		return []dto.UserResponse{{ID: learnerID}}, nil
	}
	ts.user.CreateUserFunc = func(ctx context.Context, req dto.AccountRequest) (*dto.UserResponse, error) {
		return nil, domain.NewDuplicateUsernameError(req.Username)
	}
	ts.user.DeleteUserFunc = func(ctx context.Context, id string) error {
		return domain.NewUserNotFoundError(id)
	}

	status, _, _ := do(t, app, "GET", "/api/users", learnerToken, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = do(t, app, "GET", "/api/users", adminToken, "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body, _ := do(t, app, "POST", "/api/users", adminToken, `{"username":"juan"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, string(domain.CodeDuplicateUsername), body["code"])

	status, _, _ = do(t, app, "DELETE", "/api/users/"+otherID, adminToken, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestUserHandler_UpdateCoins(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		target   string
		wantRole domain.Role
		want     int
	}{
		{"learner on self", learnerToken, learnerID, domain.RoleLearner, fiber.StatusOK},
		{"admin on learner", adminToken, learnerID, domain.RoleAdmin, fiber.StatusOK},
		{"learner on someone else", learnerToken, otherID, "", fiber.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, ts := setupApp()
			ts.user.AdjustCoinsFunc = func(ctx context.Context, userID string, req dto.CoinsRequest, role domain.Role) (int, error) {
				assert.Equal(t, tc.target, userID)
				assert.Equal(t, tc.wantRole, role)
				assert.Equal(t, dto.CoinsRequest{Coins: 50, Operation: "add"}, req)
				return 170, nil
			}
			status, body, _ := do(t, app, "PUT", "/api/users/"+tc.target+"/coins", tc.token, `{"coins":50,"operation":"add"}`)
			assert.Equal(t, tc.want, status)
			if tc.want == fiber.StatusOK {
				assert.Equal(t, float64(170), body["coins"])
			}
		})
	}
}

func TestUserHandler_UpdateCoins_Insufficient(t *testing.T) {
	app, ts := setupApp()
	ts.user.AdjustCoinsFunc = func(ctx context.Context, userID string, req dto.CoinsRequest, role domain.Role) (int, error) {
		return 0, domain.NewInsufficientCoinsError(20, req.Coins)
	}
	status, body, _ := do(t, app, "PUT", "/api/users/"+learnerID+"/coins", learnerToken, `{"coins":100,"operation":"subtract"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Not enough coins", body["message"])
}

func TestAdminHandler(t *testing.T) {
	app, ts := setupApp()
	ts.admin.GetAdminFunc = func(ctx context.Context, id string) (*dto.AdminResponse, error) {
		return &dto.AdminResponse{ID: id, Username: "root"}, nil
	}
	ts.admin.UpdateAdminFunc = func(ctx context.Context, id string, req dto.AccountRequest) (*dto.AdminResponse, error) {
		return &dto.AdminResponse{ID: id, Username: req.Username}, nil
	}

	status, body, _ := do(t, app, "GET", "/api/admins/"+adminID, adminToken, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "root", body["username"])

	status, body, _ = do(t, app, "PUT", "/api/admins/"+adminID, adminToken, `{"username":"boss"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "boss", body["username"])

	status, body, _ = do(t, app, "GET", "/api/admins/123", adminToken, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	errs := body["errors"].([]interface{})
	assert.Equal(t, "Invalid adminId format", errs[0].(map[string]interface{})["msg"])

	status, _, _ = do(t, app, "GET", "/api/admins", learnerToken, "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestProgressHandler_RecordAnswer(t *testing.T) {
	t.Run("own answer", func(t *testing.T) {
		app, ts := setupApp()
		ts.progress.RecordAnswerFunc = func(ctx context.Context, userID, qID string, req dto.AnswerRequest) (*dto.AnswerAck, error) {
			assert.Equal(t, learnerID, userID)
			assert.Equal(t, quizID, qID)
			assert.Equal(t, "swap", req.UserAnswer)
			assert.Equal(t, 12, req.TimeSpent)
			return &dto.AnswerAck{Success: true, IsCorrect: true, Completed: true}, nil
		}
		body := `{"questionId":"` + quizID + `","userAnswer":"swap","isCorrect":true,"timeSpent":12,"completed":true}`
		status, resp, _ := do(t, app, "POST", "/api/progress/"+learnerID+"/"+quizID+"/answer", learnerToken, body)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, true, resp["isCorrect"])
		assert.Equal(t, false, resp["alreadyCompleted"])
	})

	t.Run("admins cannot answer for learners", func(t *testing.T) {
		app, _ := setupApp()
		status, _, _ := do(t, app, "POST", "/api/progress/"+learnerID+"/"+quizID+"/answer", adminToken, `{}`)
		assert.Equal(t, fiber.StatusForbidden, status)
	})

	t.Run("bad quiz id", func(t *testing.T) {
		app, _ := setupApp()
		status, _, _ := do(t, app, "POST", "/api/progress/"+learnerID+"/q1/answer", learnerToken, `{}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestProgressHandler_Reads(t *testing.T) {
	app, ts := setupApp()
	ts.progress.GetProgressFunc = func(ctx context.Context, userID, qID string) (*dto.ProgressResponse, error) {
		return nil, domain.NewNotFoundError("Progress not found")
	}
	ts.progress.SummaryFunc = func(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error) {
		assert.Equal(t, learnerID, userID)
		return &dto.ProgressSummaryResponse{}, nil
	}
	ts.progress.RankingsFunc = func(ctx context.Context) (*dto.RankingsResponse, error) {
		return &dto.RankingsResponse{}, nil
	}

	status, _, _ := do(t, app, "GET", "/api/progress/"+learnerID+"/"+quizID, learnerToken, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = do(t, app, "GET", "/api/progress/user/"+learnerID+"/summary", adminToken, "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = do(t, app, "GET", "/api/progress/user/"+otherID+"/summary", learnerToken, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = do(t, app, "GET", "/api/progress/rankings", learnerToken, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRewardHandler_History(t *testing.T) {
	app, ts := setupApp()
	var gotMonth string
	ts.reward.HistoryFunc = func(ctx context.Context, userID, month string) (*dto.ClaimHistoryResponse, error) {
		gotMonth = month
		return &dto.ClaimHistoryResponse{ClaimedDates: []string{"2026-10-03"}, LastClaim: "2026-10-03"}, nil
	}

	status, body, _ := do(t, app, "GET", "/api/rewards/"+learnerID+"/last-claim?month=2026-10", learnerToken, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "2026-10", gotMonth)
	assert.Equal(t, []interface{}{"2026-10-03"}, body["claimedDates"])

	status, _, _ = do(t, app, "GET", "/api/rewards/"+learnerID+"/last-claim", learnerToken, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "", gotMonth)

	status, _, _ = do(t, app, "GET", "/api/rewards/"+learnerID+"/last-claim?month=10-2026", learnerToken, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRewardHandler_Claim(t *testing.T) {
	app, ts := setupApp()
	calls := 0
	ts.reward.ClaimFunc = func(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error) {
		calls++
		if calls > 1 {
			return nil, domain.NewAlreadyClaimedError(req.ClaimDate)
		}
		return &dto.ClaimResponse{Success: true, NewCoins: 170, ClaimedDate: req.ClaimDate}, nil
	}
	body := `{"claimDate":"2026-10-18","rewardAmount":50}`

	status, resp, _ := do(t, app, "POST", "/api/rewards/"+learnerID+"/claim", learnerToken, body)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(170), resp["newCoins"])

	status, resp, _ = do(t, app, "POST", "/api/rewards/"+learnerID+"/claim", learnerToken, body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, string(domain.CodeAlreadyClaimed), resp["code"])

	status, _, _ = do(t, app, "POST", "/api/rewards/"+learnerID+"/claim", adminToken, body)
	assert.Equal(t, fiber.StatusForbidden, status)
}

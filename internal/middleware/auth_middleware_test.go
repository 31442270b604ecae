package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Manual MockAuthService for testing middleware.
type ManualMockAuthService struct {
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *ManualMockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return nil, errors.New("ValidateJWTFunc not set on mock")
}

func (m *ManualMockAuthService) CreateJWT(ctx context.Context, subjectID string, role domain.Role, ttl time.Duration) (string, error) {
	panic("not implemented in mock")
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestProtected(t *testing.T) {
	mockAuthSvc := &ManualMockAuthService{
		ValidateJWTFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
			switch tokenString {
			case "learner_token":
				return &dto.AuthClaims{UserID: "user123", Role: "user", TokenType: "access"}, nil
			case "admin_token":
				return &dto.AuthClaims{UserID: "admin1", Role: "admin", TokenType: "access"}, nil
			}
			return nil, errors.New("invalid token")
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedCode   string
		expectedUserID interface{}
		expectedRole   interface{}
	}{
		{name: "No Auth Header", expectedStatus: fiber.StatusUnauthorized, expectedCode: "MISSING_AUTH_HEADER"},
		{name: "Not Bearer", authHeader: "Basic abc", expectedStatus: fiber.StatusUnauthorized, expectedCode: "INVALID_AUTH_SCHEME"},
		// The transport may trim the trailing space, so only the status is fixed.
		{name: "Empty Token", authHeader: "Bearer ", expectedStatus: fiber.StatusUnauthorized},
		{name: "Invalid Token", authHeader: "Bearer nope", expectedStatus: fiber.StatusUnauthorized, expectedCode: "INVALID_TOKEN"},
		{
			name: "Learner Token", authHeader: "Bearer learner_token", expectedStatus: fiber.StatusOK,
			expectedUserID: "user123", expectedRole: domain.RoleLearner,
		},
		{
			name: "Admin Token", authHeader: "Bearer admin_token", expectedStatus: fiber.StatusOK,
			expectedUserID: "admin1", expectedRole: domain.RoleAdmin,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp()
			var userID, role interface{}
			app.Get("/protected", middleware.Protected(mockAuthSvc), func(c *fiber.Ctx) error {
				userID = c.Locals(middleware.UserIDKey)
				role = c.Locals(middleware.RoleKey)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			if tc.expectedCode != "" {
				assert.Equal(t, tc.expectedCode, decode(t, resp.Body)["code"])
			}
			assert.Equal(t, tc.expectedUserID, userID)
			assert.Equal(t, tc.expectedRole, role)
		})
	}
}

func withCaller(userID string, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		c.Locals(middleware.RoleKey, role)
		return c.Next()
	}
}

func TestRoleGuards(t *testing.T) {
	tests := []struct {
		name   string
		guard  fiber.Handler
		userID string
		role   domain.Role
		path   string
		want   int
	}{
		{"admin only allows admin", middleware.RequireRole(domain.RoleAdmin), "a1", domain.RoleAdmin, "/x/u1", fiber.StatusOK},
		{"admin only rejects learner", middleware.RequireRole(domain.RoleAdmin), "u1", domain.RoleLearner, "/x/u1", fiber.StatusForbidden},
		{"self or admin allows self", middleware.SelfOrAdmin("userId"), "u1", domain.RoleLearner, "/x/u1", fiber.StatusOK},
		{"self or admin allows admin", middleware.SelfOrAdmin("userId"), "a1", domain.RoleAdmin, "/x/u1", fiber.StatusOK},
		{"self or admin rejects others", middleware.SelfOrAdmin("userId"), "u2", domain.RoleLearner, "/x/u1", fiber.StatusForbidden},
		{"self rejects admin", middleware.Self("userId"), "a1", domain.RoleAdmin, "/x/u1", fiber.StatusForbidden},
		{"self allows self", middleware.Self("userId"), "u1", domain.RoleLearner, "/x/u1", fiber.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp()
			app.Get("/x/:userId", withCaller(tc.userID, tc.role), tc.guard, func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

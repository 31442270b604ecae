package middleware

import (
	"strings"

	"welearn/internal/domain"
	"welearn/internal/logger"
	"welearn/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	RoleKey             = "role"
)

// Protected is a middleware function that protects routes by requiring a valid JWT.
// It validates the token using the provided AuthService and stores the
// caller's id and role in the context.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_AUTH_SCHEME",
				Message: "Authorization scheme is not Bearer",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "EMPTY_TOKEN",
				Message: "Token is empty",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := authService.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("JWT validation error", zap.Error(err), zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Your session has expired. Please log in again.",
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(RoleKey, domain.Role(claims.Role))

		return c.Next()
	}
}

// UserID returns the authenticated caller's id, "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// Role returns the authenticated caller's role.
func Role(c *fiber.Ctx) domain.Role {
	role, _ := c.Locals(RoleKey).(domain.Role)
	return role
}

// RequireRole allows only callers holding role. Must run after Protected.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != role {
			return domain.NewForbiddenError("You do not have permission to perform this action")
		}
		return c.Next()
	}
}

// SelfOrAdmin allows admins, and learners acting on their own :param.
func SelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) == domain.RoleAdmin || c.Params(param) == UserID(c) {
			return c.Next()
		}
		return domain.NewForbiddenError("You can only access your own data")
	}
}

// Self allows only the learner named by :param. Admins are not exempt.
func Self(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Params(param) != UserID(c) {
			return domain.NewForbiddenError("You can only act on your own account")
		}
		return c.Next()
	}
}

package middleware

import (
	"welearn/internal/domain"
	"welearn/internal/util"
	"welearn/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// MonthKey holds the validated ?month= selector in fiber.Ctx locals.
const MonthKey = "validated_month"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateID rejects requests whose :param is not a ULID. path is the
// field name reported to the client, e.g. "userId".
func (vm *ValidationMiddleware) ValidateID(param, path string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !util.IsULID(c.Params(param)) {
			return domain.NewValidationError(path, "Invalid "+path+" format")
		}
		return c.Next()
	}
}

// ValidateMonth validates the optional ?month=YYYY-MM selector and stores
// it for the handler.
func (vm *ValidationMiddleware) ValidateMonth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month := c.Query("month")
		if month != "" {
			if errs := vm.validator.ValidateMonth(month); len(errs) > 0 {
				return errs
			}
		}
		c.Locals(MonthKey, month)
		return c.Next()
	}
}
